package middleware

import (
	"context"
	"sync"
	"time"
)

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context) bool
}

// TokenBucket 令牌桶限流器，按固定速率补充令牌
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // 每秒补充的令牌数
	lastRefill time.Time
}

// NewTokenBucket 创建令牌桶，初始为满桶
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: float64(refillRate),
		lastRefill: time.Now(),
	}
}

// Allow 取走一枚令牌；桶空则拒绝
func (tb *TokenBucket) Allow(ctx context.Context) bool {
	if tb == nil {
		return true
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.tokens += now.Sub(tb.lastRefill).Seconds() * tb.refillRate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// SlidingWindow 滑动窗口限流器，记录窗口内每次放行的时间戳
type SlidingWindow struct {
	mu          sync.Mutex
	stamps      []time.Time
	window      time.Duration
	maxRequests int
}

// NewSlidingWindow 创建滑动窗口限流器
func NewSlidingWindow(window time.Duration, maxRequests int) *SlidingWindow {
	return &SlidingWindow{
		stamps:      make([]time.Time, 0, maxRequests),
		window:      window,
		maxRequests: maxRequests,
	}
}

// Allow 窗口内放行次数未达上限时放行并计数
func (sw *SlidingWindow) Allow(ctx context.Context) bool {
	if sw == nil {
		return true
	}
	sw.mu.Lock()
	defer sw.mu.Unlock()

	cutoff := time.Now().Add(-sw.window)

	// 时间戳按序追加，裁掉窗口外的前缀即可
	drop := 0
	for drop < len(sw.stamps) && !sw.stamps[drop].After(cutoff) {
		drop++
	}
	if drop > 0 {
		sw.stamps = append(sw.stamps[:0], sw.stamps[drop:]...)
	}

	if len(sw.stamps) >= sw.maxRequests {
		return false
	}
	sw.stamps = append(sw.stamps, time.Now())
	return true
}
