package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// CircuitBreakerState 熔断器状态
type CircuitBreakerState int

const (
	StateClosed   CircuitBreakerState = iota // 关闭状态（正常放行）
	StateOpen                                // 开启状态（直接拒绝）
	StateHalfOpen                            // 半开状态（少量探测）
)

// ErrBreakerOpen 熔断开启期间的拒绝错误
var ErrBreakerOpen = errors.New("circuit breaker is open")

// CircuitBreaker 按连续失败次数熔断下游调用
type CircuitBreaker struct {
	mu           sync.Mutex
	name         string
	maxFailures  int           // 连续失败达到该值后熔断
	resetTimeout time.Duration // 熔断后多久进入半开探测
	probeQuota   int           // 半开状态允许的探测数

	state    CircuitBreakerState
	failures int
	probes   int
	openedAt time.Time
}

// NewCircuitBreaker 创建熔断器
func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		probeQuota:   3,
		state:        StateClosed,
	}
}

// Call 在熔断策略下执行 fn；熔断开启时不执行直接返回 ErrBreakerOpen。
func (cb *CircuitBreaker) Call(ctx context.Context, fn func() error) error {
	if cb == nil {
		return fn()
	}
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.openedAt) < cb.resetTimeout {
			return fmt.Errorf("%s: %w", cb.name, ErrBreakerOpen)
		}
		cb.state = StateHalfOpen
		cb.probes = 0
		fallthrough
	case StateHalfOpen:
		if cb.probes >= cb.probeQuota {
			return fmt.Errorf("%s: half-open probe quota reached", cb.name)
		}
		cb.probes++
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.state = StateClosed
		cb.failures = 0
		cb.probes = 0
		return
	}

	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = StateOpen
		cb.openedAt = time.Now()
		cb.probes = 0
	}
}

// GetState 获取当前状态
func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
