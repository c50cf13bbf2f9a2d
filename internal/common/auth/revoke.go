package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker 访问令牌吊销名单：登出时按 jti 记录，有效期与 token 对齐。
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevoker 进程内吊销名单，单实例部署或测试用。
type MemoryRevoker struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{entries: make(map[string]time.Time)}
}

func (r *MemoryRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return fmt.Errorf("jti is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[jti] = time.Now().Add(ttl)
	return nil
}

func (r *MemoryRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	r.mu.RLock()
	expiry, ok := r.entries[jti]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		r.mu.Lock()
		delete(r.entries, jti)
		r.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// RedisRevoker 基于 Redis 的吊销名单，key 自带 TTL，多实例共享。
type RedisRevoker struct {
	client *redis.Client
	prefix string
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client, prefix: "auth:revoked:"}
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if jti == "" {
		return fmt.Errorf("jti is empty")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return r.client.Set(ctx, r.prefix+jti, "1", ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r == nil || r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if jti == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
