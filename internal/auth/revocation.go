package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList records revoked token ids (jti) until their natural expiry.
type RevocationList interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// RedisRevocationList is the deployment implementation. Keys carry the token
// TTL, so Redis expires entries on its own and a revocation made by one
// instance is seen by all of them.
type RedisRevocationList struct {
	rdb *redis.Client
}

func NewRedisRevocationList(rdb *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{rdb: rdb}
}

func (l *RedisRevocationList) key(jti string) string { return "revoked_jti:" + jti }

func (l *RedisRevocationList) Add(ctx context.Context, jti string, ttl time.Duration) error {
	return l.rdb.Set(ctx, l.key(jti), "1", ttl).Err()
}

func (l *RedisRevocationList) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := l.rdb.Exists(ctx, l.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevocationList keeps revocations in-process. Only suitable for a
// single instance: a jti revoked here stays valid on every other instance.
type MemoryRevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{entries: make(map[string]time.Time)}
}

func (l *MemoryRevocationList) Add(_ context.Context, jti string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[jti] = time.Now().Add(ttl)
	return nil
}

func (l *MemoryRevocationList) Contains(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.entries[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(l.entries, jti)
		return false, nil
	}
	return true, nil
}
