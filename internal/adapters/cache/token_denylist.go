package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var (
	_ domain.TokenRevocationStore = (*RedisTokenDenylist)(nil)
	_ domain.TokenRevocationStore = (*MemoryTokenDenylist)(nil)
)

type RedisTokenDenylist struct {
	rdb *redis.Client
}

func NewRedisTokenDenylist(rdb *redis.Client) *RedisTokenDenylist {
	return &RedisTokenDenylist{rdb: rdb}
}

func revokedKey(tokenID string) string {
	return "revoked_token:" + tokenID
}

// Revoke keeps the token id until the token would have expired anyway.
func (d *RedisTokenDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, revokedKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("cache: revoke token: %w", err)
	}
	return nil
}

func (d *RedisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("cache: check revoked token: %w", err)
	}
	return n > 0, nil
}

type MemoryTokenDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryTokenDenylist() *MemoryTokenDenylist {
	return &MemoryTokenDenylist{revoked: make(map[string]time.Time)}
}

func (d *MemoryTokenDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for id, exp := range d.revoked {
		if now.After(exp) {
			delete(d.revoked, id)
		}
	}
	if until.After(now) {
		d.revoked[tokenID] = until
	}
	return nil
}

func (d *MemoryTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.revoked[tokenID]
	return ok && time.Now().Before(exp), nil
}
