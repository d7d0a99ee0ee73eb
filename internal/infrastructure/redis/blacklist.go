package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/taskhub-api/internal/token"
)

const keyPrefix = "taskhub:blacklist:"

// Blacklist stores revoked jtis as keys that expire with the token.
type Blacklist struct {
	rdb redis.UniversalClient
	now func() time.Time
}

func NewBlacklist(rdb redis.UniversalClient) *Blacklist {
	return &Blacklist{rdb: rdb, now: time.Now}
}

// Revoke uses SETNX so concurrent revocations of one jti have a single winner.
func (b *Blacklist) Revoke(ctx context.Context, claims *token.Claims) (bool, error) {
	ttl := token.RemainingTTL(claims, b.now())
	if ttl <= 0 {
		ttl = time.Second
	}

	ok, err := b.rdb.SetNX(ctx, key(claims.ID), claims.UserID.String(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}
	return ok, nil
}

func (b *Blacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := b.rdb.Get(ctx, key(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return true, nil
}

func key(jti string) string {
	return keyPrefix + jti
}
