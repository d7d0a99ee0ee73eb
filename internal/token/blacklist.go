package token

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Blacklist records revoked token ids.
type Blacklist interface {
	// Revoke blacklists the token described by claims. It reports whether
	// this call performed the revocation; false means it was already revoked.
	Revoke(ctx context.Context, claims *Claims) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RemainingTTL is how long a revocation needs to be remembered.
func RemainingTTL(claims *Claims, now time.Time) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(now)
}

// MemoryBlacklist keeps revocations in process memory. Entries expire with
// the token they describe.
type MemoryBlacklist struct {
	entries *cache.Cache
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, claims *Claims) (bool, error) {
	ttl := RemainingTTL(claims, time.Now())
	if ttl <= 0 {
		// Already expired; Parse rejects it regardless.
		ttl = time.Second
	}
	if err := b.entries.Add(claims.ID, claims.UserID.String(), ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, found := b.entries.Get(jti)
	return found, nil
}
