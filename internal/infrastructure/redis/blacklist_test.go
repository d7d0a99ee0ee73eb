package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/token"
)

func setupBlacklist(t *testing.T) (*Blacklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewBlacklist(rdb), mr
}

func claimsExpiringIn(d time.Duration) *token.Claims {
	return &token.Claims{
		UserID:    uuid.New(),
		TokenType: token.TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(d)),
		},
	}
}

func TestBlacklist_RevokeOnce(t *testing.T) {
	ctx := context.Background()
	bl, mr := setupBlacklist(t)
	claims := claimsExpiringIn(time.Hour)

	revoked, err := bl.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	first, err := bl.Revoke(ctx, claims)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := bl.Revoke(ctx, claims)
	require.NoError(t, err)
	assert.False(t, second)

	revoked, err = bl.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.True(t, mr.Exists(keyPrefix+claims.ID))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL(keyPrefix+claims.ID).Seconds(), 5)
}

func TestBlacklist_EntryExpiresWithToken(t *testing.T) {
	ctx := context.Background()
	bl, mr := setupBlacklist(t)
	claims := claimsExpiringIn(time.Minute)

	_, err := bl.Revoke(ctx, claims)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	revoked, err := bl.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBlacklist_ReportsConnectionErrors(t *testing.T) {
	ctx := context.Background()
	bl, mr := setupBlacklist(t)
	mr.Close()

	_, err := bl.IsRevoked(ctx, uuid.NewString())
	assert.Error(t, err)

	_, err = bl.Revoke(ctx, claimsExpiringIn(time.Hour))
	assert.Error(t, err)
}
