package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/config"
)

func newTestIssuer(secret string) *Issuer {
	return NewIssuer(config.AuthConfig{
		JWTSecret:            secret,
		JWTIssuer:            "taskhub-test",
		AccessTokenLifetime:  5 * time.Minute,
		RefreshTokenLifetime: 24 * time.Hour,
	})
}

func TestIssuePair_RoundTrip(t *testing.T) {
	issuer := newTestIssuer("secret")
	userID := uuid.New()

	pair, err := issuer.IssuePair(userID)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessClaims.ID, pair.RefreshClaims.ID)

	access, err := issuer.Parse(pair.Access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, access.UserID)
	assert.Equal(t, TypeAccess, access.TokenType)
	assert.Equal(t, "taskhub-test", access.Issuer)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), access.ExpiresAt.Time, 2*time.Second)

	refresh, err := issuer.Parse(pair.Refresh, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, userID, refresh.UserID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), refresh.ExpiresAt.Time, 2*time.Second)
}

func TestParse_RejectsWrongType(t *testing.T) {
	issuer := newTestIssuer("secret")
	pair, err := issuer.IssuePair(uuid.New())
	require.NoError(t, err)

	_, err = issuer.Parse(pair.Refresh, TypeAccess)
	assert.ErrorIs(t, err, ErrWrongType)

	_, err = issuer.Parse(pair.Access, TypeRefresh)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestParse_RejectsExpired(t *testing.T) {
	issuer := newTestIssuer("secret")
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, _, err := issuer.Issue(uuid.New(), TypeAccess)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(raw, TypeAccess)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestParse_RejectsForeignSignature(t *testing.T) {
	raw, _, err := newTestIssuer("other-secret").Issue(uuid.New(), TypeAccess)
	require.NoError(t, err)

	_, err = newTestIssuer("secret").Parse(raw, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_RejectsGarbageAndNoneAlgorithm(t *testing.T) {
	issuer := newTestIssuer("secret")

	_, err := issuer.Parse("not-a-jwt", TypeAccess)
	assert.ErrorIs(t, err, ErrInvalid)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:    uuid.New(),
		TokenType: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    "taskhub-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Parse(raw, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMemoryBlacklist_RevokeOnce(t *testing.T) {
	ctx := context.Background()
	issuer := newTestIssuer("secret")
	_, claims, err := issuer.Issue(uuid.New(), TypeRefresh)
	require.NoError(t, err)

	bl := NewMemoryBlacklist()

	revoked, err := bl.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	first, err := bl.Revoke(ctx, claims)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := bl.Revoke(ctx, claims)
	require.NoError(t, err)
	assert.False(t, second, "second revoke must report the token was already blacklisted")

	revoked, err = bl.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemoryBlacklist_ConcurrentRevokeHasOneWinner(t *testing.T) {
	ctx := context.Background()
	_, claims, err := newTestIssuer("secret").Issue(uuid.New(), TypeRefresh)
	require.NoError(t, err)

	bl := NewMemoryBlacklist()
	results := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		go func() {
			ok, _ := bl.Revoke(ctx, claims)
			results <- ok
		}()
	}

	winners := 0
	for i := 0; i < 20; i++ {
		if <-results {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestErrorsAreMatchable(t *testing.T) {
	issuer := newTestIssuer("secret")
	_, err := issuer.Parse("x.y.z", TypeAccess)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.False(t, errors.Is(err, ErrExpired))
}
