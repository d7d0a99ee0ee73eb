package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/logging"
	"github.com/yukikurage/taskhub-api/internal/token"
)

const accessCookie = "access_token"

func newAuthenticator(env authTestEnv) *Authenticator {
	return NewAuthenticator(env.issuer, env.blacklist, env.users, accessCookie, logging.Discard())
}

func requestWith(header, cookie string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	if cookie != "" {
		r.AddCookie(&http.Cookie{Name: accessCookie, Value: cookie})
	}
	return r
}

func TestAuthenticate_Anonymous(t *testing.T) {
	env := setupAuthTestEnv(t)

	principal, err := newAuthenticator(env).Authenticate(requestWith("", ""))
	assert.NoError(t, err)
	assert.Nil(t, principal)
}

func TestAuthenticate_HeaderTakesPrecedence(t *testing.T) {
	env := setupAuthTestEnv(t)
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")
	authn := newAuthenticator(env)

	principal, err := authn.Authenticate(requestWith("Bearer "+alice.Tokens.Access, bob.Tokens.Access))
	require.NoError(t, err)
	assert.Equal(t, alice.User.ID, principal.User.ID)

	principal, err = authn.Authenticate(requestWith("bearer "+alice.Tokens.Access, ""))
	require.NoError(t, err)
	assert.Equal(t, alice.User.ID, principal.User.ID, "scheme is case-insensitive")

	// An invalid header token is not rescued by a valid cookie.
	_, err = authn.Authenticate(requestWith("Bearer garbage", bob.Tokens.Access))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthenticate_MalformedHeaderFallsBackToCookie(t *testing.T) {
	env := setupAuthTestEnv(t)
	bob := env.register(t, "bob@example.com")
	authn := newAuthenticator(env)

	for _, header := range []string{"Token abc", "Bearer", "Bearer a b"} {
		principal, err := authn.Authenticate(requestWith(header, bob.Tokens.Access))
		require.NoError(t, err, header)
		assert.Equal(t, bob.User.ID, principal.User.ID, header)
	}

	principal, err := authn.Authenticate(requestWith("Basic dXNlcjpwYXNz", ""))
	assert.NoError(t, err)
	assert.Nil(t, principal)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	env := setupAuthTestEnv(t)
	alice := env.register(t, "alice@example.com")
	authn := newAuthenticator(env)
	ctx := context.Background()

	_, err := authn.Authenticate(requestWith("Bearer "+alice.Tokens.Refresh, ""))
	assert.ErrorIs(t, err, ErrAuthenticationFailed, "refresh tokens are not access tokens")

	_, err = authn.Authenticate(requestWith("", "not-a-jwt"))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	ghost, _, err := env.issuer.Issue(uuid.New(), token.TypeAccess)
	require.NoError(t, err)
	_, err = authn.Authenticate(requestWith("Bearer "+ghost, ""))
	assert.ErrorIs(t, err, ErrAuthenticationFailed, "token for a deleted user")

	_, err = env.blacklist.Revoke(ctx, alice.Tokens.AccessClaims)
	require.NoError(t, err)
	_, err = authn.Authenticate(requestWith("Bearer "+alice.Tokens.Access, ""))
	assert.ErrorIs(t, err, ErrAuthenticationFailed, "blacklisted token")
}

func TestAuthenticate_DisabledUser(t *testing.T) {
	env := setupAuthTestEnv(t)
	alice := env.register(t, "alice@example.com")
	require.NoError(t, env.users.UpdateColumns(context.Background(), alice.User.ID, map[string]interface{}{"is_active": false}))

	_, err := newAuthenticator(env).Authenticate(requestWith("Bearer "+alice.Tokens.Access, ""))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestBearerToken(t *testing.T) {
	raw, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", raw)

	_, ok = bearerToken("")
	assert.False(t, ok)
	_, ok = bearerToken("JWT abc")
	assert.False(t, ok)
}
