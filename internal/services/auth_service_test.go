package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/logging"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"github.com/yukikurage/taskhub-api/internal/testutil"
	"github.com/yukikurage/taskhub-api/internal/token"
	"gorm.io/gorm"
)

const strongPassword = "Tr1cky-Lantern-42"

type authTestEnv struct {
	db        *gorm.DB
	users     repository.UserRepository
	issuer    *token.Issuer
	blacklist token.Blacklist
	service   *AuthService
}

func setupAuthTestEnv(t *testing.T, mutate ...func(*config.AuthConfig)) authTestEnv {
	t.Helper()

	cfg := testutil.Config().Auth
	for _, m := range mutate {
		m(&cfg)
	}

	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	issuer := token.NewIssuer(cfg)
	blacklist := repository.NewBlacklistRepository(db)

	return authTestEnv{
		db:        db,
		users:     users,
		issuer:    issuer,
		blacklist: blacklist,
		service:   NewAuthService(users, issuer, blacklist, cfg, logging.Discard()),
	}
}

func (env authTestEnv) register(t *testing.T, email string) *AuthResult {
	t.Helper()
	result, err := env.service.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: strongPassword,
	})
	require.NoError(t, err)
	return result
}

func TestRegister_CreatesUserAndTokens(t *testing.T) {
	env := setupAuthTestEnv(t)

	result, err := env.service.Register(context.Background(), RegisterInput{
		Email:     "Jane@EXAMPLE.com",
		Password:  strongPassword,
		FirstName: " Jane ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane@example.com", result.User.Email)
	assert.Equal(t, "Jane", result.User.Username)
	assert.Equal(t, "Jane", result.User.FirstName)
	assert.True(t, result.User.IsActive)
	assert.NotEqual(t, strongPassword, result.User.PasswordHash)

	claims, err := env.issuer.Parse(result.Tokens.Access, token.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
}

func TestRegister_UsernameSuffixes(t *testing.T) {
	env := setupAuthTestEnv(t)

	first := env.register(t, "sam@one.example")
	second := env.register(t, "sam@two.example")
	third := env.register(t, "sam@three.example")

	assert.Equal(t, "sam", first.User.Username)
	assert.Equal(t, "sam_1", second.User.Username)
	assert.Equal(t, "sam_2", third.User.Username)
}

func TestRegister_ConcurrentSameLocalPart(t *testing.T) {
	env := setupAuthTestEnv(t)
	const n = 5

	var wg sync.WaitGroup
	usernames := make(chan string, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := env.service.Register(context.Background(), RegisterInput{
				Email:    fmt.Sprintf("kim@host%d.example", i),
				Password: strongPassword,
			})
			if err != nil {
				errs <- err
				return
			}
			usernames <- result.User.Username
		}(i)
	}
	wg.Wait()
	close(usernames)
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}

	seen := map[string]bool{}
	for u := range usernames {
		assert.False(t, seen[u], "duplicate username %s", u)
		seen[u] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen["kim"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)
	env.register(t, "dup@example.com")

	_, err := env.service.Register(context.Background(), RegisterInput{
		Email:    "dup@EXAMPLE.COM",
		Password: strongPassword,
	})
	require.ErrorIs(t, err, ErrEmailTaken)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"user with this email already exists."}, verr.Fields["email"])
}

func TestRegister_WeakPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.service.Register(context.Background(), RegisterInput{
		Email:    "weak@example.com",
		Password: "12345678",
	})
	require.ErrorIs(t, err, ErrWeakPassword)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields["password"], "This password is entirely numeric.")
	assert.Contains(t, verr.Fields["password"], "This password is too common.")

	exists, err := env.users.ExistsByEmail(context.Background(), "weak@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLogin(t *testing.T) {
	env := setupAuthTestEnv(t)
	registered := env.register(t, "login@example.com")
	ctx := context.Background()

	result, err := env.service.Login(ctx, LoginInput{Email: "login@EXAMPLE.com", Password: strongPassword})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)
	require.NotNil(t, result.User.LastLogin)

	stored, err := env.users.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	_, err = env.service.Login(ctx, LoginInput{Email: "login@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.service.Login(ctx, LoginInput{Email: "nobody@example.com", Password: strongPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_DisabledAccount(t *testing.T) {
	env := setupAuthTestEnv(t)
	registered := env.register(t, "off@example.com")
	ctx := context.Background()

	require.NoError(t, env.users.UpdateColumns(ctx, registered.User.ID, map[string]interface{}{"is_active": false}))

	_, err := env.service.Login(ctx, LoginInput{Email: "off@example.com", Password: strongPassword})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefresh(t *testing.T) {
	env := setupAuthTestEnv(t)
	registered := env.register(t, "refresh@example.com")
	ctx := context.Background()

	result, err := env.service.Refresh(ctx, registered.Tokens.Refresh)
	require.NoError(t, err)
	assert.Empty(t, result.Refresh, "no rotation by default")

	claims, err := env.issuer.Parse(result.Access, token.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	_, err = env.service.Refresh(ctx, registered.Tokens.Access)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = env.service.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = env.service.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_FailsAfterLogout(t *testing.T) {
	env := setupAuthTestEnv(t)
	registered := env.register(t, "out@example.com")
	ctx := context.Background()

	env.service.Logout(ctx, LogoutInput{RefreshToken: registered.Tokens.Refresh})

	_, err := env.service.Refresh(ctx, registered.Tokens.Refresh)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.ErrorIs(t, err, token.ErrRevoked)
}

func TestLogout_RevokesPresentedAccessToken(t *testing.T) {
	env := setupAuthTestEnv(t)
	registered := env.register(t, "both@example.com")
	ctx := context.Background()

	env.service.Logout(ctx, LogoutInput{
		RefreshToken: "not-a-token",
		Principal:    &Principal{User: registered.User, Claims: registered.Tokens.AccessClaims},
	})

	revoked, err := env.blacklist.IsRevoked(ctx, registered.Tokens.AccessClaims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = env.blacklist.IsRevoked(ctx, registered.Tokens.RefreshClaims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	// A second logout with the same tokens is harmless.
	env.service.Logout(ctx, LogoutInput{
		Principal: &Principal{User: registered.User, Claims: registered.Tokens.AccessClaims},
	})
}

func TestRefresh_Rotation(t *testing.T) {
	env := setupAuthTestEnv(t, func(cfg *config.AuthConfig) {
		cfg.RotateRefreshTokens = true
	})
	registered := env.register(t, "rotate@example.com")
	ctx := context.Background()

	result, err := env.service.Refresh(ctx, registered.Tokens.Refresh)
	require.NoError(t, err)
	require.NotEmpty(t, result.Refresh)
	assert.NotEqual(t, registered.Tokens.RefreshClaims.ID, result.RefreshClaims.ID)

	_, err = env.service.Refresh(ctx, registered.Tokens.Refresh)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken, "old refresh token is single use")

	_, err = env.service.Refresh(ctx, result.Refresh)
	assert.NoError(t, err)
}

func TestRefresh_RotationHasOneWinner(t *testing.T) {
	env := setupAuthTestEnv(t, func(cfg *config.AuthConfig) {
		cfg.RotateRefreshTokens = true
	})
	registered := env.register(t, "race@example.com")

	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.service.Refresh(context.Background(), registered.Tokens.Refresh); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestChangePassword(t *testing.T) {
	env := setupAuthTestEnv(t)
	registered := env.register(t, "change@example.com")
	ctx := context.Background()

	err := env.service.ChangePassword(ctx, ChangePasswordInput{
		UserID:      registered.User.ID,
		OldPassword: strongPassword,
		NewPassword: "Another-Harbor-77",
	})
	require.NoError(t, err)

	_, err = env.service.Login(ctx, LoginInput{Email: "change@example.com", Password: strongPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.service.Login(ctx, LoginInput{Email: "change@example.com", Password: "Another-Harbor-77"})
	assert.NoError(t, err)

	// Issued tokens survive a password change.
	_, err = env.service.Refresh(ctx, registered.Tokens.Refresh)
	assert.NoError(t, err)
}

func TestChangePassword_WrongOldPasswordKeepsHash(t *testing.T) {
	env := setupAuthTestEnv(t)
	registered := env.register(t, "keep@example.com")
	ctx := context.Background()

	err := env.service.ChangePassword(ctx, ChangePasswordInput{
		UserID:      registered.User.ID,
		OldPassword: "not-my-password",
		NewPassword: "123",
	})
	require.ErrorIs(t, err, ErrIncorrectOldPassword)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Old password is incorrect."}, verr.Fields["old_password"])
	assert.NotEmpty(t, verr.Fields["new_password"])

	stored, err := env.users.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.User.PasswordHash, stored.PasswordHash)
}

func TestUpdateProfile(t *testing.T) {
	env := setupAuthTestEnv(t)
	registered := env.register(t, "profile@example.com")
	env.register(t, "taken@example.com")
	ctx := context.Background()

	first := "Pat"
	phone := "+15551234567"
	user, err := env.service.UpdateProfile(ctx, registered.User.ID, UpdateProfileInput{
		FirstName: &first,
		Phone:     &phone,
		PhoneSet:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pat", user.FirstName)
	require.NotNil(t, user.Phone)
	assert.Equal(t, phone, *user.Phone)

	user, err = env.service.UpdateProfile(ctx, registered.User.ID, UpdateProfileInput{PhoneSet: true})
	require.NoError(t, err)
	assert.Nil(t, user.Phone)
	assert.Equal(t, "Pat", user.FirstName)

	taken := "taken@example.com"
	_, err = env.service.UpdateProfile(ctx, registered.User.ID, UpdateProfileInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	tooLong := "1234567890123456"
	_, err = env.service.UpdateProfile(ctx, registered.User.ID, UpdateProfileInput{Phone: &tooLong, PhoneSet: true})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "phone")

	blank := "  "
	_, err = env.service.UpdateProfile(ctx, registered.User.ID, UpdateProfileInput{Email: &blank})
	assert.ErrorIs(t, err, ErrBlankField)
}
