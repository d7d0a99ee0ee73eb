package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/constants"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/observability/metrics"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"github.com/yukikurage/taskhub-api/internal/token"
	"github.com/yukikurage/taskhub-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken           = errors.New("email already exists")
	ErrWeakPassword         = errors.New("password does not meet policy")
	ErrUsernameUnavailable  = errors.New("could not allocate a unique username")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountDisabled      = errors.New("user account is disabled")
	ErrUserNotFound         = errors.New("user not found")
	ErrIncorrectOldPassword = errors.New("old password is incorrect")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

const usernameRetryDelay = 10 * time.Millisecond

// AuthService handles registration, login, logout, token refresh and
// password and profile changes.
type AuthService struct {
	users     repository.UserRepository
	issuer    *token.Issuer
	blacklist token.Blacklist
	cfg       config.AuthConfig
	logger    *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, issuer *token.Issuer, blacklist token.Blacklist, cfg config.AuthConfig, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		issuer:    issuer,
		blacklist: blacklist,
		cfg:       cfg,
		logger:    logger,
	}
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User   *models.User
	Tokens *token.Pair
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a user with a username derived from the email and
// issues a token pair for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	result, err := s.register(ctx, input)
	observe("register", err)
	return result, err
}

func (s *AuthService) register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := utils.NormalizeEmail(input.Email)

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, emailTakenError()
	}

	base := utils.UsernameBase(email)
	problems := ValidatePassword(input.Password, PasswordAttributes{
		Email:     email,
		Username:  base,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if len(problems) > 0 {
		return nil, fieldError(ErrWeakPassword, "password", problems...)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		IsActive:     true,
	}

	backoff := retry.WithMaxRetries(uint64(s.cfg.UsernameMaxRetries), retry.NewConstant(usernameRetryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		username, err := s.availableUsername(ctx, base)
		if err != nil {
			return err
		}

		user.ID = uuid.Nil
		user.Username = username
		err = s.users.Create(ctx, user)
		if err == nil || !repository.IsUniqueViolation(err) {
			return err
		}

		// The unique index caught a concurrent registration. A taken email is
		// final; a taken username is retried with the next free suffix.
		taken, checkErr := s.users.ExistsByEmail(ctx, email)
		if checkErr != nil {
			return checkErr
		}
		if taken {
			return emailTakenError()
		}

		s.logger.Warn("Username taken concurrently, retrying", slog.String("username", username))
		return retry.RetryableError(err)
	})
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			return nil, err
		case repository.IsUniqueViolation(err):
			return nil, ErrUsernameUnavailable
		default:
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	tokens, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", slog.String("user_id", user.ID.String()), slog.String("username", user.Username))
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// availableUsername returns base, or base_1, base_2, ... whichever is free.
func (s *AuthService) availableUsername(ctx context.Context, base string) (string, error) {
	for n := 0; ; n++ {
		candidate := utils.UsernameCandidate(base, n)
		exists, err := s.users.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials, records the login time and issues a token pair.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	result, err := s.login(ctx, input)
	observe("login", err)
	return result, err
}

func (s *AuthService) login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(input.Email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	now := time.Now()
	if err := s.users.UpdateColumns(ctx, user.ID, map[string]interface{}{"last_login": now}); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	tokens, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

// LogoutInput holds whatever credentials the logout request carried.
type LogoutInput struct {
	RefreshToken string
	Principal    *Principal
}

// Logout revokes the supplied refresh token and, for an authenticated
// request, the access token it used. Token problems are logged and ignored.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) {
	if input.RefreshToken != "" {
		claims, err := s.issuer.Parse(input.RefreshToken, token.TypeRefresh)
		if err != nil {
			s.logger.Debug("Ignoring unusable refresh token on logout", slog.Any("error", err))
		} else {
			s.revoke(ctx, claims)
		}
	}

	if input.Principal != nil && input.Principal.Claims != nil {
		s.revoke(ctx, input.Principal.Claims)
	}

	metrics.ObserveSessionEvent("logout", "success")
}

func (s *AuthService) revoke(ctx context.Context, claims *token.Claims) {
	revoked, err := s.blacklist.Revoke(ctx, claims)
	if err != nil {
		s.logger.Warn("Failed to blacklist token",
			slog.String("jti", claims.ID),
			slog.Any("error", err),
		)
		return
	}
	if revoked {
		metrics.ObserveRevocation(string(claims.TokenType))
	}
}

// RefreshResult holds the tokens issued by Refresh. Refresh is empty unless
// rotation is enabled.
type RefreshResult struct {
	Access        string
	AccessClaims  *token.Claims
	Refresh       string
	RefreshClaims *token.Claims
}

// Refresh exchanges a refresh token for a new access token. With rotation
// enabled the old refresh token is revoked and a new one issued; only one
// of several concurrent refreshes of the same token can win the revocation.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*RefreshResult, error) {
	result, err := s.refresh(ctx, raw)
	observe("refresh", err)
	return result, err
}

func (s *AuthService) refresh(ctx context.Context, raw string) (*RefreshResult, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: no refresh token provided", ErrInvalidRefreshToken)
	}

	claims, err := s.issuer.Parse(raw, token.TypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}

	user, err := activeUser(ctx, s.users, s.blacklist, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}

	result := &RefreshResult{}
	if s.cfg.RotateRefreshTokens {
		revoked, err := s.blacklist.Revoke(ctx, claims)
		if err != nil {
			return nil, fmt.Errorf("failed to blacklist refresh token: %w", err)
		}
		if !revoked {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, token.ErrRevoked)
		}
		metrics.ObserveRevocation(string(token.TypeRefresh))

		result.Refresh, result.RefreshClaims, err = s.issuer.Issue(user.ID, token.TypeRefresh)
		if err != nil {
			return nil, err
		}
	}

	result.Access, result.AccessClaims, err = s.issuer.Issue(user.ID, token.TypeAccess)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ChangePasswordInput holds the current and the desired password.
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// ChangePassword replaces the password after checking the old one. Issued
// tokens stay valid.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	err := s.changePassword(ctx, input)
	observe("change_password", err)
	return err
}

func (s *AuthService) changePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.GetUser(ctx, input.UserID)
	if err != nil {
		return err
	}

	verr := &ValidationError{}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		verr.Err = ErrIncorrectOldPassword
		verr.Add("old_password", "Old password is incorrect.")
	}
	problems := ValidatePassword(input.NewPassword, PasswordAttributes{
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if len(problems) > 0 {
		if verr.Err == nil {
			verr.Err = ErrWeakPassword
		}
		verr.Add("new_password", problems...)
	}
	if len(verr.Fields) > 0 {
		return verr
	}

	hash, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdateColumns(ctx, user.ID, map[string]interface{}{"password_hash": hash}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password changed", slog.String("user_id", user.ID.String()))
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput lists the editable profile fields. Nil pointers are
// left unchanged; Avatar and Phone may be cleared by setting the matching
// *Set flag with a nil value.
type UpdateProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Avatar    *string
	AvatarSet bool
	Phone     *string
	PhoneSet  bool
}

// UpdateProfile applies a partial profile update.
func (s *AuthService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := utils.NormalizeEmail(*input.Email)
		if email == "" {
			return nil, fieldError(ErrBlankField, "email", blankMessage)
		}
		if email != user.Email {
			other, err := s.users.FindByEmail(ctx, email)
			if err == nil && other.ID != user.ID {
				return nil, emailTakenError()
			}
			if err != nil && !repository.IsNotFound(err) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
		}
		user.Email = email
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.AvatarSet {
		user.Avatar = input.Avatar
	}
	if input.PhoneSet {
		if input.Phone != nil && len([]rune(*input.Phone)) > constants.MaxPhoneLength {
			return nil, fieldError(nil, "phone",
				fmt.Sprintf("Ensure this field has no more than %d characters.", constants.MaxPhoneLength))
		}
		user.Phone = input.Phone
	}

	if err := s.users.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, emailTakenError()
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func emailTakenError() *ValidationError {
	return fieldError(ErrEmailTaken, "email", "user with this email already exists.")
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFailedToHashPassword, err)
	}
	return string(hashed), nil
}

func observe(event string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.ObserveSessionEvent(event, result)
}
