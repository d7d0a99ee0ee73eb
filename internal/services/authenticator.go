package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/observability/metrics"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"github.com/yukikurage/taskhub-api/internal/token"
)

// ErrAuthenticationFailed is returned when a request carries a token that
// cannot be accepted. The cause is logged, never returned to the client.
var ErrAuthenticationFailed = errors.New("invalid token")

const (
	channelHeader = "header"
	channelCookie = "cookie"
	channelNone   = "none"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	User   *models.User
	Claims *token.Claims
}

// Authenticator resolves the principal of a request from the Authorization
// header or, failing that, the access token cookie.
type Authenticator struct {
	issuer     *token.Issuer
	blacklist  token.Blacklist
	users      repository.UserRepository
	cookieName string
	logger     *slog.Logger
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(issuer *token.Issuer, blacklist token.Blacklist, users repository.UserRepository, cookieName string, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		issuer:     issuer,
		blacklist:  blacklist,
		users:      users,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Authenticate returns (principal, nil) for a valid token, (nil, nil) when
// neither channel carries a token and (nil, ErrAuthenticationFailed) when a
// token is present but rejected.
func (a *Authenticator) Authenticate(r *http.Request) (*Principal, error) {
	raw, channel := a.extract(r)
	if raw == "" {
		a.logger.Debug("no JWT token found in header or cookie")
		metrics.ObserveAuthentication(channelNone, "anonymous")
		return nil, nil
	}

	principal, err := a.validate(r.Context(), raw)
	if err != nil {
		a.logger.Error("JWT authentication failed",
			slog.String("channel", channel),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		metrics.ObserveAuthentication(channel, "failure")
		return nil, ErrAuthenticationFailed
	}

	metrics.ObserveAuthentication(channel, "success")
	return principal, nil
}

func (a *Authenticator) extract(r *http.Request) (string, string) {
	if raw, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return raw, channelHeader
	}

	if a.cookieName != "" {
		if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
			return cookie.Value, channelCookie
		}
	}

	return "", channelNone
}

// bearerToken accepts exactly "Bearer <token>" with a case-insensitive scheme.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func (a *Authenticator) validate(ctx context.Context, raw string) (*Principal, error) {
	claims, err := a.issuer.Parse(raw, token.TypeAccess)
	if err != nil {
		return nil, err
	}

	user, err := activeUser(ctx, a.users, a.blacklist, claims)
	if err != nil {
		return nil, err
	}

	return &Principal{User: user, Claims: claims}, nil
}

// activeUser checks the blacklist and loads the token's user, who must
// still exist and be active.
func activeUser(ctx context.Context, users repository.UserRepository, blacklist token.Blacklist, claims *token.Claims) (*models.User, error) {
	revoked, err := blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if revoked {
		return nil, token.ErrRevoked
	}

	user, err := users.FindByID(ctx, claims.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}
