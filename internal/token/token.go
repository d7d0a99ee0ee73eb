package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/oops"
	"github.com/yukikurage/taskhub-api/internal/config"
)

// Type distinguishes access tokens from refresh tokens.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

var (
	ErrInvalid   = errors.New("token is invalid")
	ErrExpired   = errors.New("token is expired")
	ErrWrongType = errors.New("token has wrong type")
	ErrRevoked   = errors.New("token is blacklisted")
)

// Claims is the payload carried by both token types. The jti lives in
// RegisteredClaims.ID.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	TokenType Type      `json:"token_type"`
	jwt.RegisteredClaims
}

// Pair is the result of a successful login or registration.
type Pair struct {
	Access        string
	Refresh       string
	AccessClaims  *Claims
	RefreshClaims *Claims
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(cfg config.AuthConfig) *Issuer {
	return &Issuer{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		accessTTL:  cfg.AccessTokenLifetime,
		refreshTTL: cfg.RefreshTokenLifetime,
		now:        time.Now,
	}
}

// Lifetime returns the configured lifetime for typ.
func (i *Issuer) Lifetime(typ Type) time.Duration {
	if typ == TypeRefresh {
		return i.refreshTTL
	}
	return i.accessTTL
}

// IssuePair issues a fresh access and refresh token for userID.
func (i *Issuer) IssuePair(userID uuid.UUID) (*Pair, error) {
	access, accessClaims, err := i.Issue(userID, TypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, refreshClaims, err := i.Issue(userID, TypeRefresh)
	if err != nil {
		return nil, err
	}
	return &Pair{
		Access:        access,
		Refresh:       refresh,
		AccessClaims:  accessClaims,
		RefreshClaims: refreshClaims,
	}, nil
}

// Issue signs a single token of the given type.
func (i *Issuer) Issue(userID uuid.UUID, typ Type) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		UserID:    userID,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.Lifetime(typ))),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, oops.Code("TOKEN_SIGN_FAILED").With("token_type", typ).Wrap(err)
	}
	return signed, claims, nil
}

// Parse verifies the signature, expiry, issuer and type of raw. It does not
// consult the blacklist.
func (i *Issuer) Parse(raw string, want Type) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code("TOKEN_EXPIRED").Wrap(fmt.Errorf("%w: %v", ErrExpired, err))
		}
		return nil, oops.Code("TOKEN_INVALID").Wrap(fmt.Errorf("%w: %v", ErrInvalid, err))
	}

	if claims.TokenType != want {
		return nil, oops.Code("TOKEN_WRONG_TYPE").
			With("want", want).
			With("got", claims.TokenType).
			Wrap(ErrWrongType)
	}
	if claims.ID == "" || claims.UserID == uuid.Nil {
		return nil, oops.Code("TOKEN_INVALID").Wrap(fmt.Errorf("%w: missing jti or user_id", ErrInvalid))
	}
	return claims, nil
}
