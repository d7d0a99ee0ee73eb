package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/taskhub-api/internal/constants"
	apierrors "github.com/yukikurage/taskhub-api/internal/errors"
	"github.com/yukikurage/taskhub-api/internal/services"
)

// RequireAuth authenticates the request via header or cookie and rejects
// anonymous or invalid requests with 401.
func RequireAuth(authn *services.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := authn.Authenticate(c.Request)
		if err != nil {
			respondAuthFailure(c, err)
			return
		}
		if principal == nil {
			apierrors.Unauthorized(c, "")
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

// OptionalAuth stores the principal when the request carries a valid token
// and lets every request through.
func OptionalAuth(authn *services.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, err := authn.Authenticate(c.Request); err == nil && principal != nil {
			setPrincipal(c, principal)
		}
		c.Next()
	}
}

func respondAuthFailure(c *gin.Context, err error) {
	if errors.Is(err, services.ErrAuthenticationFailed) {
		apierrors.Unauthorized(c, "Invalid token")
		return
	}
	apierrors.InternalError(c, "")
}

func setPrincipal(c *gin.Context, principal *services.Principal) {
	c.Set(constants.ContextKeyUser, principal)
	c.Set(constants.ContextKeyUserID, principal.User.ID)
	c.Set(constants.ContextKeyToken, principal.Claims)
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetPrincipal retrieves the authenticated principal from context
func GetPrincipal(c *gin.Context) (*services.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*services.Principal)
	return principal, ok
}
