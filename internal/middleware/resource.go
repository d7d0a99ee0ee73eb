package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/taskhub-api/internal/constants"
	apierrors "github.com/yukikurage/taskhub-api/internal/errors"
)

// RequireResourceID parses the :id path parameter. A malformed id can never
// match a row, so it gets the same 404 as a missing or foreign resource.
func RequireResourceID(notFoundMessage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apierrors.NotFound(c, notFoundMessage)
			return
		}

		c.Set(constants.ContextKeyResourceID, id)
		c.Next()
	}
}

// GetResourceID retrieves the parsed :id from context
func GetResourceID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(constants.ContextKeyResourceID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
