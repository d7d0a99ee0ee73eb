package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/taskhub-api/internal/config"
	apierrors "github.com/yukikurage/taskhub-api/internal/errors"
	"github.com/yukikurage/taskhub-api/internal/dto"
	"github.com/yukikurage/taskhub-api/internal/middleware"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"github.com/yukikurage/taskhub-api/internal/services"
	"github.com/yukikurage/taskhub-api/internal/utils"
)

const invalidPageMessage = "Invalid page."

// bindJSON binds the request body and writes a 400 with field messages on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.ValidationFailed(c, apierrors.FromBindingError(err))
		return false
	}
	return true
}

// bindQuery binds query parameters and writes a 400 with field messages on failure.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		apierrors.ValidationFailed(c, apierrors.FromBindingError(err))
		return false
	}
	return true
}

// ownedRequest returns the caller and the :id of the resource. Both are put
// in place by middleware, so a miss is a routing bug.
func ownedRequest(c *gin.Context) (caller, id uuid.UUID, ok bool) {
	userID, ok := callerID(c)
	if !ok {
		return caller, id, false
	}
	resourceID, exists := middleware.GetResourceID(c)
	if !exists {
		apierrors.InternalError(c, "")
		return caller, id, false
	}
	return userID, resourceID, true
}

// callerID returns the authenticated caller for collection endpoints.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return uuid.Nil, false
	}
	return userID, true
}

// listRequest holds everything a paginated owner-scoped listing needs.
type listRequest struct {
	Params utils.PaginationParams
	Query  repository.ListQuery
}

func newListRequest(c *gin.Context, cfg config.PaginationConfig, search string, filters map[string]interface{}) (listRequest, bool) {
	userID, ok := callerID(c)
	if !ok {
		return listRequest{}, false
	}

	params, err := utils.GetPaginationParams(c, cfg)
	if err != nil {
		apierrors.NotFound(c, invalidPageMessage)
		return listRequest{}, false
	}

	return listRequest{
		Params: params,
		Query: repository.ListQuery{
			OwnerID: userID,
			Search:  search,
			Filters: filters,
			Offset:  params.Offset,
			Limit:   params.PageSize,
		},
	}, true
}

// respondPage writes the {count, next, previous, results} envelope.
func respondPage[S, T any](c *gin.Context, params utils.PaginationParams, page *services.Page[S], convert func(S) T) {
	if err := params.CheckRange(page.Total); err != nil {
		apierrors.NotFound(c, invalidPageMessage)
		return
	}

	next, previous := utils.PageLinks(c, params, page.Total)
	c.JSON(http.StatusOK, dto.Page[T]{
		Count:    page.Total,
		Next:     next,
		Previous: previous,
		Results:  dto.MapSlice(page.Items, convert),
	})
}

// respondResourceError maps owned-resource service errors to responses.
func respondResourceError(c *gin.Context, logger *slog.Logger, err error, notFound error, notFoundMessage string) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, notFound):
		apierrors.NotFound(c, notFoundMessage)
	case errors.As(err, &verr):
		apierrors.ValidationFailed(c, apierrors.FieldErrors(verr.Fields))
	default:
		logger.Error("Request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
		apierrors.InternalError(c, "")
	}
}
