package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/dto"
	"github.com/yukikurage/taskhub-api/internal/services"
)

const (
	ProjectNotFoundMessage = "Project not found or you don't have permission to access it"
	projectUpdateNotFound  = "Project not found or you don't have permission to update it"
	projectDeleteNotFound  = "Project not found or you don't have permission to delete it"
)

// ProjectHandler serves the creator-scoped project endpoints.
type ProjectHandler struct {
	projectService *services.ProjectService
	pagination     config.PaginationConfig
	logger         *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, pagination config.PaginationConfig, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		pagination:     pagination,
		logger:         logger,
	}
}

// ListProjects returns the caller's projects. Supports ?search= on the name
// and ?team_id=.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	type ListProjectsQuery struct {
		Search string `form:"search" json:"search"`
		TeamID string `form:"team_id" json:"team_id" binding:"omitempty,uuid"`
	}

	var query ListProjectsQuery
	if !bindQuery(c, &query) {
		return
	}

	filters := map[string]interface{}{}
	if query.TeamID != "" {
		filters["team_id"] = uuid.MustParse(query.TeamID)
	}

	lr, ok := newListRequest(c, h.pagination, query.Search, filters)
	if !ok {
		return
	}

	page, err := h.projectService.List(c.Request.Context(), lr.Query)
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrProjectNotFound, ProjectNotFoundMessage)
		return
	}

	respondPage(c, lr.Params, page, dto.ToProjectDTO)
}

type projectBody struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	TeamID      string `json:"team_id" binding:"required,uuid"`
}

func (b *projectBody) input() services.ProjectInput {
	teamID := uuid.MustParse(b.TeamID)
	return services.ProjectInput{
		Name:        &b.Name,
		Description: &b.Description,
		TeamID:      &teamID,
	}
}

// CreateProject creates a project in one of the caller's teams.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req projectBody
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), userID, req.input())
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrProjectNotFound, ProjectNotFoundMessage)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// GetProject returns one of the caller's projects.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, projectID, ok := ownedRequest(c)
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), projectID, userID)
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrProjectNotFound, ProjectNotFoundMessage)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// ReplaceProject handles PUT.
func (h *ProjectHandler) ReplaceProject(c *gin.Context) {
	var req projectBody
	h.update(c, &req, req.input)
}

// PatchProject handles PATCH; absent fields are left unchanged.
func (h *ProjectHandler) PatchProject(c *gin.Context) {
	type PatchProjectRequest struct {
		Name        *string `json:"name" binding:"omitempty,max=255"`
		Description *string `json:"description"`
		TeamID      *string `json:"team_id" binding:"omitempty,uuid"`
	}

	var req PatchProjectRequest
	h.update(c, &req, func() services.ProjectInput {
		input := services.ProjectInput{
			Name:        req.Name,
			Description: req.Description,
		}
		if req.TeamID != nil {
			teamID := uuid.MustParse(*req.TeamID)
			input.TeamID = &teamID
		}
		return input
	})
}

func (h *ProjectHandler) update(c *gin.Context, req interface{}, input func() services.ProjectInput) {
	userID, projectID, ok := ownedRequest(c)
	if !ok {
		return
	}
	if !bindJSON(c, req) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), projectID, userID, input())
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrProjectNotFound, projectUpdateNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes one of the caller's projects.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, projectID, ok := ownedRequest(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), projectID, userID); err != nil {
		respondResourceError(c, h.logger, err, services.ErrProjectNotFound, projectDeleteNotFound)
		return
	}

	c.Status(http.StatusNoContent)
}
