package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/dto"
	"github.com/yukikurage/taskhub-api/internal/services"
)

const (
	TeamNotFoundMessage = "Team not found or you don't have permission to access it"
	teamUpdateNotFound  = "Team not found or you don't have permission to update it"
	teamDeleteNotFound  = "Team not found or you don't have permission to delete it"
)

// TeamHandler serves the owner-scoped team endpoints.
type TeamHandler struct {
	teamService *services.TeamService
	pagination  config.PaginationConfig
	logger      *slog.Logger
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService *services.TeamService, pagination config.PaginationConfig, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		pagination:  pagination,
		logger:      logger,
	}
}

// ListTeams returns the caller's teams, optionally filtered by ?search=.
func (h *TeamHandler) ListTeams(c *gin.Context) {
	lr, ok := newListRequest(c, h.pagination, c.Query("search"), nil)
	if !ok {
		return
	}

	page, err := h.teamService.List(c.Request.Context(), lr.Query)
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrTeamNotFound, TeamNotFoundMessage)
		return
	}

	respondPage(c, lr.Params, page, dto.ToTeamDTO)
}

// CreateTeam creates a team owned by the caller. Any owner in the body is ignored.
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	type CreateTeamRequest struct {
		Name string `json:"name" binding:"required,max=100"`
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), userID, services.TeamInput{Name: &req.Name})
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrTeamNotFound, TeamNotFoundMessage)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team))
}

// GetTeam returns one of the caller's teams.
func (h *TeamHandler) GetTeam(c *gin.Context) {
	userID, teamID, ok := ownedRequest(c)
	if !ok {
		return
	}

	team, err := h.teamService.Get(c.Request.Context(), teamID, userID)
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrTeamNotFound, TeamNotFoundMessage)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team))
}

// ReplaceTeam handles PUT; every writable field is required.
func (h *TeamHandler) ReplaceTeam(c *gin.Context) {
	type ReplaceTeamRequest struct {
		Name string `json:"name" binding:"required,max=100"`
	}

	var req ReplaceTeamRequest
	h.update(c, &req, func() services.TeamInput {
		return services.TeamInput{Name: &req.Name}
	})
}

// PatchTeam handles PATCH; absent fields are left unchanged.
func (h *TeamHandler) PatchTeam(c *gin.Context) {
	type PatchTeamRequest struct {
		Name *string `json:"name" binding:"omitempty,max=100"`
	}

	var req PatchTeamRequest
	h.update(c, &req, func() services.TeamInput {
		return services.TeamInput{Name: req.Name}
	})
}

func (h *TeamHandler) update(c *gin.Context, req interface{}, input func() services.TeamInput) {
	userID, teamID, ok := ownedRequest(c)
	if !ok {
		return
	}
	if !bindJSON(c, req) {
		return
	}

	team, err := h.teamService.UpdateTeam(c.Request.Context(), teamID, userID, input())
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrTeamNotFound, teamUpdateNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team))
}

// DeleteTeam deletes one of the caller's teams with its members and projects.
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	userID, teamID, ok := ownedRequest(c)
	if !ok {
		return
	}

	if err := h.teamService.Delete(c.Request.Context(), teamID, userID); err != nil {
		respondResourceError(c, h.logger, err, services.ErrTeamNotFound, teamDeleteNotFound)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMembers returns the memberships of one of the caller's teams.
func (h *TeamHandler) ListMembers(c *gin.Context) {
	userID, teamID, ok := ownedRequest(c)
	if !ok {
		return
	}

	members, err := h.teamService.Members(c.Request.Context(), teamID, userID)
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrTeamNotFound, TeamNotFoundMessage)
		return
	}

	c.JSON(http.StatusOK, dto.MapSlice(members, dto.ToTeamMemberDTO))
}
