package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/repository"
)

var ErrTeamNotFound = errors.New("team not found")

// TeamService handles team business logic
type TeamService struct {
	*OwnedResource[models.Team]
	teams repository.TeamRepository
}

// NewTeamService creates a new TeamService
func NewTeamService(teams repository.TeamRepository) *TeamService {
	return &TeamService{
		OwnedResource: NewOwnedResource[models.Team](teams, ErrTeamNotFound),
		teams:         teams,
	}
}

// TeamInput holds the writable team fields. Nil fields are left unchanged
// on update.
type TeamInput struct {
	Name *string
}

// CreateTeam creates a team owned by ownerID.
func (s *TeamService) CreateTeam(ctx context.Context, ownerID uuid.UUID, input TeamInput) (*models.Team, error) {
	team := &models.Team{OwnerID: ownerID}
	if err := applyTeamInput(team, input); err != nil {
		return nil, err
	}
	if err := s.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// UpdateTeam applies input to a team owned by ownerID.
func (s *TeamService) UpdateTeam(ctx context.Context, id, ownerID uuid.UUID, input TeamInput) (*models.Team, error) {
	return s.Update(ctx, id, ownerID, func(team *models.Team) error {
		return applyTeamInput(team, input)
	})
}

// Members lists the members of a team owned by ownerID.
func (s *TeamService) Members(ctx context.Context, id, ownerID uuid.UUID) ([]models.TeamMember, error) {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}
	return s.teams.ListMembers(ctx, id)
}

func applyTeamInput(team *models.Team, input TeamInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return fieldError(ErrBlankField, "name", blankMessage)
		}
		team.Name = name
	}
	if team.Name == "" {
		return fieldError(ErrBlankField, "name", "This field is required.")
	}
	return nil
}
