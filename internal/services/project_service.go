package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/repository"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidTeam     = errors.New("team does not exist or is not owned by the caller")
)

// ProjectService handles project business logic. A project always belongs
// to a team owned by the project's creator.
type ProjectService struct {
	*OwnedResource[models.Project]
	teams repository.TeamRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projects repository.OwnedRepository[models.Project], teams repository.TeamRepository) *ProjectService {
	return &ProjectService{
		OwnedResource: NewOwnedResource[models.Project](projects, ErrProjectNotFound),
		teams:         teams,
	}
}

// ProjectInput holds the writable project fields. Nil fields are left
// unchanged on update.
type ProjectInput struct {
	Name        *string
	Description *string
	TeamID      *uuid.UUID
}

// CreateProject creates a project owned by creatorID.
func (s *ProjectService) CreateProject(ctx context.Context, creatorID uuid.UUID, input ProjectInput) (*models.Project, error) {
	project := &models.Project{CreatedBy: creatorID}
	if err := s.apply(ctx, project, input); err != nil {
		return nil, err
	}
	if err := s.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject applies input to a project owned by creatorID.
func (s *ProjectService) UpdateProject(ctx context.Context, id, creatorID uuid.UUID, input ProjectInput) (*models.Project, error) {
	return s.Update(ctx, id, creatorID, func(project *models.Project) error {
		return s.apply(ctx, project, input)
	})
}

func (s *ProjectService) apply(ctx context.Context, project *models.Project, input ProjectInput) error {
	verr := &ValidationError{Err: ErrBlankField}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			verr.Add("name", blankMessage)
		}
		project.Name = name
	} else if project.Name == "" {
		verr.Add("name", "This field is required.")
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	if input.TeamID != nil {
		owned, err := s.teams.ExistsOwned(ctx, *input.TeamID, project.CreatedBy)
		if err != nil {
			return fmt.Errorf("failed to check team: %w", err)
		}
		if !owned {
			verr.Err = ErrInvalidTeam
			verr.Add("team_id", fmt.Sprintf("Invalid pk %q - object does not exist.", input.TeamID.String()))
		}
		project.TeamID = *input.TeamID
	} else if project.TeamID == uuid.Nil {
		verr.Add("team_id", "This field is required.")
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
