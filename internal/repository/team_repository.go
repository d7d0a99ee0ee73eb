package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/taskhub-api/internal/models"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	*GormOwnedRepository[models.Team]
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{
		GormOwnedRepository: NewOwnedRepository[models.Team](db, "owner_id", "name"),
		db:                  db,
	}
}

// DeleteOwned deletes a team with its members and projects in a transaction
func (r *GormTeamRepository) DeleteOwned(ctx context.Context, id, owner uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Team{}).Where("id = ? AND owner_id = ?", id, owner).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		// Delete all projects in the team
		if err := tx.Where("team_id = ?", id).Delete(&models.Project{}).Error; err != nil {
			return err
		}

		// Delete all members
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}

		return deleteOwned[models.Team](tx, "owner_id", id, owner)
	})
}

// ListMembers lists all members of a team
func (r *GormTeamRepository) ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := r.db.WithContext(ctx).Where("team_id = ?", teamID).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
