package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/taskhub-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB, log *slog.Logger) error {
	log.Info("Running database migrations")
	err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Task{},
		&models.Project{},
		&models.BlacklistedToken{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	log.Info("Database migrations completed")
	return nil
}

// AddIndexes adds the composite indexes used by owner-scoped listing.
func AddIndexes(db *gorm.DB, log *slog.Logger) error {
	indexes := []struct {
		model   interface{}
		table   string
		name    string
		columns string
	}{
		{&models.Team{}, "teams", "idx_teams_owner_created", "owner_id, created_at"},
		{&models.Task{}, "tasks", "idx_tasks_creator_created", "creator_id, created_at"},
		{&models.Task{}, "tasks", "idx_tasks_creator_status", "creator_id, status"},
		{&models.Project{}, "projects", "idx_projects_creator_team", "created_by, team_id"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug("Index already exists, skipping", slog.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("Created index", slog.String("index", idx.name), slog.String("table", idx.table))
	}

	return nil
}
