package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/token"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// ExistsByEmail reports whether any user has the given email
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername reports whether any user has the given username
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Update persists every column of user
	Update(ctx context.Context, user *models.User) error

	// UpdateColumns updates only the given columns of a user
	UpdateColumns(ctx context.Context, id uuid.UUID, values map[string]interface{}) error
}

// ListQuery selects one page of an owner's resources.
type ListQuery struct {
	OwnerID uuid.UUID
	Search  string
	Filters map[string]interface{}
	Offset  int
	Limit   int
}

// OwnedRepository is the data access contract shared by every resource that
// belongs to a single user. Lookups always combine id and owner so rows of
// other users are indistinguishable from missing rows.
type OwnedRepository[T any] interface {
	// List returns one page of the owner's rows, newest first, and the total count
	List(ctx context.Context, q ListQuery) ([]T, int64, error)

	// Create inserts a new row
	Create(ctx context.Context, entity *T) error

	// FindOwned finds a row by id that belongs to owner
	FindOwned(ctx context.Context, id, owner uuid.UUID) (*T, error)

	// ExistsOwned reports whether a row with id belongs to owner
	ExistsOwned(ctx context.Context, id, owner uuid.UUID) (bool, error)

	// Update persists every column of entity
	Update(ctx context.Context, entity *T) error

	// DeleteOwned deletes a row by id that belongs to owner
	DeleteOwned(ctx context.Context, id, owner uuid.UUID) error
}

// TeamRepository adds the membership data that is removed with a team.
type TeamRepository interface {
	OwnedRepository[models.Team]

	// ListMembers lists all members of a team
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
}

// BlacklistRepository is the database-backed token blacklist.
type BlacklistRepository interface {
	token.Blacklist

	// DeleteExpired removes entries whose token expired before cutoff
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
