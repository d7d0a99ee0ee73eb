package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/taskhub-api/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOwnedRepository is a GORM implementation of OwnedRepository. The
// owner and search columns differ per resource.
type GormOwnedRepository[T any] struct {
	db           *gorm.DB
	ownerColumn  string
	searchColumn string
}

// NewOwnedRepository creates an OwnedRepository for T.
func NewOwnedRepository[T any](db *gorm.DB, ownerColumn, searchColumn string) *GormOwnedRepository[T] {
	return &GormOwnedRepository[T]{
		db:           db,
		ownerColumn:  ownerColumn,
		searchColumn: searchColumn,
	}
}

// List returns one page of the owner's rows, newest first, and the total count
func (r *GormOwnedRepository[T]) List(ctx context.Context, q ListQuery) ([]T, int64, error) {
	query := r.db.WithContext(ctx).Model(new(T)).Scopes(
		database.OwnedBy(r.ownerColumn, q.OwnerID),
		database.Contains(r.searchColumn, q.Search),
	)
	for column, value := range q.Filters {
		query = query.Where(column+" = ?", value)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0)
	if total == 0 {
		return items, 0, nil
	}

	err := query.
		Order("created_at DESC").
		Order("id").
		Scopes(database.Paginate(q.Offset, q.Limit)).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Create inserts a new row
func (r *GormOwnedRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error
}

// FindOwned finds a row by id that belongs to owner
func (r *GormOwnedRepository[T]) FindOwned(ctx context.Context, id, owner uuid.UUID) (*T, error) {
	entity := new(T)
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Scopes(database.OwnedBy(r.ownerColumn, owner)).
		First(entity).Error
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// ExistsOwned reports whether a row with id belongs to owner
func (r *GormOwnedRepository[T]) ExistsOwned(ctx context.Context, id, owner uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Scopes(database.OwnedBy(r.ownerColumn, owner)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update persists every column of entity
func (r *GormOwnedRepository[T]) Update(ctx context.Context, entity *T) error {
	result := r.db.WithContext(ctx).Model(entity).
		Select("*").
		Omit(clause.Associations, "created_at").
		Updates(entity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteOwned deletes a row by id that belongs to owner
func (r *GormOwnedRepository[T]) DeleteOwned(ctx context.Context, id, owner uuid.UUID) error {
	return deleteOwned[T](r.db.WithContext(ctx), r.ownerColumn, id, owner)
}

func deleteOwned[T any](db *gorm.DB, ownerColumn string, id, owner uuid.UUID) error {
	result := db.Where("id = ?", id).Scopes(database.OwnedBy(ownerColumn, owner)).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
