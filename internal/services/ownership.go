package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yukikurage/taskhub-api/internal/repository"
)

// ErrBlankField is the cause of a ValidationError for a required text
// field that only contains whitespace.
var ErrBlankField = errors.New("field may not be blank")

const blankMessage = "This field may not be blank."

// Page is one page of owner-scoped results.
type Page[T any] struct {
	Items []T
	Total int64
}

// OwnedResource implements the CRUD shared by every resource that belongs
// to a single user. A row owned by someone else is reported as notFound,
// exactly like a row that does not exist.
type OwnedResource[T any] struct {
	repo     repository.OwnedRepository[T]
	notFound error
}

// NewOwnedResource creates an OwnedResource that reports missing rows as notFound.
func NewOwnedResource[T any](repo repository.OwnedRepository[T], notFound error) *OwnedResource[T] {
	return &OwnedResource[T]{repo: repo, notFound: notFound}
}

// List returns one page of the owner's rows.
func (s *OwnedResource[T]) List(ctx context.Context, q repository.ListQuery) (*Page[T], error) {
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list: %w", err)
	}
	return &Page[T]{Items: items, Total: total}, nil
}

// Get returns the row with id if owner owns it.
func (s *OwnedResource[T]) Get(ctx context.Context, id, owner uuid.UUID) (*T, error) {
	entity, err := s.repo.FindOwned(ctx, id, owner)
	if err != nil {
		return nil, s.translate(err)
	}
	return entity, nil
}

// Create inserts entity. Callers set the owner before calling.
func (s *OwnedResource[T]) Create(ctx context.Context, entity *T) error {
	if err := s.repo.Create(ctx, entity); err != nil {
		return fmt.Errorf("failed to create: %w", err)
	}
	return nil
}

// Update loads the owned row, applies mutate and saves it. mutate may
// return a validation error to abort the update.
func (s *OwnedResource[T]) Update(ctx context.Context, id, owner uuid.UUID, mutate func(*T) error) (*T, error) {
	entity, err := s.Get(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if err := mutate(entity); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entity); err != nil {
		return nil, s.translate(err)
	}
	return entity, nil
}

// Delete removes the row with id if owner owns it.
func (s *OwnedResource[T]) Delete(ctx context.Context, id, owner uuid.UUID) error {
	if err := s.repo.DeleteOwned(ctx, id, owner); err != nil {
		return s.translate(err)
	}
	return nil
}

func (s *OwnedResource[T]) translate(err error) error {
	if repository.IsNotFound(err) {
		return s.notFound
	}
	return err
}
