package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/repository"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskService handles task business logic
type TaskService struct {
	*OwnedResource[models.Task]
}

// NewTaskService creates a new TaskService
func NewTaskService(tasks repository.OwnedRepository[models.Task]) *TaskService {
	return &TaskService{
		OwnedResource: NewOwnedResource[models.Task](tasks, ErrTaskNotFound),
	}
}

// TaskInput holds the writable task fields. Nil fields are left unchanged
// on update; DueDateSet with a nil DueDate clears the due date.
type TaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *time.Time
	DueDateSet  bool
}

// TaskFilter narrows a task listing.
type TaskFilter struct {
	Status   *models.TaskStatus
	Priority *models.TaskPriority
}

// Filters converts f into repository equality filters.
func (f TaskFilter) Filters() map[string]interface{} {
	filters := map[string]interface{}{}
	if f.Status != nil {
		filters["status"] = *f.Status
	}
	if f.Priority != nil {
		filters["priority"] = *f.Priority
	}
	return filters
}

// CreateTask creates a task owned by creatorID.
func (s *TaskService) CreateTask(ctx context.Context, creatorID uuid.UUID, input TaskInput) (*models.Task, error) {
	task := &models.Task{
		CreatorID: creatorID,
		Status:    models.TaskStatusPending,
		Priority:  models.TaskPriorityHigh,
	}
	if err := applyTaskInput(task, input); err != nil {
		return nil, err
	}
	if err := s.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies input to a task owned by creatorID.
func (s *TaskService) UpdateTask(ctx context.Context, id, creatorID uuid.UUID, input TaskInput) (*models.Task, error) {
	return s.Update(ctx, id, creatorID, func(task *models.Task) error {
		return applyTaskInput(task, input)
	})
}

func applyTaskInput(task *models.Task, input TaskInput) error {
	verr := &ValidationError{Err: ErrBlankField}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			verr.Add("title", blankMessage)
		}
		task.Title = title
	} else if task.Title == "" {
		verr.Add("title", "This field is required.")
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDateSet {
		task.DueDate = input.DueDate
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
