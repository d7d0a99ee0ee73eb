package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/dto"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/services"
)

const (
	TaskNotFoundMessage = "Task not found or you don't have permission to access it"
	taskUpdateNotFound  = "Task not found or you don't have permission to update it"
	taskDeleteNotFound  = "Task not found or you don't have permission to delete it"
)

// TaskHandler serves the creator-scoped task endpoints.
type TaskHandler struct {
	taskService *services.TaskService
	pagination  config.PaginationConfig
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, pagination config.PaginationConfig, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		pagination:  pagination,
		logger:      logger,
	}
}

// ListTasks returns the caller's tasks. Supports ?search= on the title and
// exact ?status= and ?priority= filters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	type ListTasksQuery struct {
		Search   string              `form:"search" json:"search"`
		Status   models.TaskStatus   `form:"status" json:"status" binding:"omitempty,oneof=pending in_progress completed"`
		Priority models.TaskPriority `form:"priority" json:"priority" binding:"omitempty,oneof=low medium high critical"`
	}

	var query ListTasksQuery
	if !bindQuery(c, &query) {
		return
	}

	var filter services.TaskFilter
	if query.Status != "" {
		filter.Status = &query.Status
	}
	if query.Priority != "" {
		filter.Priority = &query.Priority
	}

	lr, ok := newListRequest(c, h.pagination, query.Search, filter.Filters())
	if !ok {
		return
	}

	page, err := h.taskService.List(c.Request.Context(), lr.Query)
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrTaskNotFound, TaskNotFoundMessage)
		return
	}

	respondPage(c, lr.Params, page, dto.ToTaskDTO)
}

type taskBody struct {
	Title       string              `json:"title" binding:"required,max=200"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Priority    models.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	DueDate     *time.Time          `json:"due_date"`
}

func (b *taskBody) input() services.TaskInput {
	input := services.TaskInput{
		Title:       &b.Title,
		Description: &b.Description,
		DueDate:     b.DueDate,
		DueDateSet:  b.DueDate != nil,
	}
	if b.Status != "" {
		input.Status = &b.Status
	}
	if b.Priority != "" {
		input.Priority = &b.Priority
	}
	return input
}

// CreateTask creates a task owned by the caller.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req taskBody
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), userID, req.input())
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrTaskNotFound, TaskNotFoundMessage)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns one of the caller's tasks.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, taskID, ok := ownedRequest(c)
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), taskID, userID)
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrTaskNotFound, TaskNotFoundMessage)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ReplaceTask handles PUT.
func (h *TaskHandler) ReplaceTask(c *gin.Context) {
	var req taskBody
	h.update(c, &req, req.input)
}

// PatchTask handles PATCH; absent fields are left unchanged and a null
// due_date clears it.
func (h *TaskHandler) PatchTask(c *gin.Context) {
	type PatchTaskRequest struct {
		Title       *string                 `json:"title" binding:"omitempty,max=200"`
		Description *string                 `json:"description"`
		Status      *models.TaskStatus      `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
		Priority    *models.TaskPriority    `json:"priority" binding:"omitempty,oneof=low medium high critical"`
		DueDate     dto.Optional[time.Time] `json:"due_date"`
	}

	var req PatchTaskRequest
	h.update(c, &req, func() services.TaskInput {
		return services.TaskInput{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
			DueDate:     req.DueDate.Value,
			DueDateSet:  req.DueDate.Set,
		}
	})
}

func (h *TaskHandler) update(c *gin.Context, req interface{}, input func() services.TaskInput) {
	userID, taskID, ok := ownedRequest(c)
	if !ok {
		return
	}
	if !bindJSON(c, req) {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, userID, input())
	if err != nil {
		respondResourceError(c, h.logger, err, services.ErrTaskNotFound, taskUpdateNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes one of the caller's tasks.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, taskID, ok := ownedRequest(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), taskID, userID); err != nil {
		respondResourceError(c, h.logger, err, services.ErrTaskNotFound, taskDeleteNotFound)
		return
	}

	c.Status(http.StatusNoContent)
}
