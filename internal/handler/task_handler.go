package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/fieldops/dispatch-backend-go/internal/models"
	"github.com/fieldops/dispatch-backend-go/internal/repository"
	"github.com/fieldops/dispatch-backend-go/internal/service"
	"github.com/fieldops/dispatch-backend-go/pkg/response"
)

// TaskHandler handles management API requests for worker tasks
type TaskHandler struct {
	tasks    *repository.TaskRepository
	dispatch *service.DispatchService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks *repository.TaskRepository, dispatch *service.DispatchService) *TaskHandler {
	return &TaskHandler{tasks: tasks, dispatch: dispatch}
}

// DispatchTaskRequest represents the request body for dispatching a task
type DispatchTaskRequest struct {
	IntegrationID int64  `json:"integration_id" binding:"required"`
	WorkerChatID  int64  `json:"worker_chat_id" binding:"required"`
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	ExternalRef   string `json:"external_ref"`
}

// DispatchTask creates a task and sends its status card to the worker chat
// POST /api/v1/tasks
func (h *TaskHandler) DispatchTask(c *gin.Context) {
	var req DispatchTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.dispatch.Dispatch(c.Request.Context(),
		req.IntegrationID, req.WorkerChatID, req.Title, req.Description, req.ExternalRef)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	response.Success(c, task)
}

// GetTask retrieves a task by id
// GET /api/v1/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.tasks.FindByID(id)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if task == nil {
		response.NotFound(c, "Task not found")
		return
	}

	response.Success(c, task)
}

// ListTasks retrieves tasks with filtering and pagination
// GET /api/v1/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var filter models.TaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	tasks, err := h.tasks.List(filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"tasks":  tasks,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}
