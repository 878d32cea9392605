package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/middleware"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListTasks returns the tasks starting within the coming month, marking
// the ones the caller can complete.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.Upcoming(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindError(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// CompleteTask marks a task done. Only its assignees may do so.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	if err := h.taskService.Complete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
