package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mpdirectory/internal/tasks"
)

// TaskStateReader looks up background task states.
type TaskStateReader interface {
	TaskState(ctx context.Context, taskID string) (string, error)
}

// TasksController handles task queue endpoints.
type TasksController struct {
	client TaskStateReader
}

// NewTasksController creates a new TasksController.
func NewTasksController(client TaskStateReader) *TasksController {
	return &TasksController{client: client}
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	state, err := tc.client.TaskState(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if state == tasks.StateNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": state,
	})
}
