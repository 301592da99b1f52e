package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskrouter/internal/models"
	"taskrouter/internal/store"
)

type TaskHandler interface {
	GetTasks(c *gin.Context)
}

type taskHandler struct {
	store  *store.TaskStore
	logger *zap.Logger
}

func NewTaskHandler(taskStore *store.TaskStore, logger *zap.Logger) TaskHandler {
	return &taskHandler{store: taskStore, logger: logger}
}

// GetTasks handles GET /api/tasks
// Query parameters (all optional): status, route_to, source.
// The caller's identity and role come from the verified JWT claims, never
// from request parameters.
func (h *taskHandler) GetTasks(c *gin.Context) {
	callerID := c.MustGet("username").(string)
	callerRole := models.Role(c.MustGet("role").(string))

	filters := models.TaskFilters{
		Status:  models.TaskStatus(c.Query("status")),
		RouteTo: models.Route(c.Query("route_to")),
		Source:  models.TaskSource(c.Query("source")),
	}

	tasks, err := h.store.GetTasks(c.Request.Context(), callerID, callerRole, filters)
	if err != nil {
		h.logger.Error("Failed to get tasks", zap.String("caller_id", callerID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}
