package handlers

import (
	"net/http"

	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService services.ActivityService
}

func NewActivityHandler(activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) GetTaskActivity(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	activities, err := h.activityService.GetByTask(c.Request.Context(), userID(c), taskID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}

func (h *ActivityHandler) GetRecentActivity(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	activities, err := h.activityService.GetRecent(c.Request.Context(), userID(c), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}

func (h *ActivityHandler) GetAllActivity(c *gin.Context) {
	activities, err := h.activityService.GetAll(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}
