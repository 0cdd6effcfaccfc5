package handlers

import (
	"net/http"

	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) GetRecent(c *gin.Context) {
	tasks, err := h.dashboardService.Recent(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *DashboardHandler) GetRecentActivity(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	activities, err := h.dashboardService.RecentActivity(c.Request.Context(), userID(c), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}

func (h *DashboardHandler) GetTotals(c *gin.Context) {
	totals, err := h.dashboardService.Totals(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}
