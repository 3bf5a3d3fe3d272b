package handler

import (
	"net/http"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/inventory-service/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	statsService service.StatsServiceInterface
}

func NewDashboardHandler(statsService service.StatsServiceInterface) *DashboardHandler {
	return &DashboardHandler{statsService: statsService}
}

// GetStats - GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get dashboard stats")
		return
	}

	c.JSON(http.StatusOK, entity.DataResponse{Success: true, Data: stats})
}

// RecomputeStats - POST /api/dashboard/stats/recompute
func (h *DashboardHandler) RecomputeStats(c *gin.Context) {
	stats, err := h.statsService.Recompute(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to recompute dashboard stats")
		return
	}

	c.JSON(http.StatusOK, entity.DataResponse{Success: true, Data: stats})
}
