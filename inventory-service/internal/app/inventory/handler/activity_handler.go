package handler

import (
	"net/http"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/inventory-service/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ActivityHandler struct {
	activityService service.ActivityServiceInterface
	validator       *validator.Validate
}

func NewActivityHandler(activityService service.ActivityServiceInterface) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		validator:       newValidator(),
	}
}

// ListActivityLogs - GET /api/activity-logs
func (h *ActivityHandler) ListActivityLogs(c *gin.Context) {
	var query entity.ActivityLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.activityService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Failed to get activity logs")
		return
	}

	c.JSON(http.StatusOK, page)
}

// CreateActivityLog - POST /api/activity-logs
func (h *ActivityHandler) CreateActivityLog(c *gin.Context) {
	var req entity.CreateActivityLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	log, err := h.activityService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create activity log")
		return
	}

	c.JSON(http.StatusCreated, entity.DataResponse{Success: true, Data: log})
}

// ListAdmins - GET /api/activity-logs/admins
func (h *ActivityHandler) ListAdmins(c *gin.Context) {
	actors, err := h.activityService.Actors(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get admins")
		return
	}

	c.JSON(http.StatusOK, entity.DataResponse{Success: true, Data: actors})
}
