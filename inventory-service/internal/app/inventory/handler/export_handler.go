package handler

import (
	"fmt"
	"net/http"
	"time"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/inventory-service/internal/app/inventory/service"
	"inventory/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ExportHandler struct {
	exportService service.ExportServiceInterface
}

func NewExportHandler(exportService service.ExportServiceInterface) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportProductsCSV - GET /api/export/csv
func (h *ExportHandler) ExportProductsCSV(c *gin.Context) {
	var query entity.ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	setAttachment(c, contentTypeCSV, service.ExportFilename("inventory-export", "csv", time.Now()))
	err := h.exportService.ProductsCSV(c.Request.Context(), query, c.Writer)
	h.finish(c, err, "Failed to export products")
}

// ExportProductsXLSX - GET /api/export/xlsx
func (h *ExportHandler) ExportProductsXLSX(c *gin.Context) {
	var query entity.ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	setAttachment(c, contentTypeXLSX, service.ExportFilename("inventory-export", "xlsx", time.Now()))
	err := h.exportService.ProductsXLSX(c.Request.Context(), query, c.Writer)
	h.finish(c, err, "Failed to export products")
}

// ExportActivityLogsCSV - GET /api/export/activity-logs/csv
func (h *ExportHandler) ExportActivityLogsCSV(c *gin.Context) {
	var query entity.ActivityLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	setAttachment(c, contentTypeCSV, service.ExportFilename("activity-logs-export", "csv", time.Now()))
	err := h.exportService.ActivityLogsCSV(c.Request.Context(), query, c.Writer)
	h.finish(c, err, "Failed to export activity logs")
}

func setAttachment(c *gin.Context, contentType, filename string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
}

// finish reports an export error as JSON while nothing has been streamed yet.
// Once the body has started the response can only be cut short.
func (h *ExportHandler) finish(c *gin.Context, err error, message string) {
	if err == nil {
		return
	}

	if c.Writer.Written() {
		logger.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.FullPath()).
			Msg("Export aborted mid-stream")
		c.Abort()
		return
	}

	c.Writer.Header().Del("Content-Disposition")
	c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	respondError(c, err, message)
}
