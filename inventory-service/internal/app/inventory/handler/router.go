package handler

import (
	"net/http"

	"inventory/pkg/logger"
	"inventory/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "inventory-service"

// Handlers groups the API handlers mounted by SetupRoutes.
type Handlers struct {
	Product   *ProductHandler
	Dashboard *DashboardHandler
	Activity  *ActivityHandler
	Export    *ExportHandler
}

// SetupRoutes builds the API; adminRoles gate the recompute and manual activity log routes.
func SetupRoutes(h Handlers, authMiddleware *AuthMiddleware, adminRoles, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	}
	router.GET("/health", health)
	router.GET("/api/health", health)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(authMiddleware.Authenticate())
	adminOnly := authMiddleware.RequireRole(adminRoles...)
	{
		products := api.Group("/products")
		products.GET("", h.Product.ListProducts)
		products.GET("/brands/list", h.Product.GetBrands)
		products.GET("/:id", h.Product.GetProduct)
		products.POST("", h.Product.CreateProduct)
		products.PUT("/:id", h.Product.UpdateProduct)
		products.PATCH("/:id", h.Product.PatchProduct)
		products.DELETE("/:id", h.Product.DeleteProduct)

		dashboard := api.Group("/dashboard")
		dashboard.GET("/stats", h.Dashboard.GetStats)
		dashboard.POST("/stats/recompute", adminOnly, h.Dashboard.RecomputeStats)

		activity := api.Group("/activity-logs")
		activity.GET("", h.Activity.ListActivityLogs)
		activity.POST("", adminOnly, h.Activity.CreateActivityLog)
		activity.GET("/admins", h.Activity.ListAdmins)

		export := api.Group("/export")
		export.GET("/csv", h.Export.ExportProductsCSV)
		export.GET("/xlsx", h.Export.ExportProductsXLSX)
		export.GET("/activity-logs/csv", h.Export.ExportActivityLogsCSV)
	}

	return router
}
