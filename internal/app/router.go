// internal/app/router.go
package app

import (
	"net/http"

	coldListHandler "coldlist-service/internal/handlers/coldlist"
	vendorHandler "coldlist-service/internal/handlers/vendor"
	"coldlist-service/internal/middleware"
	"coldlist-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	ColdListHandler *coldListHandler.ColdListHandler
	VendorHandler   *vendorHandler.VendorHandler
	AuthMiddleware  *middleware.AuthMiddleware
	// RateLimit is nil when no limiter backend is configured.
	RateLimit gin.HandlerFunc
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": "1.0.0"})
	})

	protected := api.Group("")
	protected.Use(h.AuthMiddleware.Auth())
	if h.RateLimit != nil {
		protected.Use(h.RateLimit)
	}

	// ==================== Vendors ====================
	vendors := protected.Group("/vendors")
	{
		vendors.GET("", h.VendorHandler.ListVendors)
		vendors.POST("", h.VendorHandler.CreateVendor)
		vendors.GET("/:id", h.VendorHandler.GetVendor)
		vendors.PUT("/:id", h.VendorHandler.UpdateVendor)
		vendors.DELETE("/:id", h.VendorHandler.DeleteVendor)
	}

	// ==================== Cold Lists ====================
	coldLists := protected.Group("/cold-lists")
	{
		coldLists.GET("", h.ColdListHandler.ListColdLists)
		coldLists.POST("", h.ColdListHandler.CreateColdList)

		// Reporting across lists
		coldLists.GET("/vendor-contacts-stats", h.ColdListHandler.GetVendorStats)
		coldLists.GET("/assigned/daily-summary", h.ColdListHandler.GetAssignedDailySummary)

		// Single list
		coldLists.GET("/:id", h.ColdListHandler.GetColdList)
		coldLists.POST("/:id/import", h.ColdListHandler.ImportClients)
		coldLists.POST("/:id/generate-tasks", h.ColdListHandler.GenerateTasks)
		coldLists.POST("/:id/redistribute", h.ColdListHandler.Redistribute)
		coldLists.PUT("/:id/contact-client", h.ColdListHandler.ContactClient)
		coldLists.GET("/:id/daily-contacts", h.ColdListHandler.GetDailyContacts)
		coldLists.PUT("/:id/cancel", h.ColdListHandler.CancelColdList)
		coldLists.DELETE("/:id", h.ColdListHandler.DeleteColdList)
	}

	// ==================== Fallback ====================
	r.NoRoute(func(c *gin.Context) {
		logger.Debug("route not found", zap.String("path", c.Request.URL.Path))
		response.NotFound(c, "route not found")
	})
}
