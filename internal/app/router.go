// internal/app/router.go
package app

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	customerHandler "github.com/jejak-awan/ja-kdua-sub010/internal/handlers/customer"
	diagnosticHandler "github.com/jejak-awan/ja-kdua-sub010/internal/handlers/diagnostic"
	ippoolHandler "github.com/jejak-awan/ja-kdua-sub010/internal/handlers/ippool"
	"github.com/jejak-awan/ja-kdua-sub010/internal/middleware"
)

type Handlers struct {
	CustomerHandler   *customerHandler.CustomerHandler
	DiagnosticHandler *diagnosticHandler.DiagnosticHandler
	IPPoolHandler     *ippoolHandler.IPPoolHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Customers ====================
	customers := api.Group("/customers")
	customers.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireOperator())
	{
		customers.POST("", h.CustomerHandler.CreateCustomer)
		customers.GET("/:id", h.CustomerHandler.GetCustomer)
		customers.PUT("/:id/status", h.CustomerHandler.UpdateStatus)
		customers.DELETE("/:id", h.CustomerHandler.DeleteCustomer)

		// ONU provisioning
		customers.POST("/:id/onu", h.CustomerHandler.RegisterONU)
		customers.POST("/:id/onu/reboot", h.CustomerHandler.RebootONU)
	}

	// ==================== Diagnostics ====================
	// Self-care tokens may hit these for their own customer ID
	diagnostics := api.Group("/customers/:id/diagnostics")
	diagnostics.Use(h.AuthMiddleware.Auth())
	{
		diagnostics.POST("", h.DiagnosticHandler.Diagnose)
		diagnostics.GET("/last", h.DiagnosticHandler.LastReport)
	}

	// WebSocket stream pushes stage outcomes live
	r.GET("/ws/customers/:id/diagnostics", h.AuthMiddleware.Auth(), h.DiagnosticHandler.Stream)

	// ==================== IP Pools ====================
	pools := api.Group("/pools")
	pools.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireOperator())
	{
		pools.POST("", h.IPPoolHandler.CreatePool)
		pools.GET("/capacity", h.IPPoolHandler.Capacity)
		pools.PUT("/:id/status", h.IPPoolHandler.SetStatus)
	}
}
