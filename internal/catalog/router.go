package catalog

import (
	"github.com/gin-gonic/gin"

	"atlastours/internal/shared/config"
	"atlastours/internal/shared/middleware"
)

func SetupCatalogRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public routes - anyone can browse the catalog
	publicServices := router.Group("/services")
	{
		publicServices.GET("", controller.ListServices)
		publicServices.GET("/:serviceId", controller.GetService)
		publicServices.GET("/slug/:slug", controller.GetServiceBySlug)
	}

	// Admin routes - catalog management
	adminServices := router.Group("/admin/services")
	adminServices.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireAdmin())
	{
		adminServices.POST("", controller.CreateService)
		adminServices.PUT("/:serviceId", controller.UpdateService)
		adminServices.DELETE("/:serviceId", controller.DeactivateService)
	}
}
