package loyalty

import (
	"github.com/gin-gonic/gin"

	"atlastours/internal/shared/config"
	"atlastours/internal/shared/middleware"
)

func SetupLoyaltyRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	adminLoyalty := router.Group("/admin/loyalty")
	adminLoyalty.Use(middleware.JWTAuthWithConfig(cfg))
	adminLoyalty.Use(middleware.RequireAdmin())
	{
		adminLoyalty.GET("/points", controller.GetCustomerPoints)
	}
}
