package auth

import (
	"github.com/gin-gonic/gin"

	"atlastours/internal/shared/config"
	"atlastours/internal/shared/middleware"
)

func SetupAuthRoutes(router *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	authGroup := router.Group("/auth")
	{
		// Public routes (no authentication required)
		authGroup.POST("/register", controller.Register)
		authGroup.POST("/login", controller.Login)
		authGroup.POST("/refresh", controller.RefreshToken)
		authGroup.POST("/logout", controller.Logout)

		// Protected routes (authentication required)
		protected := authGroup.Group("")
		protected.Use(middleware.JWTAuthWithConfig(cfg))
		{
			protected.PUT("/change-password", controller.ChangePassword)
			protected.GET("/me", controller.GetMe)
		}
	}
}
