package bookings

import (
	"github.com/gin-gonic/gin"

	"atlastours/internal/shared/config"
	"atlastours/internal/shared/middleware"
)

func SetupBookingRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public routes - customers book and track by booking id
	publicBookings := router.Group("/bookings")
	{
		publicBookings.POST("", controller.CreateBooking)
		publicBookings.GET("/:bookingId", controller.GetBooking)
		publicBookings.POST("/:bookingId/price-response", controller.RespondToPrice)
		publicBookings.POST("/:bookingId/cancel", controller.CancelBooking)
	}

	// Admin routes - operator disposition of bookings
	adminBookings := router.Group("/admin/bookings")
	adminBookings.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireAdmin())
	{
		adminBookings.GET("", controller.ListBookings)
		adminBookings.GET("/:bookingId", controller.GetBooking)
		adminBookings.POST("/:bookingId/confirm", controller.ConfirmBooking)
		adminBookings.POST("/:bookingId/cancel", controller.CancelBooking)
		adminBookings.POST("/:bookingId/complete", controller.CompleteBooking)
		adminBookings.PUT("/:bookingId/notes", controller.UpdateNotes)
	}
}
