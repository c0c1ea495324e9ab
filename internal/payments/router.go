package payments

import (
	"github.com/gin-gonic/gin"

	"atlastours/internal/shared/config"
	"atlastours/internal/shared/middleware"
)

func SetupPaymentRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public routes - customers initiate payments and submit evidence
	publicPayments := router.Group("/payments")
	{
		publicPayments.POST("", controller.CreatePayment)
		publicPayments.GET("/:paymentId", controller.GetPayment)
		publicPayments.POST("/:paymentId/evidence", controller.SubmitEvidence)
		publicPayments.POST("/:paymentId/cancel", controller.CancelPayment)
	}

	// Admin routes - operator reconciliation. Confirm, reject and refund are
	// admin-only.
	adminPayments := router.Group("/admin/payments")
	adminPayments.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireAdmin())
	{
		adminPayments.GET("", controller.ListPayments)
		adminPayments.GET("/:paymentId", controller.GetPayment)
		adminPayments.POST("/:paymentId/confirm", controller.ConfirmPayment)
		adminPayments.POST("/:paymentId/reject", controller.RejectPayment)
		adminPayments.POST("/:paymentId/refund", controller.RefundPayment)
	}
}
