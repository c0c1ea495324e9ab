package invoices

import (
	"github.com/gin-gonic/gin"
)

func SetupInvoiceRoutes(router *gin.RouterGroup, controller Controller) {
	router.GET("/bookings/:bookingId/invoice", controller.DownloadInvoice)
}
