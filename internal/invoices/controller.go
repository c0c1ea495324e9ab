package invoices

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"atlastours/internal/shared/utils/response"
)

type Controller interface {
	DownloadInvoice(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) DownloadInvoice(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	pdf, filename, err := ctrl.service.GenerateInvoice(c.Request.Context(), bookingID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
