package loyalty

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atlastours/internal/shared/utils/response"
)

type Controller interface {
	GetCustomerPoints(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetCustomerPoints(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.RespondJSON(c, "error", http.StatusBadRequest, "email query parameter is required", nil, nil)
		return
	}

	points, err := ctrl.service.GetCustomerPoints(c.Request.Context(), email)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	data := map[string]interface{}{
		"customer_email": email,
		"points":         points,
	}
	response.RespondJSON(c, "success", http.StatusOK, "Loyalty points retrieved successfully", data, nil)
}
