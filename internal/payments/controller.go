package payments

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"atlastours/internal/shared/utils/response"
)

type Controller interface {
	CreatePayment(c *gin.Context)
	GetPayment(c *gin.Context)
	ListPayments(c *gin.Context)
	SubmitEvidence(c *gin.Context)
	ConfirmPayment(c *gin.Context)
	RejectPayment(c *gin.Context)
	CancelPayment(c *gin.Context)
	RefundPayment(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	payment, err := ctrl.service.CreatePayment(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Payment created successfully", payment, nil)
}

func (ctrl *controller) GetPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid payment ID", nil, err.Error())
		return
	}

	payment, err := ctrl.service.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment retrieved successfully", payment, nil)
}

func (ctrl *controller) ListPayments(c *gin.Context) {
	var query PaymentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	payments, err := ctrl.service.ListPayments(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payments retrieved successfully", payments, nil)
}

func (ctrl *controller) SubmitEvidence(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid payment ID", nil, err.Error())
		return
	}

	var req SubmitEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	payment, err := ctrl.service.SubmitEvidence(c.Request.Context(), paymentID, req.Evidence)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Evidence submitted, payment under review", payment, nil)
}

func (ctrl *controller) ConfirmPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid payment ID", nil, err.Error())
		return
	}

	actor, exists := c.Get("user_email")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Operator not authenticated", nil, nil)
		return
	}

	result, err := ctrl.service.Confirm(c.Request.Context(), paymentID, actor.(string))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	message := "Payment confirmed successfully"
	if result.AlreadyCompleted {
		message = "Payment was already confirmed"
	}
	response.RespondJSON(c, "success", http.StatusOK, message, result, nil)
}

func (ctrl *controller) RejectPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid payment ID", nil, err.Error())
		return
	}

	var req RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	actor, exists := c.Get("user_email")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Operator not authenticated", nil, nil)
		return
	}

	if err := ctrl.service.Reject(c.Request.Context(), paymentID, req.Reason, actor.(string)); err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment rejected", nil, nil)
}

func (ctrl *controller) CancelPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid payment ID", nil, err.Error())
		return
	}

	var req CancelPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := ctrl.service.Cancel(c.Request.Context(), paymentID, req.Reason); err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment cancelled", nil, nil)
}

func (ctrl *controller) RefundPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid payment ID", nil, err.Error())
		return
	}

	var req RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	actor, exists := c.Get("user_email")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Operator not authenticated", nil, nil)
		return
	}

	payment, err := ctrl.service.Refund(c.Request.Context(), paymentID, req.Amount, req.Reason, actor.(string))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment refunded", payment, nil)
}
