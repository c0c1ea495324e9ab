package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"atlastours/internal/shared/utils/response"
)

type Controller interface {
	CreateService(c *gin.Context)
	GetService(c *gin.Context)
	GetServiceBySlug(c *gin.Context)
	UpdateService(c *gin.Context)
	DeactivateService(c *gin.Context)
	ListServices(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	adminID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Admin not authenticated", nil, nil)
		return
	}
	adminUUID, err := uuid.Parse(adminID.(string))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Invalid admin ID format", nil, nil)
		return
	}

	svc, err := ctrl.service.CreateService(c.Request.Context(), adminUUID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Service created successfully", svc, nil)
}

func (ctrl *controller) GetService(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("serviceId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid service ID", nil, err.Error())
		return
	}

	svc, err := ctrl.service.GetServiceByID(c.Request.Context(), serviceID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Service retrieved successfully", svc, nil)
}

func (ctrl *controller) GetServiceBySlug(c *gin.Context) {
	svc, err := ctrl.service.GetServiceBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Service retrieved successfully", svc, nil)
}

func (ctrl *controller) UpdateService(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("serviceId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid service ID", nil, err.Error())
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	svc, err := ctrl.service.UpdateService(c.Request.Context(), serviceID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Service updated successfully", svc, nil)
}

func (ctrl *controller) DeactivateService(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("serviceId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid service ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeactivateService(c.Request.Context(), serviceID); err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Service deactivated successfully", nil, nil)
}

func (ctrl *controller) ListServices(c *gin.Context) {
	var query ServiceListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	services, err := ctrl.service.ListServices(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Services retrieved successfully", services, nil)
}
