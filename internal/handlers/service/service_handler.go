// internal/handlers/service/service_handler.go
package service

import (
	"net/http"
	"strconv"

	domain "groupgate-service/internal/domain/service"
	"groupgate-service/internal/pkg/response"
	"groupgate-service/internal/service/catalog"

	"github.com/gin-gonic/gin"
)

type ServiceHandler struct {
	catalogService *catalog.CatalogService
}

func NewServiceHandler(catalogService *catalog.CatalogService) *ServiceHandler {
	return &ServiceHandler{
		catalogService: catalogService,
	}
}

// CreateService adds a service to the catalog
func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req domain.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.catalogService.CreateService(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to create service", err)
		return
	}

	response.Success(c, http.StatusCreated, "service created successfully", result)
}

// GetService retrieves a catalog entry by ID
func (h *ServiceHandler) GetService(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid service ID", err)
		return
	}

	result, err := h.catalogService.GetService(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusNotFound, "service not found", err)
		return
	}

	response.Success(c, http.StatusOK, "service retrieved", result)
}

// ListServices retrieves the full catalog
func (h *ServiceHandler) ListServices(c *gin.Context) {
	services, err := h.catalogService.ListServices(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list services", err)
		return
	}

	response.Success(c, http.StatusOK, "services retrieved", services)
}

// UpdateService updates a catalog entry
func (h *ServiceHandler) UpdateService(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid service ID", err)
		return
	}

	var req domain.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.catalogService.UpdateService(c.Request.Context(), id, &req)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to update service", err)
		return
	}

	response.Success(c, http.StatusOK, "service updated successfully", result)
}

// DeleteService removes a catalog entry
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid service ID", err)
		return
	}

	if err := h.catalogService.DeleteService(c.Request.Context(), id); err != nil {
		response.Error(c, http.StatusBadRequest, "failed to delete service", err)
		return
	}

	response.Success(c, http.StatusOK, "service deleted successfully", nil)
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
