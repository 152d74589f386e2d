// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"net/http"
	"strconv"

	"groupgate-service/internal/domain/subscription"
	"groupgate-service/internal/pkg/response"
	service "groupgate-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// CreateSubscription opens a new capacity pool for a service
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req subscription.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.subscriptionService.CreateSubscription(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to create subscription", err)
		return
	}

	response.Success(c, http.StatusCreated, "subscription created successfully", result)
}

// GetSubscription retrieves a subscription by ID
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid subscription ID", err)
		return
	}

	result, err := h.subscriptionService.GetSubscription(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusNotFound, "subscription not found", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription retrieved", result)
}

// GetCapacity retrieves the remaining-capacity snapshot for a subscription
func (h *SubscriptionHandler) GetCapacity(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid subscription ID", err)
		return
	}

	result, err := h.subscriptionService.GetCapacity(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusNotFound, "subscription not found", err)
		return
	}

	response.Success(c, http.StatusOK, "capacity retrieved", result)
}

// ListSubscriptions retrieves subscriptions with filters
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	var filters subscription.SubscriptionListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), &filters)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list subscriptions", err)
		return
	}

	response.Success(c, http.StatusOK, "subscriptions retrieved", result)
}

// UpdateSubscription updates a subscription's terms
func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid subscription ID", err)
		return
	}

	var req subscription.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.subscriptionService.UpdateSubscription(c.Request.Context(), id, &req)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to update subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription updated successfully", result)
}

// DeleteSubscription removes a subscription
func (h *SubscriptionHandler) DeleteSubscription(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid subscription ID", err)
		return
	}

	if err := h.subscriptionService.DeleteSubscription(c.Request.Context(), id); err != nil {
		response.Error(c, http.StatusConflict, "failed to delete subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription deleted successfully", nil)
}

// GetCustomerCounts retrieves per-subscription customer counts
func (h *SubscriptionHandler) GetCustomerCounts(c *gin.Context) {
	counts, err := h.subscriptionService.GetCustomerCounts(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to get customer counts", err)
		return
	}

	response.Success(c, http.StatusOK, "customer counts retrieved", counts)
}

// GetSubscriptionStats retrieves subscription statistics
func (h *SubscriptionHandler) GetSubscriptionStats(c *gin.Context) {
	stats, err := h.subscriptionService.GetSubscriptionStats(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to get subscription stats", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription stats retrieved", stats)
}

// GetExpiringSubscriptions retrieves subscriptions whose window closes soon
func (h *SubscriptionHandler) GetExpiringSubscriptions(c *gin.Context) {
	days := 7
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid days parameter", err)
			return
		}
		days = parsed
	}

	subscriptions, err := h.subscriptionService.GetExpiringSubscriptions(c.Request.Context(), days)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to get expiring subscriptions", err)
		return
	}

	response.Success(c, http.StatusOK, "expiring subscriptions retrieved", subscriptions)
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
