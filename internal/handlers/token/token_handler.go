// internal/handlers/token/token_handler.go
package token

import (
	"errors"
	"net/http"

	"groupgate-service/internal/domain/token"
	xerrors "groupgate-service/internal/pkg/errors"
	"groupgate-service/internal/pkg/response"
	service "groupgate-service/internal/service/token"

	"github.com/gin-gonic/gin"
)

type TokenHandler struct {
	tokenService *service.TokenService
}

func NewTokenHandler(tokenService *service.TokenService) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
	}
}

// Quote previews the current rate and amount/hours conversion for a service
func (h *TokenHandler) Quote(c *gin.Context) {
	var req token.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	quote, err := h.tokenService.Quote(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, allocationStatus(err), "failed to compute quote", err)
		return
	}

	response.Success(c, http.StatusOK, "quote computed", quote)
}

// Purchase converts a confirmed payment into a token
func (h *TokenHandler) Purchase(c *gin.Context) {
	var req token.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.tokenService.Purchase(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, allocationStatus(err), "failed to purchase token", err)
		return
	}

	response.Success(c, http.StatusCreated, "token issued successfully", result)
}

// Decode recovers a token's fields from its digits
func (h *TokenHandler) Decode(c *gin.Context) {
	var req token.DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	decoded, err := h.tokenService.Decode(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, decodeStatus(err), "failed to decode token", err)
		return
	}

	response.Success(c, http.StatusOK, "token decoded", decoded)
}

// Status evaluates a token's remaining lifetime from its digits
func (h *TokenHandler) Status(c *gin.Context) {
	var req token.DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	status, err := h.tokenService.Status(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, decodeStatus(err), "failed to evaluate token status", err)
		return
	}

	response.Success(c, http.StatusOK, "token status evaluated", status)
}

// GetToken retrieves a stored token record by ID
func (h *TokenHandler) GetToken(c *gin.Context) {
	id := c.Param("id")

	result, err := h.tokenService.GetToken(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusNotFound, "token not found", err)
		return
	}

	response.Success(c, http.StatusOK, "token retrieved", result)
}

// RevokeToken marks a token revoked
func (h *TokenHandler) RevokeToken(c *gin.Context) {
	id := c.Param("id")

	if err := h.tokenService.Revoke(c.Request.Context(), id); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, xerrors.ErrNotFound) {
			status = http.StatusNotFound
		}
		response.Error(c, status, "failed to revoke token", err)
		return
	}

	response.Success(c, http.StatusOK, "token revoked successfully", nil)
}

// ListTokens retrieves stored token records with filters
func (h *TokenHandler) ListTokens(c *gin.Context) {
	var filters token.TokenListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.tokenService.ListTokens(c.Request.Context(), &filters)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list tokens", err)
		return
	}

	response.Success(c, http.StatusOK, "tokens retrieved", result)
}

// allocationStatus maps allocation failures to HTTP statuses. A lost
// capacity race is retryable, so it maps to 409 rather than 400.
func allocationStatus(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrConcurrentOverallocation):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrZeroCapacity),
		errors.Is(err, xerrors.ErrBelowMinimumPayment),
		errors.Is(err, xerrors.ErrExceedsRemainingCapacity),
		errors.Is(err, xerrors.ErrMissingSelection):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func decodeStatus(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrMalformedToken):
		return http.StatusUnprocessableEntity
	case errors.Is(err, xerrors.ErrUnknownCustomerOrService):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
