// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"

	"groupgate-service/internal/domain/admin"
	"groupgate-service/internal/middleware"
	xerrors "groupgate-service/internal/pkg/errors"
	"groupgate-service/internal/pkg/response"
	service "groupgate-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login verifies credentials and issues an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req admin.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "invalid credentials", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", result)
}

// ChangePassword rotates the authenticated admin's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)

	var req admin.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), adminID, &req); err != nil {
		if errors.Is(err, xerrors.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "current password is incorrect", err)
			return
		}
		response.Error(c, http.StatusBadRequest, "failed to change password", err)
		return
	}

	response.Success(c, http.StatusOK, "password changed successfully", nil)
}
