package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/middleware"
	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "User", "")
		return
	}

	c.JSON(http.StatusOK, authResp)
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	authResp, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "User", "")
		return
	}

	c.JSON(http.StatusCreated, authResp)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	authResp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err, "Session", "")
		return
	}

	c.JSON(http.StatusOK, authResp)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.AccessToken(c)); err != nil {
		writeError(c, err, "Session", "")
		return
	}

	c.Status(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.GetUser(c.Request.Context(), middleware.AccessToken(c))
	if err != nil {
		writeError(c, err, "User", "")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PATCH /api/v1/auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), middleware.AccessToken(c), &req)
	if err != nil {
		writeError(c, err, "User", "")
		return
	}

	c.JSON(http.StatusOK, user)
}
