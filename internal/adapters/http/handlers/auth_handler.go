package handlers

import (
	"errors"
	"strings"

	"aphc-housingportal/internal/core/domain"
	"aphc-housingportal/internal/core/services"
	"aphc-housingportal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles staff authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest represents refresh/logout request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login handles staff login
// @Summary Staff login
// @Description Authenticate an admin or worker account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return response.BadRequest(c, "Username and password are required")
	}

	pair, err := h.authService.Login(c.Context(), req.Username, req.Password, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			return response.TooManyRequests(c, "Account temporarily locked after repeated failures. Try again later.")
		case errors.Is(err, domain.ErrUnauthorized):
			return response.Unauthorized(c, "Invalid username or password")
		default:
			return response.InternalServerError(c, "Login failed")
		}
	}

	return response.Success(c, "Login successful", pair)
}

// Refresh handles token rotation
// @Summary Refresh tokens
// @Description Exchange a refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	pair, err := h.authService.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return response.Unauthorized(c, "Invalid or expired refresh token")
		}
		return response.InternalServerError(c, "Token refresh failed")
	}

	return response.Success(c, "Token refreshed", pair)
}

// Logout handles session termination
// @Summary Logout
// @Description Revoke the presented refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	if err := h.authService.Logout(c.Context(), req.RefreshToken); err != nil {
		return response.InternalServerError(c, "Logout failed")
	}
	return response.Success(c, "Logged out successfully", nil)
}

// Me handles the authenticated profile lookup
// @Summary Current user
// @Description Get the authenticated staff profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	user, err := h.authService.GetUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, "Profile loaded", user.ToResponse())
}
