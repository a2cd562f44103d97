package handlers

import (
	"errors"
	"strings"

	"aphc-housingportal/internal/core/domain"
	"aphc-housingportal/internal/core/services"
	"aphc-housingportal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OtpHandler handles OTP issuance endpoints
type OtpHandler struct {
	otpService *services.OtpService
}

// NewOtpHandler creates a new OTP handler
func NewOtpHandler(otpService *services.OtpService) *OtpHandler {
	return &OtpHandler{otpService: otpService}
}

// SendOtpRequest represents the OTP send request body
type SendOtpRequest struct {
	PhoneNumber string `json:"phone_number"`
	Purpose     string `json:"purpose"`
}

// Send handles OTP issuance
// @Summary Send OTP
// @Description Send a one-time code to a phone number for a given purpose
// @Tags OTP
// @Accept json
// @Produce json
// @Param body body SendOtpRequest true "Phone and purpose"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 429 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /otp/send [post]
func (h *OtpHandler) Send(c *fiber.Ctx) error {
	var req SendOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.otpService.Issue(c.Context(), strings.TrimSpace(req.PhoneNumber), req.Purpose, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrRateLimited):
			return response.TooManyRequests(c, "Too many OTP requests for this number. Try again later.")
		case errors.Is(err, domain.ErrServiceUnavailable):
			return response.ServiceUnavailable(c, "Could not deliver OTP. Please try again.")
		default:
			return response.InternalServerError(c, "Failed to send OTP")
		}
	}

	return response.Success(c, "OTP sent successfully", fiber.Map{
		"phone_number":   req.PhoneNumber,
		"expiry_minutes": services.OtpExpiryMinutes,
	})
}
