package handlers

import (
	"errors"
	"strings"

	"aphc-housingportal/internal/core/domain"
	"aphc-housingportal/internal/core/services"
	"aphc-housingportal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DownloadHandler handles approval certificate downloads
type DownloadHandler struct {
	docService *services.DocumentService
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(docService *services.DocumentService) *DownloadHandler {
	return &DownloadHandler{docService: docService}
}

// Request handles the download initiation step
// @Summary Request certificate download
// @Description Verify identity and send a download OTP to the registered phone
// @Tags Download
// @Accept json
// @Produce json
// @Param body body services.IdentityRequest true "Identity proof"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /download/request [post]
func (h *DownloadHandler) Request(c *fiber.Ctx) error {
	var req services.IdentityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.UniqueID = strings.ToUpper(strings.TrimSpace(req.UniqueID))

	err := h.docService.RequestDownload(c.Context(), &req, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "No approved application matches the given details")
		case errors.Is(err, domain.ErrRateLimited):
			return response.TooManyRequests(c, "Too many OTP requests for this number. Try again later.")
		case errors.Is(err, domain.ErrServiceUnavailable):
			return response.ServiceUnavailable(c, "Could not deliver OTP. Please try again.")
		default:
			return response.InternalServerError(c, "Failed to start download")
		}
	}

	return response.Success(c, "OTP sent to the registered phone number", fiber.Map{
		"expiry_minutes": services.OtpExpiryMinutes,
	})
}

// Download handles the OTP-completed certificate download
// @Summary Download approval certificate
// @Description Verify the download OTP and stream the approval certificate PDF
// @Tags Download
// @Accept json
// @Produce application/pdf
// @Param body body services.DownloadRequest true "Identity proof with OTP"
// @Success 200 {file} binary
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /download [post]
func (h *DownloadHandler) Download(c *fiber.Ctx) error {
	var req services.DownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.UniqueID = strings.ToUpper(strings.TrimSpace(req.UniqueID))

	doc, filename, err := h.docService.Download(c.Context(), &req, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrInvalidOrExpiredOTP):
			return response.Unauthorized(c, "Invalid or expired OTP")
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "No approved application matches the given details")
		default:
			return response.InternalServerError(c, "Failed to generate certificate")
		}
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}
