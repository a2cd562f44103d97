package handlers

import (
	"errors"
	"strings"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/core/domain"
	"aphc-housingportal/internal/core/services"
	"aphc-housingportal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles the public application lifecycle endpoints
type ApplicationHandler struct {
	appService *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(appService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

// Register handles new registrations
// @Summary Register housing application
// @Description Submit a new housing application after OTP verification
// @Tags Applications
// @Accept json
// @Produce json
// @Param body body services.RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications/register [post]
func (h *ApplicationHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.FatherName = strings.TrimSpace(req.FatherName)
	req.District = strings.TrimSpace(req.District)

	app, err := h.appService.Register(c.Context(), &req, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrOTPNotVerified):
			return response.Unauthorized(c, "OTP verification failed. Request a new code and try again.")
		case errors.Is(err, domain.ErrDuplicateIdentity):
			return response.Conflict(c, "An application already exists for this Aadhaar number")
		default:
			return response.InternalServerError(c, "Failed to submit application")
		}
	}

	return response.Created(c, "Application submitted successfully", fiber.Map{
		"application_id": app.ApplicationID,
		"status":         app.Status,
		"fee_amount":     h.appService.Fee(),
	})
}

// RecordPayment handles processed fee payments
// @Summary Record application fee payment
// @Description Attach a processed fee payment to a pending application
// @Tags Applications
// @Accept json
// @Produce json
// @Param body body services.PaymentRequest true "Payment data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications/payment [post]
func (h *ApplicationHandler) RecordPayment(c *fiber.Ctx) error {
	var req services.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.ApplicationID = strings.TrimSpace(req.ApplicationID)
	req.TransactionRef = strings.TrimSpace(req.TransactionRef)

	app, err := h.appService.RecordPayment(c.Context(), &req, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, domain.ErrDuplicateTransaction):
			return response.Conflict(c, "This transaction reference has already been used")
		case errors.Is(err, domain.ErrInvalidStateTransition):
			return response.Conflict(c, "Payment is not applicable in the application's current state")
		default:
			return response.InternalServerError(c, "Failed to record payment")
		}
	}

	return response.Success(c, "Payment recorded successfully", statusView(app))
}

// CheckStatus handles the OTP-gated status lookup
// @Summary Check application status
// @Description Look up an application by name, district and phone after OTP verification
// @Tags Applications
// @Accept json
// @Produce json
// @Param body body services.StatusCheckRequest true "Status check data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/status [post]
func (h *ApplicationHandler) CheckStatus(c *fiber.Ctx) error {
	var req services.StatusCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.District = strings.TrimSpace(req.District)

	app, err := h.appService.CheckStatus(c.Context(), &req, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrInvalidOrExpiredOTP):
			return response.Unauthorized(c, "Invalid or expired OTP")
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "No application found for the given details")
		default:
			return response.InternalServerError(c, "Failed to check status")
		}
	}

	return response.Success(c, "Application found", statusView(app))
}

// CheckStatusByTransaction handles status lookup by transaction reference
// @Summary Check status by transaction
// @Description Look up an application from its payment transaction reference
// @Tags Applications
// @Produce json
// @Param ref path string true "Transaction reference"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/transaction/{ref} [get]
func (h *ApplicationHandler) CheckStatusByTransaction(c *fiber.Ctx) error {
	ref := strings.TrimSpace(c.Params("ref"))
	if ref == "" {
		return response.BadRequest(c, "Transaction reference is required")
	}

	app, err := h.appService.CheckStatusByTransaction(c.Context(), ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "No application found for this transaction")
		}
		return response.InternalServerError(c, "Failed to check status")
	}

	return response.Success(c, "Application found", statusView(app))
}

// statusView shapes an application into the applicant-facing status
// payload. Aadhaar never appears; the unique ID appears only once approved.
func statusView(app *models.Application) fiber.Map {
	view := fiber.Map{
		"application_id": app.ApplicationID,
		"full_name":      app.FullName,
		"district":       app.District,
		"status":         app.Status,
		"submitted_at":   app.CreatedAt,
	}
	if app.Payment != nil {
		view["payment"] = fiber.Map{
			"transaction_ref": app.Payment.TransactionRef,
			"amount":          app.Payment.Amount,
			"paid_at":         app.Payment.PaidAt,
		}
	}
	if app.Approval != nil {
		decision := fiber.Map{"reviewed_at": app.Approval.ReviewedAt}
		if app.Approval.UniqueID != nil {
			decision["unique_id"] = *app.Approval.UniqueID
		}
		if app.Approval.RejectionReason != nil {
			decision["rejection_reason"] = *app.Approval.RejectionReason
		}
		view["decision"] = decision
	}
	return view
}
