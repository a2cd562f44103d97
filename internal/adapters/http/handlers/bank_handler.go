package handlers

import (
	"errors"
	"strings"

	"aphc-housingportal/internal/core/domain"
	"aphc-housingportal/internal/core/services"
	"aphc-housingportal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BankHandler handles beneficiary bank detail endpoints
type BankHandler struct {
	bankService     *services.BankService
	identityService *services.IdentityService
}

// NewBankHandler creates a new bank handler
func NewBankHandler(bankService *services.BankService, identityService *services.IdentityService) *BankHandler {
	return &BankHandler{
		bankService:     bankService,
		identityService: identityService,
	}
}

// VerifyIdentity handles the pre-submission identity check
// @Summary Verify beneficiary identity
// @Description Verify the unique ID, Aadhaar and phone triple of an approved application
// @Tags Bank Details
// @Accept json
// @Produce json
// @Param body body services.IdentityRequest true "Identity proof"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bank-details/verify [post]
func (h *BankHandler) VerifyIdentity(c *fiber.Ctx) error {
	var req services.IdentityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.UniqueID = strings.ToUpper(strings.TrimSpace(req.UniqueID))

	app, err := h.identityService.Verify(c.Context(), &req, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "No approved application matches the given details")
		default:
			return response.InternalServerError(c, "Identity verification failed")
		}
	}

	return response.Success(c, "Identity verified", fiber.Map{
		"application_id": app.ApplicationID,
		"full_name":      app.FullName,
		"district":       app.District,
	})
}

// Submit handles bank detail submission
// @Summary Submit bank details
// @Description Store subsidy disbursement bank details for an approved beneficiary
// @Tags Bank Details
// @Accept json
// @Produce json
// @Param body body services.BankDetailsRequest true "Bank details with identity proof"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bank-details [post]
func (h *BankHandler) Submit(c *fiber.Ctx) error {
	var req services.BankDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.UniqueID = strings.ToUpper(strings.TrimSpace(req.UniqueID))
	req.IFSCCode = strings.ToUpper(strings.TrimSpace(req.IFSCCode))

	err := h.bankService.Submit(c.Context(), &req, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "No approved application matches the given details")
		case errors.Is(err, domain.ErrAlreadyExists):
			return response.Conflict(c, "Bank details have already been submitted for this unique ID")
		default:
			return response.InternalServerError(c, "Failed to save bank details")
		}
	}

	return response.Created(c, "Bank details saved successfully", fiber.Map{
		"unique_id": req.UniqueID,
	})
}
