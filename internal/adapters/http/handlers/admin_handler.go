package handlers

import (
	"errors"
	"strings"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/core/domain"
	"aphc-housingportal/internal/core/services"
	"aphc-housingportal/internal/pkg/pagination"
	"aphc-housingportal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the staff review console endpoints
type AdminHandler struct {
	appService   *services.ApplicationService
	bankService  *services.BankService
	auditService *services.AuditService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(appService *services.ApplicationService, bankService *services.BankService, auditService *services.AuditService) *AdminHandler {
	return &AdminHandler{
		appService:   appService,
		bankService:  bankService,
		auditService: auditService,
	}
}

// RejectRequest represents the rejection request body
type RejectRequest struct {
	Reason string `json:"reason"`
}

// ListApplications handles the application queue listing
// @Summary List applications
// @Description List applications, optionally filtered by status
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /admin/applications [get]
func (h *AdminHandler) ListApplications(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")

	apps, total, err := h.appService.List(c.Context(), status, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to list applications")
	}

	items := make([]*models.ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		items = append(items, app.ToResponse())
	}
	return response.Success(c, "Applications listed", pagination.NewResponse(items, params, total))
}

// GetApplication handles the review detail view. Opening a paid
// application moves it to under_review.
// @Summary Get application detail
// @Description Load one application for review
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/applications/{id} [get]
func (h *AdminHandler) GetApplication(c *fiber.Ctx) error {
	applicationID := strings.TrimSpace(c.Params("id"))
	reviewerID, _ := c.Locals("userID").(uint)

	app, err := h.appService.OpenForReview(c.Context(), applicationID, reviewerID, clientMeta(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to load application")
	}

	return response.Success(c, "Application loaded", app)
}

// Approve handles application approval
// @Summary Approve application
// @Description Approve a paid or under-review application and mint its beneficiary ID
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/applications/{id}/approve [post]
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	applicationID := strings.TrimSpace(c.Params("id"))
	reviewerID, _ := c.Locals("userID").(uint)

	app, err := h.appService.Approve(c.Context(), applicationID, reviewerID, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, domain.ErrInvalidStateTransition):
			return response.Conflict(c, "Application is not in a reviewable state")
		default:
			return response.InternalServerError(c, "Failed to approve application")
		}
	}

	return response.Success(c, "Application approved", fiber.Map{
		"application_id": app.ApplicationID,
		"status":         app.Status,
		"unique_id":      app.Approval.UniqueID,
	})
}

// Reject handles application rejection
// @Summary Reject application
// @Description Reject a paid or under-review application with a reason
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body RejectRequest true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/applications/{id}/reject [post]
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	applicationID := strings.TrimSpace(c.Params("id"))
	reviewerID, _ := c.Locals("userID").(uint)

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.appService.Reject(c.Context(), applicationID, reviewerID, req.Reason, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, domain.ErrInvalidStateTransition):
			return response.Conflict(c, "Application is not in a reviewable state")
		default:
			return response.InternalServerError(c, "Failed to reject application")
		}
	}

	return response.Success(c, "Application rejected", fiber.Map{
		"application_id": app.ApplicationID,
		"status":         app.Status,
	})
}

// RevealBankDetails handles the privileged decrypted bank view
// @Summary View bank details
// @Description Decrypt a beneficiary's bank details; the access is audit logged
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param uniqueId path string true "Beneficiary unique ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/bank-details/{uniqueId} [get]
func (h *AdminHandler) RevealBankDetails(c *fiber.Ctx) error {
	uniqueID := strings.TrimSpace(c.Params("uniqueId"))
	viewerID, _ := c.Locals("userID").(uint)
	viewerRole, _ := c.Locals("role").(string)

	view, err := h.bankService.Reveal(c.Context(), uniqueID, viewerID, viewerRole, clientMeta(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "No bank details found for this unique ID")
		}
		return response.InternalServerError(c, "Failed to load bank details")
	}

	return response.Success(c, "Bank details loaded", view)
}

// ListAuditEvents handles the audit trail listing
// @Summary List audit events
// @Description List audit events, optionally filtered by action code
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param action query string false "Action code filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /admin/audit [get]
func (h *AdminHandler) ListAuditEvents(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	action := c.Query("action")

	events, total, err := h.auditService.List(c.Context(), action, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list audit events")
	}

	return response.Success(c, "Audit events listed", pagination.NewResponse(events, params, total))
}
