package handlers

import (
	"errors"
	"strings"

	"aphc-housingportal/internal/core/domain"
	"aphc-housingportal/internal/core/services"
	"aphc-housingportal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler handles the public contact form
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Submit handles a contact form submission
// @Summary Submit contact message
// @Description Store a public contact-form message
// @Tags Contact
// @Accept json
// @Produce json
// @Param body body services.ContactRequest true "Contact message"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /contact [post]
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req services.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Message = strings.TrimSpace(req.Message)

	if err := h.contactService.Submit(c.Context(), &req, clientMeta(c)); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to submit message")
	}

	return response.Created(c, "Message received. We will get back to you shortly.", nil)
}
