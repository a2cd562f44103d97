package services

import (
	"context"
	"fmt"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/adapters/persistence/repositories"
	"aphc-housingportal/internal/core/domain"
)

// ContactRequest carries a public contact-form submission
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=3,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,inphone"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,min=10,max=2000"`
}

// ContactService stores public contact-form messages
type ContactService struct {
	contactRepo repositories.ContactRepository
	audit       *AuditService
}

// NewContactService creates a new contact service
func NewContactService(contactRepo repositories.ContactRepository, audit *AuditService) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		audit:       audit,
	}
}

// Submit validates and stores one message
func (s *ContactService) Submit(ctx context.Context, req *ContactRequest, meta ClientMeta) error {
	if err := Validator().Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	msg := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := s.contactRepo.Create(ctx, msg); err != nil {
		return err
	}

	s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionContactSubmitted,
		"from "+req.Email, meta)
	return nil
}
