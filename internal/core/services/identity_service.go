package services

import (
	"context"
	"errors"
	"fmt"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/adapters/persistence/repositories"
	"aphc-housingportal/internal/core/domain"

	"gorm.io/gorm"
)

// IdentityRequest carries the three-factor identity proof required before
// any beneficiary operation
type IdentityRequest struct {
	UniqueID      string `json:"unique_id" validate:"required,len=9"`
	AadhaarNumber string `json:"aadhaar_number" validate:"required,aadhaar"`
	PhoneNumber   string `json:"phone_number" validate:"required,inphone"`
}

// IdentityService gates beneficiary operations behind the unique ID,
// Aadhaar and phone triple
type IdentityService struct {
	approvalRepo repositories.ApprovalRepository
	audit        *AuditService
}

// NewIdentityService creates a new identity service
func NewIdentityService(approvalRepo repositories.ApprovalRepository, audit *AuditService) *IdentityService {
	return &IdentityService{
		approvalRepo: approvalRepo,
		audit:        audit,
	}
}

// Verify resolves the approved application whose beneficiary unique ID,
// Aadhaar number and phone number all match. Every mismatch, including a
// unique ID that does not exist, returns the same domain.ErrNotFound so the
// response never reveals which factor was wrong.
func (s *IdentityService) Verify(ctx context.Context, req *IdentityRequest, meta ClientMeta) (*models.Application, error) {
	if err := Validator().Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	app, err := s.approvalRepo.FindApprovedIdentity(ctx, req.UniqueID, req.AadhaarNumber, req.PhoneNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionIdentityVerifyFailed,
			"unique id "+req.UniqueID, meta)
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionIdentityVerified,
		"unique id "+req.UniqueID, meta)
	return app, nil
}
