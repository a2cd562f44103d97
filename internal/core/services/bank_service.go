package services

import (
	"context"
	"errors"
	"fmt"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/adapters/persistence/repositories"
	"aphc-housingportal/internal/core/domain"
	"aphc-housingportal/internal/pkg/vault"

	"gorm.io/gorm"
)

// BankDetailsRequest carries a beneficiary's bank details together with the
// identity proof that gates the submission
type BankDetailsRequest struct {
	UniqueID          string `json:"unique_id" validate:"required,len=9"`
	AadhaarNumber     string `json:"aadhaar_number" validate:"required,aadhaar"`
	PhoneNumber       string `json:"phone_number" validate:"required,inphone"`
	BankName          string `json:"bank_name" validate:"required,min=3,max=100"`
	BranchName        string `json:"branch_name" validate:"required,min=2,max=100"`
	AccountHolderName string `json:"account_holder_name" validate:"required,min=3,max=100"`
	AccountNumber     string `json:"account_number" validate:"required,min=9,max=18,numeric"`
	IFSCCode          string `json:"ifsc_code" validate:"required,ifsc"`
	Village           string `json:"village" validate:"max=50"`
	District          string `json:"district" validate:"max=50"`
	Pincode           string `json:"pincode" validate:"omitempty,len=6,numeric"`
}

// BankDetailsView is the decrypted admin view of a submission
type BankDetailsView struct {
	UniqueID          string `json:"unique_id"`
	ApplicationID     string `json:"application_id"`
	BankName          string `json:"bank_name"`
	BranchName        string `json:"branch_name"`
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	IFSCCode          string `json:"ifsc_code"`
	Village           string `json:"village"`
	District          string `json:"district"`
	Pincode           string `json:"pincode"`
}

// BankService accepts and reveals subsidy disbursement bank details. The
// account number and IFSC code only ever exist in plaintext inside a
// request or a privileged admin view; at rest they are sealed by the vault
// under a key derived from the beneficiary unique ID.
type BankService struct {
	bankRepo repositories.BankDetailsRepository
	identity *IdentityService
	vault    *vault.Vault
	audit    *AuditService
}

// NewBankService creates a new bank details service
func NewBankService(
	bankRepo repositories.BankDetailsRepository,
	identity *IdentityService,
	v *vault.Vault,
	audit *AuditService,
) *BankService {
	return &BankService{
		bankRepo: bankRepo,
		identity: identity,
		vault:    v,
		audit:    audit,
	}
}

// Submit stores a beneficiary's bank details, once per unique ID. The
// identity triple must verify first; a second submission returns
// domain.ErrAlreadyExists.
func (s *BankService) Submit(ctx context.Context, req *BankDetailsRequest, meta ClientMeta) error {
	if err := Validator().Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	app, err := s.identity.Verify(ctx, &IdentityRequest{
		UniqueID:      req.UniqueID,
		AadhaarNumber: req.AadhaarNumber,
		PhoneNumber:   req.PhoneNumber,
	}, meta)
	if err != nil {
		return err
	}

	accountEnc, err := s.vault.Encrypt(req.UniqueID, req.AccountNumber)
	if err != nil {
		return err
	}
	ifscEnc, err := s.vault.Encrypt(req.UniqueID, req.IFSCCode)
	if err != nil {
		return err
	}

	details := &models.BankDetails{
		UniqueID:               req.UniqueID,
		ApplicationID:          app.ApplicationID,
		BankName:               req.BankName,
		BranchName:             req.BranchName,
		AccountHolderName:      req.AccountHolderName,
		AccountNumberEncrypted: accountEnc,
		IFSCCodeEncrypted:      ifscEnc,
		Village:                req.Village,
		District:               req.District,
		Pincode:                req.Pincode,
	}
	// Insert and approval-flag update commit together; a concurrent
	// duplicate surfaces as domain.ErrAlreadyExists
	if err := s.bankRepo.Create(ctx, details); err != nil {
		return err
	}

	s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionBankDetailsSubmitted,
		"unique id "+req.UniqueID, meta)
	return nil
}

// Reveal decrypts a submission for a privileged staff viewer. Every call is
// written to the audit log with the viewer's identity.
func (s *BankService) Reveal(ctx context.Context, uniqueID string, viewerID uint, viewerRole string, meta ClientMeta) (*BankDetailsView, error) {
	details, err := s.bankRepo.GetByUniqueID(ctx, uniqueID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	accountNumber, err := s.vault.Decrypt(uniqueID, details.AccountNumberEncrypted)
	if err != nil {
		return nil, err
	}
	ifscCode, err := s.vault.Decrypt(uniqueID, details.IFSCCodeEncrypted)
	if err != nil {
		return nil, err
	}

	role := models.ActorAdmin
	if viewerRole == models.RoleWorker {
		role = models.ActorWorker
	}
	s.audit.Record(ctx, &viewerID, role, models.ActionBankDetailsAccessed,
		"unique id "+uniqueID, meta)

	return &BankDetailsView{
		UniqueID:          details.UniqueID,
		ApplicationID:     details.ApplicationID,
		BankName:          details.BankName,
		BranchName:        details.BranchName,
		AccountHolderName: details.AccountHolderName,
		AccountNumber:     accountNumber,
		IFSCCode:          ifscCode,
		Village:           details.Village,
		District:          details.District,
		Pincode:           details.Pincode,
	}, nil
}
