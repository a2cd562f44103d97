package services

import (
	"context"
	"fmt"
	"time"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/core/domain"
	"aphc-housingportal/internal/pkg/pdf"
)

// DownloadRequest carries an OTP-completed document download
type DownloadRequest struct {
	UniqueID      string `json:"unique_id" validate:"required,len=9"`
	AadhaarNumber string `json:"aadhaar_number" validate:"required,aadhaar"`
	PhoneNumber   string `json:"phone_number" validate:"required,inphone"`
	Otp           string `json:"otp" validate:"required,len=6,numeric"`
}

// DocumentGenerator renders the approval certificate for a beneficiary
type DocumentGenerator interface {
	ApprovalCertificate(app *models.Application) ([]byte, error)
}

// DocumentService drives the two-step certificate download: identity plus a
// download-purpose OTP, then the rendered document
type DocumentService struct {
	identity  *IdentityService
	otp       *OtpService
	generator DocumentGenerator
	audit     *AuditService
}

// NewDocumentService creates a new document service
func NewDocumentService(identity *IdentityService, otp *OtpService, generator DocumentGenerator, audit *AuditService) *DocumentService {
	return &DocumentService{
		identity:  identity,
		otp:       otp,
		generator: generator,
		audit:     audit,
	}
}

// RequestDownload verifies the identity triple and sends a download OTP to
// the beneficiary's registered phone
func (s *DocumentService) RequestDownload(ctx context.Context, req *IdentityRequest, meta ClientMeta) error {
	app, err := s.identity.Verify(ctx, req, meta)
	if err != nil {
		return err
	}

	if err := s.otp.Issue(ctx, app.PhoneNumber, models.OtpPurposeDownload, meta); err != nil {
		return err
	}

	s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionDownloadVerification,
		"unique id "+req.UniqueID, meta)
	return nil
}

// Download consumes the download OTP and returns the rendered certificate
// with a suggested filename
func (s *DocumentService) Download(ctx context.Context, req *DownloadRequest, meta ClientMeta) ([]byte, string, error) {
	if err := Validator().Struct(req); err != nil {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	app, err := s.identity.Verify(ctx, &IdentityRequest{
		UniqueID:      req.UniqueID,
		AadhaarNumber: req.AadhaarNumber,
		PhoneNumber:   req.PhoneNumber,
	}, meta)
	if err != nil {
		return nil, "", err
	}

	if err := s.otp.Verify(ctx, app.PhoneNumber, models.OtpPurposeDownload, req.Otp, meta); err != nil {
		return nil, "", err
	}

	doc, err := s.generator.ApprovalCertificate(app)
	if err != nil {
		return nil, "", err
	}

	s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionDownloadAuthorized,
		"unique id "+req.UniqueID, meta)
	return doc, fmt.Sprintf("approval-%s.pdf", req.UniqueID), nil
}

// CertificateGenerator renders approval certificates as PDF
type CertificateGenerator struct{}

// NewCertificateGenerator creates the default PDF certificate generator
func NewCertificateGenerator() *CertificateGenerator {
	return &CertificateGenerator{}
}

// ApprovalCertificate renders the one-page approval certificate
func (g *CertificateGenerator) ApprovalCertificate(app *models.Application) ([]byte, error) {
	if app.Approval == nil || app.Approval.UniqueID == nil {
		return nil, domain.ErrNotFound
	}

	doc := pdf.New()
	doc.Title("Andhra Pradesh Housing Corporation")
	doc.Title("Housing Application Approval Certificate")
	doc.Blank()
	doc.Line("This is to certify that the housing application below has been approved.")
	doc.Blank()
	doc.Line("Application ID    : " + app.ApplicationID)
	doc.Line("Beneficiary ID    : " + *app.Approval.UniqueID)
	doc.Line("Applicant Name    : " + app.FullName)
	doc.Line("Father's Name     : " + app.FatherName)
	doc.Line("District          : " + app.District)
	doc.Line("Mandal / Village  : " + app.Mandal + " / " + app.Village)
	doc.Line("Approved On       : " + app.Approval.ReviewedAt.Format("02 Jan 2006"))
	doc.Blank()
	doc.Line("Keep your Beneficiary ID safe. It is required for bank detail")
	doc.Line("submission and all future correspondence.")
	doc.Blank()
	doc.Line("Generated on " + time.Now().Format("02 Jan 2006 15:04") + ". This is a")
	doc.Line("computer generated document and does not require a signature.")

	return doc.Bytes(), nil
}
