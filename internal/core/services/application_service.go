package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/adapters/persistence/repositories"
	"aphc-housingportal/internal/core/domain"

	"gorm.io/gorm"
)

const (
	// ProcessingFee is the one-time application fee in rupees
	ProcessingFee = 750.00

	idGenerateAttempts = 5
)

// RegisterRequest carries a new housing registration
type RegisterRequest struct {
	FullName      string `json:"full_name" validate:"required,min=3,max=100"`
	FatherName    string `json:"father_name" validate:"required,min=3,max=100"`
	AadhaarNumber string `json:"aadhaar_number" validate:"required,aadhaar"`
	PhoneNumber   string `json:"phone_number" validate:"required,inphone"`
	Email         string `json:"email" validate:"required,email"`
	Constitution  string `json:"constitution" validate:"max=50"`
	State         string `json:"state" validate:"required,max=50"`
	District      string `json:"district" validate:"required,min=3,max=50"`
	City          string `json:"city" validate:"required,max=50"`
	Mandal        string `json:"mandal" validate:"required,max=50"`
	Village       string `json:"village" validate:"required,max=50"`
	Pincode       string `json:"pincode" validate:"required,len=6,numeric"`
	Otp           string `json:"otp" validate:"required,len=6,numeric"`
}

// PaymentRequest carries a processed fee payment notification
type PaymentRequest struct {
	ApplicationID  string  `json:"application_id" validate:"required,max=20"`
	TransactionRef string  `json:"transaction_ref" validate:"required,min=6,max=50"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Method         string  `json:"method" validate:"max=20"`
}

// StatusCheckRequest carries an OTP-gated status lookup
type StatusCheckRequest struct {
	FullName    string `json:"full_name" validate:"required,min=3,max=100"`
	District    string `json:"district" validate:"required,max=50"`
	PhoneNumber string `json:"phone_number" validate:"required,inphone"`
	Otp         string `json:"otp" validate:"required,len=6,numeric"`
}

// ApplicationService drives the application lifecycle: registration,
// payment, review and the status-check lookups
type ApplicationService struct {
	appRepo      repositories.ApplicationRepository
	paymentRepo  repositories.PaymentRepository
	approvalRepo repositories.ApprovalRepository
	otpService   *OtpService
	notifier     *NotificationService
	audit        *AuditService
	fee          float64
}

// NewApplicationService creates a new application service
func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	paymentRepo repositories.PaymentRepository,
	approvalRepo repositories.ApprovalRepository,
	otpService *OtpService,
	notifier *NotificationService,
	audit *AuditService,
	fee float64,
) *ApplicationService {
	if fee <= 0 {
		fee = ProcessingFee
	}
	return &ApplicationService{
		appRepo:      appRepo,
		paymentRepo:  paymentRepo,
		approvalRepo: approvalRepo,
		otpService:   otpService,
		notifier:     notifier,
		audit:        audit,
		fee:          fee,
	}
}

// Fee returns the configured processing fee
func (s *ApplicationService) Fee() float64 {
	return s.fee
}

// Register creates a new application in pending_payment after consuming a
// registration OTP. Returns domain.ErrOTPNotVerified when the OTP does not
// check out and domain.ErrDuplicateIdentity when the Aadhaar number already
// has an application.
func (s *ApplicationService) Register(ctx context.Context, req *RegisterRequest, meta ClientMeta) (*models.Application, error) {
	if err := Validator().Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	if err := s.otpService.Verify(ctx, req.PhoneNumber, models.OtpPurposeRegistration, req.Otp, meta); err != nil {
		if errors.Is(err, domain.ErrInvalidOrExpiredOTP) {
			return nil, domain.ErrOTPNotVerified
		}
		return nil, err
	}

	exists, err := s.appRepo.ExistsByAadhaar(ctx, req.AadhaarNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateIdentity
	}

	applicationID, err := s.generateApplicationID(ctx)
	if err != nil {
		return nil, err
	}

	app := &models.Application{
		ApplicationID: applicationID,
		FullName:      req.FullName,
		FatherName:    req.FatherName,
		AadhaarNumber: req.AadhaarNumber,
		PhoneNumber:   req.PhoneNumber,
		Email:         req.Email,
		Constitution:  req.Constitution,
		State:         req.State,
		District:      req.District,
		City:          req.City,
		Mandal:        req.Mandal,
		Village:       req.Village,
		Pincode:       req.Pincode,
		Status:        domain.StatusPendingPayment,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionRegistrationSubmitted,
		"application "+applicationID, meta)
	s.notifier.NotifyRegistrationSubmitted(app.PhoneNumber, app.Email, app.FullName, applicationID)

	return app, nil
}

// RecordPayment attaches a processed fee payment and moves the application
// to paid. Any positive amount is accepted; the gateway settles the actual
// fee. Replayed transaction refs return domain.ErrDuplicateTransaction; an
// application not in pending_payment returns
// domain.ErrInvalidStateTransition.
func (s *ApplicationService) RecordPayment(ctx context.Context, req *PaymentRequest, meta ClientMeta) (*models.Application, error) {
	if err := Validator().Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	app, err := s.getApplication(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = "online"
	}
	payment := &models.Payment{
		TransactionRef: req.TransactionRef,
		ApplicationID:  app.ApplicationID,
		Amount:         req.Amount,
		Method:         method,
		PaidAt:         time.Now(),
	}
	if err := s.appRepo.RecordPayment(ctx, app.ApplicationID, payment); err != nil {
		return nil, err
	}
	app.Status = domain.StatusPaid
	app.Payment = payment

	s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionPaymentProcessed,
		fmt.Sprintf("application %s txn %s amount %.2f", app.ApplicationID, req.TransactionRef, req.Amount), meta)
	s.notifier.NotifyPaymentReceived(app.PhoneNumber, app.Email, app.FullName,
		app.ApplicationID, req.TransactionRef, req.Amount)

	return app, nil
}

// OpenForReview moves a paid application to under_review when a reviewer
// first picks it up. Already-under-review applications pass through
// unchanged.
func (s *ApplicationService) OpenForReview(ctx context.Context, applicationID string, reviewerID uint, meta ClientMeta) (*models.Application, error) {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.StatusPaid {
		return app, nil
	}

	if err := s.appRepo.MarkUnderReview(ctx, applicationID); err != nil {
		if errors.Is(err, domain.ErrInvalidStateTransition) {
			// Lost the race to another reviewer; re-read and move on
			return s.getApplication(ctx, applicationID)
		}
		return nil, err
	}
	app.Status = domain.StatusUnderReview

	s.audit.Record(ctx, &reviewerID, models.ActorAdmin, models.ActionReviewStarted,
		"application "+applicationID, meta)
	return app, nil
}

// Approve finalizes a paid or under-review application: a beneficiary
// unique ID is minted, the approval record written and the status moved to
// approved, all in one transaction. Of two concurrent approvals exactly one
// succeeds; the other sees domain.ErrInvalidStateTransition.
func (s *ApplicationService) Approve(ctx context.Context, applicationID string, reviewerID uint, meta ClientMeta) (*models.Application, error) {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.Status.ReviewEligible() {
		return nil, domain.ErrInvalidStateTransition
	}

	uniqueID, err := s.generateUniqueID(ctx, app.District)
	if err != nil {
		return nil, err
	}

	approval := &models.ApprovalRecord{
		ApplicationID: app.ApplicationID,
		UniqueID:      &uniqueID,
		ReviewedBy:    reviewerID,
		ReviewedAt:    time.Now(),
	}
	if err := s.appRepo.Approve(ctx, app.ApplicationID, approval); err != nil {
		return nil, err
	}
	app.Status = domain.StatusApproved
	app.Approval = approval

	s.audit.Record(ctx, &reviewerID, models.ActorAdmin, models.ActionApplicationApproved,
		fmt.Sprintf("application %s unique id %s", app.ApplicationID, uniqueID), meta)
	s.notifier.NotifyApproved(app.PhoneNumber, app.Email, app.FullName, uniqueID, app.ApplicationID)

	return app, nil
}

// Reject closes a paid or under-review application with a mandatory reason
func (s *ApplicationService) Reject(ctx context.Context, applicationID string, reviewerID uint, reason string, meta ClientMeta) (*models.Application, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)
	}

	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.Status.ReviewEligible() {
		return nil, domain.ErrInvalidStateTransition
	}

	approval := &models.ApprovalRecord{
		ApplicationID:   app.ApplicationID,
		ReviewedBy:      reviewerID,
		ReviewedAt:      time.Now(),
		RejectionReason: &reason,
	}
	if err := s.appRepo.Reject(ctx, app.ApplicationID, approval); err != nil {
		return nil, err
	}
	app.Status = domain.StatusRejected
	app.Approval = approval

	s.audit.Record(ctx, &reviewerID, models.ActorAdmin, models.ActionApplicationRejected,
		fmt.Sprintf("application %s reason %s", app.ApplicationID, reason), meta)
	s.notifier.NotifyRejected(app.PhoneNumber, app.Email, app.FullName, app.ApplicationID, reason)

	return app, nil
}

// CheckStatus is the OTP-gated applicant status lookup. The name, district
// and phone must all match one application; otherwise domain.ErrNotFound.
func (s *ApplicationService) CheckStatus(ctx context.Context, req *StatusCheckRequest, meta ClientMeta) (*models.Application, error) {
	if err := Validator().Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	if err := s.otpService.Verify(ctx, req.PhoneNumber, models.OtpPurposeStatusCheck, req.Otp, meta); err != nil {
		return nil, err
	}

	app, err := s.appRepo.GetLatestByPhone(ctx, req.PhoneNumber, req.FullName, req.District)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionStatusChecked,
		"application "+app.ApplicationID, meta)
	return app, nil
}

// CheckStatusByTransaction resolves an application from its payment
// transaction reference
func (s *ApplicationService) CheckStatusByTransaction(ctx context.Context, transactionRef string) (*models.Application, error) {
	payment, err := s.paymentRepo.GetByTransactionRef(ctx, transactionRef)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.getApplication(ctx, payment.ApplicationID)
}

// List lists applications for the admin console, optionally filtered by
// status
func (s *ApplicationService) List(ctx context.Context, status string, offset, limit int) ([]*models.Application, int64, error) {
	if status != "" && !domain.Status(status).IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.appRepo.List(ctx, status, offset, limit)
}

func (s *ApplicationService) getApplication(ctx context.Context, applicationID string) (*models.Application, error) {
	app, err := s.appRepo.GetByApplicationID(ctx, applicationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

// generateApplicationID mints APP<year><6 digits>, retrying on the rare
// collision
func (s *ApplicationService) generateApplicationID(ctx context.Context) (string, error) {
	year := time.Now().Year()
	for i := 0; i < idGenerateAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(1000000))
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("APP%d%06d", year, n.Int64())
		taken, err := s.appRepo.ExistsByApplicationID(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errors.New("could not allocate a unique application id")
}

// generateUniqueID mints the beneficiary ID: three uppercase letters from
// the district followed by 6 digits, retried until unused
func (s *ApplicationService) generateUniqueID(ctx context.Context, district string) (string, error) {
	prefix := districtPrefix(district)
	for i := 0; i < idGenerateAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(1000000))
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%s%06d", prefix, n.Int64())
		taken, err := s.approvalRepo.UniqueIDExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errors.New("could not allocate a unique beneficiary id")
}

// districtPrefix takes the first three letters of the district name,
// uppercased, padding with X for very short names
func districtPrefix(district string) string {
	var letters []rune
	for _, r := range district {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 3 {
				break
			}
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}
