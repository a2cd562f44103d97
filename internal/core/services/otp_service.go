package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/adapters/persistence/repositories"
	"aphc-housingportal/internal/core/domain"
)

const (
	// OtpExpiryMinutes is how long a code stays valid after issuance
	OtpExpiryMinutes = 10

	// OtpRateLimitWindow and OtpRateLimitMax cap issuance per phone number.
	// Every issuance counts toward the window, including resends and codes
	// that later fail or expire.
	OtpRateLimitWindow = time.Hour
	OtpRateLimitMax    = 3
)

// OtpService issues and verifies one-time codes for the portal's
// OTP-gated operations
type OtpService struct {
	otpRepo  repositories.OtpRepository
	notifier *NotificationService
	audit    *AuditService
}

// NewOtpService creates a new OTP service
func NewOtpService(otpRepo repositories.OtpRepository, notifier *NotificationService, audit *AuditService) *OtpService {
	return &OtpService{
		otpRepo:  otpRepo,
		notifier: notifier,
		audit:    audit,
	}
}

// Issue generates a 6-digit code for (phone, purpose), persists the
// challenge and dispatches it by SMS. Returns domain.ErrRateLimited when the
// phone has already received OtpRateLimitMax codes inside the window, and
// domain.ErrServiceUnavailable when SMS dispatch fails (the challenge is
// marked failed and cannot be verified).
func (s *OtpService) Issue(ctx context.Context, phone, purpose string, meta ClientMeta) error {
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("%w: invalid phone number", domain.ErrValidation)
	}
	if !models.ValidOtpPurpose(purpose) {
		return fmt.Errorf("%w: invalid OTP purpose", domain.ErrValidation)
	}

	count, err := s.otpRepo.CountIssuancesSince(ctx, phone, time.Now().Add(-OtpRateLimitWindow))
	if err != nil {
		return err
	}
	if count >= OtpRateLimitMax {
		s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionOtpSendFailed,
			"rate limited for "+phone, meta)
		return domain.ErrRateLimited
	}

	code, err := generateOtpCode()
	if err != nil {
		return err
	}

	challenge := &models.OtpChallenge{
		PhoneNumber: phone,
		Purpose:     purpose,
		Code:        code,
		Status:      models.OtpStatusIssued,
		IPAddress:   meta.IP,
	}
	if err := s.otpRepo.Create(ctx, challenge); err != nil {
		return err
	}

	if err := s.notifier.SendOTP(phone, code, OtpExpiryMinutes); err != nil {
		log.Printf("❌ OTP dispatch failed for %s: %v", phone, err)
		if updErr := s.otpRepo.UpdateStatus(ctx, challenge.ID, models.OtpStatusFailed, nil); updErr != nil {
			log.Printf("⚠️ Failed to invalidate OTP challenge %d: %v", challenge.ID, updErr)
		}
		s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionOtpSendFailed,
			"dispatch failed for "+phone, meta)
		return domain.ErrServiceUnavailable
	}

	s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionOtpSent,
		"purpose "+purpose+" for "+phone, meta)
	return nil
}

// Verify consumes the most recently issued live challenge for (phone,
// purpose) whose code matches. A match flips the challenge to verified; it
// cannot be replayed. A mismatch leaves live challenges untouched, so a
// typo does not invalidate the real code. Mismatch, absence and expiry all
// yield domain.ErrInvalidOrExpiredOTP without distinguishing which.
func (s *OtpService) Verify(ctx context.Context, phone, purpose, code string, meta ClientMeta) error {
	challenge, err := s.otpRepo.GetLatestIssued(ctx, phone, purpose, code,
		time.Now().Add(-OtpExpiryMinutes*time.Minute))
	if err != nil {
		return err
	}
	if challenge == nil {
		s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionOtpVerifyFailed,
			"no matching live challenge for "+phone+" purpose "+purpose, meta)
		return domain.ErrInvalidOrExpiredOTP
	}

	now := time.Now()
	if err := s.otpRepo.UpdateStatus(ctx, challenge.ID, models.OtpStatusVerified, &now); err != nil {
		return err
	}
	s.audit.Record(ctx, nil, models.ActorApplicant, models.ActionOtpVerified,
		"purpose "+purpose+" for "+phone, meta)
	return nil
}

// ExpireStale sweeps issued challenges whose validity window has passed.
// Invoked by the maintenance cron.
func (s *OtpService) ExpireStale(ctx context.Context) (int64, error) {
	return s.otpRepo.ExpireOlderThan(ctx, time.Now().Add(-OtpExpiryMinutes*time.Minute))
}

func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
