package services

import (
	"context"
	"testing"
	"time"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOtpFixture() (*OtpService, *fakeOtpRepo, *fakeGateway, *fakeAuditRepo) {
	otpRepo := &fakeOtpRepo{}
	gateway := &fakeGateway{}
	auditRepo := &fakeAuditRepo{}
	audit := NewAuditService(auditRepo)
	svc := NewOtpService(otpRepo, NewNotificationService(gateway, audit), audit)
	return svc, otpRepo, gateway, auditRepo
}

func TestOtpIssueAndVerify(t *testing.T) {
	svc, otpRepo, gateway, _ := newOtpFixture()
	ctx := context.Background()
	meta := ClientMeta{IP: "10.0.0.1"}

	require.NoError(t, svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, meta))

	code := otpRepo.latestCode("9876543210", models.OtpPurposeRegistration)
	require.Len(t, code, 6)
	assert.Contains(t, gateway.lastSMS, code)

	require.NoError(t, svc.Verify(ctx, "9876543210", models.OtpPurposeRegistration, code, meta))
}

func TestOtpIssueRejectsBadInput(t *testing.T) {
	svc, _, _, _ := newOtpFixture()
	ctx := context.Background()

	tests := []struct {
		name    string
		phone   string
		purpose string
	}{
		{"short phone", "98765", models.OtpPurposeRegistration},
		{"landline prefix", "1234567890", models.OtpPurposeRegistration},
		{"unknown purpose", "9876543210", "password_reset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Issue(ctx, tt.phone, tt.purpose, ClientMeta{})
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestOtpRateLimit(t *testing.T) {
	svc, _, _, _ := newOtpFixture()
	ctx := context.Background()
	meta := ClientMeta{}

	for i := 0; i < OtpRateLimitMax; i++ {
		require.NoError(t, svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, meta))
	}

	err := svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, meta)
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	// A different phone is unaffected
	assert.NoError(t, svc.Issue(ctx, "9123456780", models.OtpPurposeRegistration, meta))
}

func TestOtpRateLimitCountsFailedDispatches(t *testing.T) {
	svc, _, gateway, _ := newOtpFixture()
	ctx := context.Background()
	meta := ClientMeta{}

	gateway.failSMS = true
	for i := 0; i < OtpRateLimitMax; i++ {
		err := svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, meta)
		assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	}
	gateway.failSMS = false

	err := svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, meta)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestOtpVerifyWrongCode(t *testing.T) {
	svc, otpRepo, _, _ := newOtpFixture()
	ctx := context.Background()
	meta := ClientMeta{}

	require.NoError(t, svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, meta))
	code := otpRepo.latestCode("9876543210", models.OtpPurposeRegistration)

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	err := svc.Verify(ctx, "9876543210", models.OtpPurposeRegistration, wrong, meta)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)

	// A typo does not invalidate the challenge, the right code still works
	assert.NoError(t, svc.Verify(ctx, "9876543210", models.OtpPurposeRegistration, code, meta))
}

func TestOtpVerifyMatchesOlderLiveCode(t *testing.T) {
	svc, otpRepo, _, _ := newOtpFixture()
	ctx := context.Background()
	meta := ClientMeta{}

	require.NoError(t, svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, meta))
	first := otpRepo.latestCode("9876543210", models.OtpPurposeRegistration)

	require.NoError(t, svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, meta))
	second := otpRepo.latestCode("9876543210", models.OtpPurposeRegistration)

	// Both codes are live inside the window; either verifies
	require.NoError(t, svc.Verify(ctx, "9876543210", models.OtpPurposeRegistration, first, meta))
	if second != first {
		require.NoError(t, svc.Verify(ctx, "9876543210", models.OtpPurposeRegistration, second, meta))
	}
}

func TestOtpVerifyCannotReplay(t *testing.T) {
	svc, otpRepo, _, _ := newOtpFixture()
	ctx := context.Background()
	meta := ClientMeta{}

	require.NoError(t, svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, meta))
	code := otpRepo.latestCode("9876543210", models.OtpPurposeRegistration)

	require.NoError(t, svc.Verify(ctx, "9876543210", models.OtpPurposeRegistration, code, meta))

	err := svc.Verify(ctx, "9876543210", models.OtpPurposeRegistration, code, meta)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)
}

func TestOtpVerifyPurposeBound(t *testing.T) {
	svc, otpRepo, _, _ := newOtpFixture()
	ctx := context.Background()
	meta := ClientMeta{}

	require.NoError(t, svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, meta))
	code := otpRepo.latestCode("9876543210", models.OtpPurposeRegistration)

	err := svc.Verify(ctx, "9876543210", models.OtpPurposeStatusCheck, code, meta)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)

	// The original purpose still verifies
	assert.NoError(t, svc.Verify(ctx, "9876543210", models.OtpPurposeRegistration, code, meta))
}

func TestOtpVerifyExpired(t *testing.T) {
	svc, otpRepo, _, _ := newOtpFixture()
	ctx := context.Background()
	meta := ClientMeta{}

	require.NoError(t, svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, meta))
	code := otpRepo.latestCode("9876543210", models.OtpPurposeRegistration)

	otpRepo.backdate("9876543210", (OtpExpiryMinutes+1)*time.Minute)

	err := svc.Verify(ctx, "9876543210", models.OtpPurposeRegistration, code, meta)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)
}

func TestOtpExpireStale(t *testing.T) {
	svc, otpRepo, _, _ := newOtpFixture()
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, ClientMeta{}))
	otpRepo.backdate("9876543210", time.Hour)

	n, err := svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOtpDispatchFailureInvalidatesChallenge(t *testing.T) {
	svc, otpRepo, gateway, auditRepo := newOtpFixture()
	ctx := context.Background()

	gateway.failSMS = true
	err := svc.Issue(ctx, "9876543210", models.OtpPurposeRegistration, ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)

	code := otpRepo.latestCode("9876543210", models.OtpPurposeRegistration)
	err = svc.Verify(ctx, "9876543210", models.OtpPurposeRegistration, code, ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)

	assert.Contains(t, auditRepo.actions(), models.ActionOtpSendFailed)
}
