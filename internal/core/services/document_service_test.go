package services

import (
	"context"
	"strings"
	"testing"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocFixture(t *testing.T) (*DocumentService, *bankFixture) {
	t.Helper()
	f := newBankFixture(t)
	svc := NewDocumentService(f.identity, f.otp, NewCertificateGenerator(), NewAuditService(f.audit))
	return svc, f
}

func TestDownloadFlow(t *testing.T) {
	docSvc, f := newDocFixture(t)
	ctx := context.Background()

	_, uniqueID := f.approveApplication(t)
	identity := &IdentityRequest{
		UniqueID:      uniqueID,
		AadhaarNumber: "123456789012",
		PhoneNumber:   "9876543210",
	}

	require.NoError(t, docSvc.RequestDownload(ctx, identity, ClientMeta{}))
	code := f.otpRepo.latestCode("9876543210", models.OtpPurposeDownload)
	require.Len(t, code, 6)

	doc, filename, err := docSvc.Download(ctx, &DownloadRequest{
		UniqueID:      uniqueID,
		AadhaarNumber: "123456789012",
		PhoneNumber:   "9876543210",
		Otp:           code,
	}, ClientMeta{})
	require.NoError(t, err)

	assert.Equal(t, "approval-"+uniqueID+".pdf", filename)
	assert.True(t, strings.HasPrefix(string(doc), "%PDF"))
	assert.Contains(t, string(doc), uniqueID)
	assert.Contains(t, f.audit.actions(), models.ActionDownloadAuthorized)
}

func TestDownloadRequiresIdentity(t *testing.T) {
	docSvc, f := newDocFixture(t)
	ctx := context.Background()

	_, uniqueID := f.approveApplication(t)

	err := docSvc.RequestDownload(ctx, &IdentityRequest{
		UniqueID:      uniqueID,
		AadhaarNumber: "999999999999",
		PhoneNumber:   "9876543210",
	}, ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDownloadRequiresOtp(t *testing.T) {
	docSvc, f := newDocFixture(t)
	ctx := context.Background()

	_, uniqueID := f.approveApplication(t)
	identity := &IdentityRequest{
		UniqueID:      uniqueID,
		AadhaarNumber: "123456789012",
		PhoneNumber:   "9876543210",
	}
	require.NoError(t, docSvc.RequestDownload(ctx, identity, ClientMeta{}))
	code := f.otpRepo.latestCode("9876543210", models.OtpPurposeDownload)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, _, err := docSvc.Download(ctx, &DownloadRequest{
		UniqueID:      uniqueID,
		AadhaarNumber: "123456789012",
		PhoneNumber:   "9876543210",
		Otp:           wrong,
	}, ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)
}

func TestDownloadOtpIsPurposeBound(t *testing.T) {
	docSvc, f := newDocFixture(t)
	ctx := context.Background()

	_, uniqueID := f.approveApplication(t)

	// A registration OTP must not unlock a download
	require.NoError(t, f.otp.Issue(ctx, "9876543210", models.OtpPurposeRegistration, ClientMeta{}))
	code := f.otpRepo.latestCode("9876543210", models.OtpPurposeRegistration)

	_, _, err := docSvc.Download(ctx, &DownloadRequest{
		UniqueID:      uniqueID,
		AadhaarNumber: "123456789012",
		PhoneNumber:   "9876543210",
		Otp:           code,
	}, ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredOTP)
}
