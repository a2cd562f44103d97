package repositories

import (
	"context"
	"time"

	"aphc-housingportal/internal/adapters/persistence/models"
)

// ApplicationRepository defines application lifecycle data access. The
// transition methods are atomic: each runs the guarded status update and its
// companion writes inside one unit, and returns
// domain.ErrInvalidStateTransition when the application was not in an
// eligible source state.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByApplicationID(ctx context.Context, applicationID string) (*models.Application, error)
	ExistsByApplicationID(ctx context.Context, applicationID string) (bool, error)
	ExistsByAadhaar(ctx context.Context, aadhaar string) (bool, error)
	GetLatestByPhone(ctx context.Context, phone, fullName, district string) (*models.Application, error)
	List(ctx context.Context, status string, offset, limit int) ([]*models.Application, int64, error)

	// RecordPayment inserts the payment and moves pending_payment -> paid.
	// Returns domain.ErrDuplicateTransaction on a replayed transaction ref.
	RecordPayment(ctx context.Context, applicationID string, payment *models.Payment) error

	// MarkUnderReview moves paid -> under_review. Already under_review is
	// not an error; any other state is.
	MarkUnderReview(ctx context.Context, applicationID string) error

	// Approve writes the approval record and moves {paid,under_review} ->
	// approved. Exactly one of two concurrent calls succeeds.
	Approve(ctx context.Context, applicationID string, approval *models.ApprovalRecord) error

	// Reject writes the decision record (with reason) and moves
	// {paid,under_review} -> rejected.
	Reject(ctx context.Context, applicationID string, approval *models.ApprovalRecord) error
}

// PaymentRepository defines read access to processed payments
type PaymentRepository interface {
	GetByTransactionRef(ctx context.Context, ref string) (*models.Payment, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*models.Payment, error)
}

// ApprovalRepository defines approval record data access
type ApprovalRepository interface {
	GetByApplicationID(ctx context.Context, applicationID string) (*models.ApprovalRecord, error)
	UniqueIDExists(ctx context.Context, uniqueID string) (bool, error)

	// FindApprovedIdentity is the identity-gate lookup: the application
	// whose approval holds uniqueID, whose Aadhaar and phone both match,
	// and whose status is approved. gorm.ErrRecordNotFound on any mismatch.
	FindApprovedIdentity(ctx context.Context, uniqueID, aadhaar, phone string) (*models.Application, error)
}

// OtpRepository defines OTP challenge data access
type OtpRepository interface {
	Create(ctx context.Context, challenge *models.OtpChallenge) error

	// CountIssuancesSince counts every challenge created for the phone since
	// the cutoff, regardless of eventual status. Resends count.
	CountIssuancesSince(ctx context.Context, phone string, since time.Time) (int64, error)

	// GetLatestIssued returns the most recent challenge for (phone, purpose)
	// matching code, with status issued and created after issuedAfter, or
	// (nil, nil) when there is none.
	GetLatestIssued(ctx context.Context, phone, purpose, code string, issuedAfter time.Time) (*models.OtpChallenge, error)

	UpdateStatus(ctx context.Context, id uint, status string, verifiedAt *time.Time) error

	// ExpireOlderThan flips issued challenges created before the cutoff to
	// expired. Used by the maintenance cron.
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// BankDetailsRepository defines bank detail data access
type BankDetailsRepository interface {
	// Create inserts the record and marks the approval's
	// bank_details_submitted flag atomically. Returns
	// domain.ErrAlreadyExists when a record for the unique ID exists.
	Create(ctx context.Context, details *models.BankDetails) error
	GetByUniqueID(ctx context.Context, uniqueID string) (*models.BankDetails, error)
}

// AuditRepository defines audit event data access. Events are append-only.
type AuditRepository interface {
	Create(ctx context.Context, event *models.AuditEvent) error
	CountByActionSince(ctx context.Context, action, detailContains string, since time.Time) (int64, error)
	List(ctx context.Context, action string, offset, limit int) ([]*models.AuditEvent, int64, error)
}

// UserRepository defines staff account data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	ListActiveByRole(ctx context.Context, role string) ([]*models.User, error)
}

// RefreshTokenRepository defines refresh token data access
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// ContactRepository defines contact message data access
type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
}
