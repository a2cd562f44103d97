package repositories

import (
	"context"
	"errors"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/core/domain"

	"gorm.io/gorm"
)

// GormApplicationRepository handles application lifecycle data access
type GormApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) *GormApplicationRepository {
	return &GormApplicationRepository{db: db}
}

// Create creates a new application
func (r *GormApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByApplicationID gets an application by its public ID with relations
func (r *GormApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Preload("Approval").
		Where("application_id = ?", applicationID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ExistsByApplicationID checks if an application ID is taken
func (r *GormApplicationRepository) ExistsByApplicationID(ctx context.Context, applicationID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("application_id = ?", applicationID).
		Count(&count).Error
	return count > 0, err
}

// ExistsByAadhaar checks if an Aadhaar number is already registered
func (r *GormApplicationRepository) ExistsByAadhaar(ctx context.Context, aadhaar string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("aadhaar_number = ?", aadhaar).
		Count(&count).Error
	return count > 0, err
}

// GetLatestByPhone gets the most recent application matching phone, name and
// district (status-check lookup)
func (r *GormApplicationRepository) GetLatestByPhone(ctx context.Context, phone, fullName, district string) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Preload("Approval").
		Where("phone_number = ? AND full_name LIKE ? AND district = ?", phone, "%"+fullName+"%", district).
		Order("created_at DESC").
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// List lists applications, optionally filtered by status, newest first
func (r *GormApplicationRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.Application, int64, error) {
	var apps []*models.Application
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Application{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	err := query.
		Preload("Payment").
		Preload("Approval").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error

	return apps, total, err
}

// guardedTransition updates status only when the current status is in from.
// Zero rows affected means the guard failed.
func guardedTransition(tx *gorm.DB, applicationID string, from []domain.Status, to domain.Status) error {
	res := tx.Model(&models.Application{}).
		Where("application_id = ? AND status IN ?", applicationID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}

// RecordPayment inserts the fee payment and moves pending_payment -> paid in
// one transaction
func (r *GormApplicationRepository) RecordPayment(ctx context.Context, applicationID string, payment *models.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Payment{}).
			Where("transaction_ref = ?", payment.TransactionRef).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateTransaction
		}

		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		return guardedTransition(tx, applicationID,
			[]domain.Status{domain.StatusPendingPayment}, domain.StatusPaid)
	})
}

// MarkUnderReview moves paid -> under_review. A no-op when the application is
// already under review.
func (r *GormApplicationRepository) MarkUnderReview(ctx context.Context, applicationID string) error {
	err := guardedTransition(r.db.WithContext(ctx), applicationID,
		[]domain.Status{domain.StatusPaid}, domain.StatusUnderReview)
	if errors.Is(err, domain.ErrInvalidStateTransition) {
		var app models.Application
		lookupErr := r.db.WithContext(ctx).
			Where("application_id = ?", applicationID).
			First(&app).Error
		if lookupErr == nil && app.Status == domain.StatusUnderReview {
			return nil
		}
	}
	return err
}

// Approve writes the approval record and moves {paid,under_review} ->
// approved atomically. The guarded update makes concurrent approvals
// mutually exclusive: the loser sees zero rows affected and rolls back.
func (r *GormApplicationRepository) Approve(ctx context.Context, applicationID string, approval *models.ApprovalRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := guardedTransition(tx, applicationID,
			domain.ReviewEligibleStatuses(), domain.StatusApproved); err != nil {
			return err
		}
		return tx.Create(approval).Error
	})
}

// Reject writes the decision record and moves {paid,under_review} ->
// rejected atomically
func (r *GormApplicationRepository) Reject(ctx context.Context, applicationID string, approval *models.ApprovalRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := guardedTransition(tx, applicationID,
			domain.ReviewEligibleStatuses(), domain.StatusRejected); err != nil {
			return err
		}
		return tx.Create(approval).Error
	})
}

// GormPaymentRepository handles payment read access
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// GetByTransactionRef gets a payment by transaction reference
func (r *GormPaymentRepository) GetByTransactionRef(ctx context.Context, ref string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("transaction_ref = ?", ref).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByApplicationID gets the payment for an application
func (r *GormPaymentRepository) GetByApplicationID(ctx context.Context, applicationID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GormApprovalRepository handles approval record data access
type GormApprovalRepository struct {
	db *gorm.DB
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *gorm.DB) *GormApprovalRepository {
	return &GormApprovalRepository{db: db}
}

// GetByApplicationID gets the decision record for an application
func (r *GormApprovalRepository) GetByApplicationID(ctx context.Context, applicationID string) (*models.ApprovalRecord, error) {
	var approval models.ApprovalRecord
	err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&approval).Error
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

// UniqueIDExists checks whether a beneficiary unique ID is already assigned
func (r *GormApprovalRepository) UniqueIDExists(ctx context.Context, uniqueID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ApprovalRecord{}).
		Where("unique_id = ?", uniqueID).
		Count(&count).Error
	return count > 0, err
}

// FindApprovedIdentity runs the identity-gate join: approval with this unique
// ID, application approved, Aadhaar and phone both matching
func (r *GormApprovalRepository) FindApprovedIdentity(ctx context.Context, uniqueID, aadhaar, phone string) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Joins("JOIN approval_records ON approval_records.application_id = applications.application_id").
		Where("approval_records.unique_id = ?", uniqueID).
		Where("applications.aadhaar_number = ? AND applications.phone_number = ?", aadhaar, phone).
		Where("applications.status = ?", domain.StatusApproved).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}
