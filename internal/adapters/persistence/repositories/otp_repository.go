package repositories

import (
	"context"
	"errors"
	"time"

	"aphc-housingportal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormOtpRepository handles OTP challenge data access
type GormOtpRepository struct {
	db *gorm.DB
}

// NewOtpRepository creates a new OTP repository
func NewOtpRepository(db *gorm.DB) *GormOtpRepository {
	return &GormOtpRepository{db: db}
}

// Create persists a new OTP challenge
func (r *GormOtpRepository) Create(ctx context.Context, challenge *models.OtpChallenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

// CountIssuancesSince counts all challenges created for the phone since the
// cutoff, whatever their current status
func (r *GormOtpRepository) CountIssuancesSince(ctx context.Context, phone string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OtpChallenge{}).
		Where("phone_number = ? AND created_at >= ?", phone, since).
		Count(&count).Error
	return count, err
}

// GetLatestIssued returns the most recent still-issued challenge for
// (phone, purpose) matching code, created after issuedAfter
func (r *GormOtpRepository) GetLatestIssued(ctx context.Context, phone, purpose, code string, issuedAfter time.Time) (*models.OtpChallenge, error) {
	var challenge models.OtpChallenge
	err := r.db.WithContext(ctx).
		Where("phone_number = ? AND purpose = ? AND code = ? AND status = ? AND created_at > ?",
			phone, purpose, code, models.OtpStatusIssued, issuedAfter).
		Order("created_at DESC").
		First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// UpdateStatus updates a challenge status
func (r *GormOtpRepository) UpdateStatus(ctx context.Context, id uint, status string, verifiedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if verifiedAt != nil {
		updates["verified_at"] = verifiedAt
	}
	return r.db.WithContext(ctx).Model(&models.OtpChallenge{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ExpireOlderThan flips stale issued challenges to expired
func (r *GormOtpRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.OtpChallenge{}).
		Where("status = ? AND created_at < ?", models.OtpStatusIssued, cutoff).
		Update("status", models.OtpStatusExpired)
	return res.RowsAffected, res.Error
}
