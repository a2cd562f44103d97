package repositories

import (
	"context"
	"errors"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/core/domain"

	"gorm.io/gorm"
)

// GormBankDetailsRepository handles bank detail data access
type GormBankDetailsRepository struct {
	db *gorm.DB
}

// NewBankDetailsRepository creates a new bank details repository
func NewBankDetailsRepository(db *gorm.DB) *GormBankDetailsRepository {
	return &GormBankDetailsRepository{db: db}
}

// Create persists an encrypted bank details record and flips the approval's
// bank_details_submitted flag in the same transaction. A concurrent insert
// for the same unique ID loses on the unique index and returns
// domain.ErrAlreadyExists.
func (r *GormBankDetailsRepository) Create(ctx context.Context, details *models.BankDetails) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(details).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrAlreadyExists
			}
			return err
		}
		return tx.Model(&models.ApprovalRecord{}).
			Where("unique_id = ?", details.UniqueID).
			Update("bank_details_submitted", true).Error
	})
}

// GetByUniqueID gets the record for a beneficiary unique ID
func (r *GormBankDetailsRepository) GetByUniqueID(ctx context.Context, uniqueID string) (*models.BankDetails, error) {
	var details models.BankDetails
	err := r.db.WithContext(ctx).Where("unique_id = ?", uniqueID).First(&details).Error
	if err != nil {
		return nil, err
	}
	return &details, nil
}
