package repositories

import (
	"context"

	"aphc-housingportal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormContactRepository handles contact message data access
type GormContactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// Create stores a contact message
func (r *GormContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}
