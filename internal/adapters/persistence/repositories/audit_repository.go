package repositories

import (
	"context"
	"time"

	"aphc-housingportal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormAuditRepository handles audit event data access. Insert-only: there is
// deliberately no update or delete method.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Create appends an audit event
func (r *GormAuditRepository) Create(ctx context.Context, event *models.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// CountByActionSince counts events for an action since the cutoff, optionally
// filtered by detail substring (used for the login lockout window)
func (r *GormAuditRepository) CountByActionSince(ctx context.Context, action, detailContains string, since time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.AuditEvent{}).
		Where("action = ? AND created_at >= ?", action, since)
	if detailContains != "" {
		query = query.Where("detail LIKE ?", "%"+detailContains+"%")
	}
	err := query.Count(&count).Error
	return count, err
}

// List lists audit events newest first, optionally filtered by action
func (r *GormAuditRepository) List(ctx context.Context, action string, offset, limit int) ([]*models.AuditEvent, int64, error) {
	var events []*models.AuditEvent
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AuditEvent{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	query.Count(&total)

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error

	return events, total, err
}
