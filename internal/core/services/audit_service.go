package services

import (
	"context"
	"log"
	"time"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
)

// AuditService appends security-relevant events. Writes are best-effort from
// the caller's perspective: a failed insert is logged to stderr and swallowed
// so it can never fail the business operation that triggered it.
type AuditService struct {
	auditRepo repositories.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repositories.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// ClientMeta carries request origin fields into audit events. Handlers fill
// it from the inbound request; background jobs leave it zero.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// Record appends an audit event. actorID is nil for anonymous or failed
// actions.
func (s *AuditService) Record(ctx context.Context, actorID *uint, role, action, detail string, meta ClientMeta) {
	event := &models.AuditEvent{
		EventID:   uuid.New().String(),
		ActorID:   actorID,
		ActorRole: role,
		Action:    action,
		Detail:    detail,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}

	if err := s.auditRepo.Create(ctx, event); err != nil {
		// Fallback channel: the event must not silently vanish
		log.Printf("⚠️ Audit write failed (%s %s): %v | detail: %s", role, action, err, detail)
	}
}

// CountFailedLogins counts LOGIN_FAILED events mentioning the username
// within the trailing window (admin lockout check)
func (s *AuditService) CountFailedLogins(ctx context.Context, username string, window time.Duration) (int64, error) {
	return s.auditRepo.CountByActionSince(ctx, models.ActionLoginFailed, username, time.Now().Add(-window))
}

// List lists audit events for the admin console
func (s *AuditService) List(ctx context.Context, action string, offset, limit int) ([]*models.AuditEvent, int64, error) {
	return s.auditRepo.List(ctx, action, offset, limit)
}
