package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/core/domain"

	"gorm.io/gorm"
)

// fakeStore is an in-memory stand-in for the application, payment, approval
// and bank detail repositories
type fakeStore struct {
	mu        sync.Mutex
	apps      []*models.Application
	payments  []*models.Payment
	approvals []*models.ApprovalRecord
	bank      []*models.BankDetails
	nextID    uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (s *fakeStore) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	app.ID = s.nextID
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now()
	}
	s.apps = append(s.apps, app)
	return nil
}

func (s *fakeStore) GetByApplicationID(_ context.Context, applicationID string) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(applicationID)
}

func (s *fakeStore) findLocked(applicationID string) (*models.Application, error) {
	for _, app := range s.apps {
		if app.ApplicationID == applicationID {
			copied := *app
			for _, p := range s.payments {
				if p.ApplicationID == applicationID {
					pc := *p
					copied.Payment = &pc
				}
			}
			for _, a := range s.approvals {
				if a.ApplicationID == applicationID {
					ac := *a
					copied.Approval = &ac
				}
			}
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeStore) ExistsByApplicationID(_ context.Context, applicationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, app := range s.apps {
		if app.ApplicationID == applicationID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ExistsByAadhaar(_ context.Context, aadhaar string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, app := range s.apps {
		if app.AadhaarNumber == aadhaar {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) GetLatestByPhone(_ context.Context, phone, fullName, district string) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.Application
	for _, app := range s.apps {
		if app.PhoneNumber != phone || app.District != district {
			continue
		}
		if !strings.Contains(app.FullName, fullName) {
			continue
		}
		if latest == nil || app.CreatedAt.After(latest.CreatedAt) {
			latest = app
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.findLocked(latest.ApplicationID)
}

func (s *fakeStore) List(_ context.Context, status string, offset, limit int) ([]*models.Application, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*models.Application
	for _, app := range s.apps {
		if status == "" || string(app.Status) == status {
			copied := *app
			matched = append(matched, &copied)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *fakeStore) RecordPayment(_ context.Context, applicationID string, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.TransactionRef == payment.TransactionRef {
			return domain.ErrDuplicateTransaction
		}
	}
	if err := s.transitionLocked(applicationID, []domain.Status{domain.StatusPendingPayment}, domain.StatusPaid); err != nil {
		return err
	}
	s.payments = append(s.payments, payment)
	return nil
}

func (s *fakeStore) MarkUnderReview(_ context.Context, applicationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(applicationID, []domain.Status{domain.StatusPaid}, domain.StatusUnderReview)
}

func (s *fakeStore) Approve(_ context.Context, applicationID string, approval *models.ApprovalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transitionLocked(applicationID, domain.ReviewEligibleStatuses(), domain.StatusApproved); err != nil {
		return err
	}
	s.approvals = append(s.approvals, approval)
	return nil
}

func (s *fakeStore) Reject(_ context.Context, applicationID string, approval *models.ApprovalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transitionLocked(applicationID, domain.ReviewEligibleStatuses(), domain.StatusRejected); err != nil {
		return err
	}
	s.approvals = append(s.approvals, approval)
	return nil
}

func (s *fakeStore) transitionLocked(applicationID string, from []domain.Status, to domain.Status) error {
	for _, app := range s.apps {
		if app.ApplicationID != applicationID {
			continue
		}
		for _, f := range from {
			if app.Status == f {
				app.Status = to
				return nil
			}
		}
		return domain.ErrInvalidStateTransition
	}
	return domain.ErrInvalidStateTransition
}

// PaymentRepository

type fakePayments struct {
	store *fakeStore
}

func (f *fakePayments) GetByTransactionRef(_ context.Context, ref string) (*models.Payment, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, p := range f.store.payments {
		if p.TransactionRef == ref {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayments) GetByApplicationID(_ context.Context, applicationID string) (*models.Payment, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, p := range f.store.payments {
		if p.ApplicationID == applicationID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ApprovalRepository

type fakeApprovals struct {
	store *fakeStore
}

func (f *fakeApprovals) GetByApplicationID(_ context.Context, applicationID string) (*models.ApprovalRecord, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, a := range f.store.approvals {
		if a.ApplicationID == applicationID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeApprovals) UniqueIDExists(_ context.Context, uniqueID string) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, a := range f.store.approvals {
		if a.UniqueID != nil && *a.UniqueID == uniqueID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApprovals) FindApprovedIdentity(_ context.Context, uniqueID, aadhaar, phone string) (*models.Application, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, a := range f.store.approvals {
		if a.UniqueID == nil || *a.UniqueID != uniqueID {
			continue
		}
		app, err := f.store.findLocked(a.ApplicationID)
		if err != nil {
			return nil, err
		}
		if app.Status == domain.StatusApproved && app.AadhaarNumber == aadhaar && app.PhoneNumber == phone {
			return app, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// BankDetailsRepository

type fakeBankRepo struct {
	store *fakeStore
}

func (f *fakeBankRepo) Create(_ context.Context, details *models.BankDetails) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, b := range f.store.bank {
		if b.UniqueID == details.UniqueID {
			return domain.ErrAlreadyExists
		}
	}
	f.store.bank = append(f.store.bank, details)
	for _, a := range f.store.approvals {
		if a.UniqueID != nil && *a.UniqueID == details.UniqueID {
			a.BankDetailsSubmitted = true
		}
	}
	return nil
}

func (f *fakeBankRepo) GetByUniqueID(_ context.Context, uniqueID string) (*models.BankDetails, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, b := range f.store.bank {
		if b.UniqueID == uniqueID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeOtpRepo is an in-memory OtpRepository
type fakeOtpRepo struct {
	mu         sync.Mutex
	challenges []*models.OtpChallenge
	nextID     uint
}

func (r *fakeOtpRepo) Create(_ context.Context, challenge *models.OtpChallenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	challenge.ID = r.nextID
	if challenge.CreatedAt.IsZero() {
		challenge.CreatedAt = time.Now()
	}
	r.challenges = append(r.challenges, challenge)
	return nil
}

func (r *fakeOtpRepo) CountIssuancesSince(_ context.Context, phone string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, c := range r.challenges {
		if c.PhoneNumber == phone && !c.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeOtpRepo) GetLatestIssued(_ context.Context, phone, purpose, code string, issuedAfter time.Time) (*models.OtpChallenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.OtpChallenge
	for _, c := range r.challenges {
		if c.PhoneNumber != phone || c.Purpose != purpose || c.Code != code || c.Status != models.OtpStatusIssued {
			continue
		}
		if !c.CreatedAt.After(issuedAfter) {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeOtpRepo) UpdateStatus(_ context.Context, id uint, status string, verifiedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.challenges {
		if c.ID == id {
			c.Status = status
			if verifiedAt != nil {
				c.VerifiedAt = verifiedAt
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeOtpRepo) ExpireOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.challenges {
		if c.Status == models.OtpStatusIssued && c.CreatedAt.Before(cutoff) {
			c.Status = models.OtpStatusExpired
			n++
		}
	}
	return n, nil
}

// latestCode returns the code of the most recent challenge for a phone
func (r *fakeOtpRepo) latestCode(phone, purpose string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.OtpChallenge
	for _, c := range r.challenges {
		if c.PhoneNumber == phone && c.Purpose == purpose {
			if latest == nil || c.CreatedAt.After(latest.CreatedAt) || c.ID > latest.ID {
				latest = c
			}
		}
	}
	if latest == nil {
		return ""
	}
	return latest.Code
}

// backdate shifts every challenge for a phone into the past
func (r *fakeOtpRepo) backdate(phone string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.challenges {
		if c.PhoneNumber == phone {
			c.CreatedAt = c.CreatedAt.Add(-d)
		}
	}
}

// fakeAuditRepo is an in-memory AuditRepository
type fakeAuditRepo struct {
	mu     sync.Mutex
	events []*models.AuditEvent
}

func (r *fakeAuditRepo) Create(_ context.Context, event *models.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeAuditRepo) CountByActionSince(_ context.Context, action, detailContains string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.events {
		if e.Action == action && strings.Contains(e.Detail, detailContains) && !e.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAuditRepo) List(_ context.Context, action string, offset, limit int) ([]*models.AuditEvent, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.AuditEvent
	for _, e := range r.events {
		if action == "" || e.Action == action {
			matched = append(matched, e)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// actions returns the recorded action codes in order
func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	mu     sync.Mutex
	users  []*models.User
	nextID uint
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.LastLoginAt = &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) ListActiveByRole(_ context.Context, role string) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.Role == role && u.IsActive {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeTokenRepo is an in-memory RefreshTokenRepository
type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens []*models.RefreshToken
	nextID uint
}

func (r *fakeTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	token.ID = r.nextID
	r.tokens = append(r.tokens, token)
	return nil
}

func (r *fakeTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash {
			copied := *t
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) Revoke(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, t := range r.tokens {
		if t.ID == id {
			t.RevokedAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.RefreshToken
	var n int64
	for _, t := range r.tokens {
		if time.Now().After(t.ExpiresAt) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	r.tokens = kept
	return n, nil
}

// fakeGateway captures dispatched messages
type fakeGateway struct {
	mu       sync.Mutex
	sms      []string
	emails   []string
	failSMS  bool
	lastSMS  string
	lastDest string
}

func (g *fakeGateway) SendSMS(phone, message string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failSMS {
		return errors.New("gateway down")
	}
	g.sms = append(g.sms, message)
	g.lastSMS = message
	g.lastDest = phone
	return nil
}

func (g *fakeGateway) SendEmail(_, subject, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.emails = append(g.emails, subject)
	return nil
}
