package services

import (
	"context"
	"log"
	"time"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/adapters/persistence/repositories"
	"aphc-housingportal/internal/core/domain"

	"github.com/robfig/cron/v3"
)

// CronService runs the portal's background maintenance: expiring stale OTP
// challenges, purging expired refresh tokens and reminding admins of
// applications awaiting review
type CronService struct {
	cron      *cron.Cron
	otp       *OtpService
	tokenRepo repositories.RefreshTokenRepository
	appRepo   repositories.ApplicationRepository
	userRepo  repositories.UserRepository
	notifier  *NotificationService
}

// NewCronService creates a new cron service
func NewCronService(otp *OtpService, tokenRepo repositories.RefreshTokenRepository,
	appRepo repositories.ApplicationRepository, userRepo repositories.UserRepository,
	notifier *NotificationService) *CronService {
	return &CronService{
		cron:      cron.New(),
		otp:       otp,
		tokenRepo: tokenRepo,
		appRepo:   appRepo,
		userRepo:  userRepo,
		notifier:  notifier,
	}
}

// Start registers and starts the maintenance jobs
func (s *CronService) Start() {
	// Stale OTP sweep every 10 minutes
	if _, err := s.cron.AddFunc("@every 10m", s.expireStaleOtps); err != nil {
		log.Printf("❌ Failed to schedule OTP sweep: %v", err)
	}

	// Expired refresh token purge at 03:00 daily
	if _, err := s.cron.AddFunc("0 3 * * *", s.purgeExpiredTokens); err != nil {
		log.Printf("❌ Failed to schedule token purge: %v", err)
	}

	// Pending review reminder at 09:00 daily
	if _, err := s.cron.AddFunc("0 9 * * *", s.remindPendingReview); err != nil {
		log.Printf("❌ Failed to schedule review reminder: %v", err)
	}

	s.cron.Start()
	log.Println("⏰ Cron service started (OTP sweep @every 10m, token purge 03:00, review reminder 09:00)")
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("⏰ Cron service stopped")
}

func (s *CronService) expireStaleOtps() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.otp.ExpireStale(ctx)
	if err != nil {
		log.Printf("⚠️ OTP sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("🧹 Expired %d stale OTP challenges", n)
	}
}

func (s *CronService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.tokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("⚠️ Refresh token purge failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("🧹 Purged %d expired refresh tokens", n)
	}
}

func (s *CronService) remindPendingReview() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var total int64
	for _, status := range domain.ReviewEligibleStatuses() {
		_, count, err := s.appRepo.List(ctx, string(status), 0, 1)
		if err != nil {
			log.Printf("⚠️ Review reminder count failed: %v", err)
			return
		}
		total += count
	}
	if total == 0 {
		return
	}

	admins, err := s.userRepo.ListActiveByRole(ctx, models.RoleAdmin)
	if err != nil {
		log.Printf("⚠️ Review reminder recipient lookup failed: %v", err)
		return
	}
	for _, admin := range admins {
		s.notifier.NotifyPendingReview(admin.Email, total)
	}
	log.Printf("📧 Review reminder sent to %d admins (%d pending)", len(admins), total)
}
