package services

import (
	"context"
	"errors"
	"time"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/adapters/persistence/repositories"
	"aphc-housingportal/internal/core/domain"
	"aphc-housingportal/internal/pkg/jwt"
	"aphc-housingportal/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// LoginLockoutWindow and LoginLockoutMax block a username after repeated
	// failures, counted from the audit log
	LoginLockoutWindow = 15 * time.Minute
	LoginLockoutMax    = 5
)

// AuthConfig carries token signing settings into the auth service
type AuthConfig struct {
	AccessSecret        string
	RefreshSecret       string
	AccessExpiryMinutes int
	RefreshExpiryDays   int
}

// TokenPair is the login/refresh result
type TokenPair struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	ExpiresIn    int                  `json:"expires_in"`
	User         *models.UserResponse `json:"user"`
}

// AuthService authenticates portal staff and manages their token lifecycle
type AuthService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
	audit     *AuditService
	cfg       AuthConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	audit *AuditService,
	cfg AuthConfig,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		audit:     audit,
		cfg:       cfg,
	}
}

// Login checks credentials and issues a token pair. A username with
// LoginLockoutMax audit-logged failures inside the window is blocked with
// domain.ErrRateLimited before the password is even checked. Wrong username
// and wrong password both return domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, plainPassword string, meta ClientMeta) (*TokenPair, error) {
	failures, err := s.audit.CountFailedLogins(ctx, username, LoginLockoutWindow)
	if err != nil {
		return nil, err
	}
	if failures >= LoginLockoutMax {
		s.audit.Record(ctx, nil, models.ActorSystem, models.ActionLoginBlocked,
			"username "+username, meta)
		return nil, domain.ErrRateLimited
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.recordLoginFailure(ctx, username, meta)
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !password.Verify(plainPassword, user.Password) {
		s.recordLoginFailure(ctx, username, meta)
		return nil, domain.ErrUnauthorized
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	s.audit.Record(ctx, &user.ID, actorForRole(user.Role), models.ActionLoginSuccess,
		"username "+username, meta)
	pair.User = user.ToResponse()
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair issued. Presenting an already-revoked token revokes every session of
// that user, since it means the token leaked or was replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	stored, err := s.tokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if stored.IsRevoked() {
		if err := s.tokenRepo.RevokeAllByUserID(ctx, stored.UserID); err != nil {
			return nil, err
		}
		return nil, domain.ErrUnauthorized
	}
	if stored.IsExpired() || stored.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUnauthorized
	}

	if err := s.tokenRepo.Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	pair.User = user.ToResponse()
	return pair, nil
}

// Logout revokes the presented refresh token. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	stored, err := s.tokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.tokenRepo.Revoke(ctx, stored.ID)
}

// GetUser fetches a staff account for the authenticated-profile endpoint
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(user.ID, user.Username, user.Role,
		s.cfg.AccessSecret, s.cfg.AccessExpiryMinutes)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()
	refreshToken, err := jwt.GenerateRefreshToken(user.ID, tokenID,
		s.cfg.RefreshSecret, s.cfg.RefreshExpiryDays)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Create(ctx, &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.RefreshExpiryDays),
	}); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.cfg.AccessExpiryMinutes * 60,
	}, nil
}

func (s *AuthService) recordLoginFailure(ctx context.Context, username string, meta ClientMeta) {
	s.audit.Record(ctx, nil, models.ActorSystem, models.ActionLoginFailed,
		"username "+username, meta)
}

func actorForRole(role string) string {
	if role == models.RoleWorker {
		return models.ActorWorker
	}
	return models.ActorAdmin
}
