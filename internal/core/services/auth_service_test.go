package services

import (
	"context"
	"testing"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/core/domain"
	"aphc-housingportal/internal/pkg/jwt"
	"aphc-housingportal/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeTokenRepo, *fakeAuditRepo) {
	t.Helper()
	userRepo := &fakeUserRepo{}
	tokenRepo := &fakeTokenRepo{}
	auditRepo := &fakeAuditRepo{}

	hashed, err := password.Hash("correct-horse-battery")
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(context.Background(), &models.User{
		Username: "admin",
		Email:    "admin@example.com",
		Password: hashed,
		Role:     models.RoleAdmin,
		IsActive: true,
	}))

	svc := NewAuthService(userRepo, tokenRepo, NewAuditService(auditRepo), AuthConfig{
		AccessSecret:        "access-secret",
		RefreshSecret:       "refresh-secret",
		AccessExpiryMinutes: 15,
		RefreshExpiryDays:   7,
	})
	return svc, userRepo, tokenRepo, auditRepo
}

func TestLogin(t *testing.T) {
	svc, _, _, auditRepo := newAuthFixture(t)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "admin", "correct-horse-battery", ClientMeta{IP: "10.0.0.1"})
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 15*60, pair.ExpiresIn)
	require.NotNil(t, pair.User)
	assert.Equal(t, "admin", pair.User.Username)
	assert.Contains(t, auditRepo.actions(), models.ActionLoginSuccess)

	claims, err := jwt.ValidateAccessToken(pair.AccessToken, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginWrongCredentials(t *testing.T) {
	svc, _, _, auditRepo := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "wrong", ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody", "whatever", ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.Contains(t, auditRepo.actions(), models.ActionLoginFailed)
}

func TestLoginLockout(t *testing.T) {
	svc, _, _, auditRepo := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < LoginLockoutMax; i++ {
		_, err := svc.Login(ctx, "admin", "wrong", ClientMeta{})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}

	// Even the right password is blocked now
	_, err := svc.Login(ctx, "admin", "correct-horse-battery", ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Contains(t, auditRepo.actions(), models.ActionLoginBlocked)

	// A different username is unaffected
	_, err = svc.Login(ctx, "other", "whatever", ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginInactiveUser(t *testing.T) {
	svc, userRepo, _, _ := newAuthFixture(t)
	ctx := context.Background()

	hashed, err := password.Hash("some-password")
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(ctx, &models.User{
		Username: "retired",
		Password: hashed,
		Role:     models.RoleWorker,
		IsActive: false,
	}))

	_, err = svc.Login(ctx, "retired", "some-password", ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefreshRotation(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "admin", "correct-horse-battery", ClientMeta{})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old token was consumed by rotation
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefreshReuseRevokesAllSessions(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "admin", "correct-horse-battery", ClientMeta{})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// Replaying the consumed token kills the whole session family
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefreshGarbageToken(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "admin", "correct-horse-battery", ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Logging out an unknown token is a no-op
	assert.NoError(t, svc.Logout(ctx, "already-gone"))
}
