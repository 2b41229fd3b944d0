package services

import (
	"context"
	"testing"

	"estatecrm/internal/config"
	"estatecrm/internal/core/domain"
	"estatecrm/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			AccessTokenMins:  60,
			RefreshTokenDays: 7,
		},
	}
}

func newTestAuthService() (*AuthService, *fakeUserRepo, *fakeRefreshTokenRepo) {
	userRepo := newFakeUserRepo()
	tokenRepo := newFakeRefreshTokenRepo()
	return NewAuthService(userRepo, tokenRepo, testConfig()), userRepo, tokenRepo
}

func TestAuthService_Register(t *testing.T) {
	svc, userRepo, tokenRepo := newTestAuthService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		Email:    "Anna@Example.com",
		Password: "secret123",
		FullName: "Anna K",
	})
	require.NoError(t, err)

	// Self-registered accounts are unapproved managers
	assert.Equal(t, "anna@example.com", resp.User.Email)
	assert.Equal(t, string(domain.RoleManager), resp.User.Role)
	assert.False(t, resp.User.Approved)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// Access token carries the verified identity
	claims, err := jwt.ValidateAccessToken(resp.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, string(domain.RoleManager), claims.Role)

	// A signing secret was created alongside the user
	_, err = userRepo.GetSecret(ctx, resp.User.ID)
	assert.NoError(t, err)

	// Only the hash of the refresh token is stored
	_, err = tokenRepo.GetByTokenHash(ctx, jwt.HashToken(resp.RefreshToken))
	assert.NoError(t, err)
	_, err = tokenRepo.GetByTokenHash(ctx, resp.RefreshToken)
	assert.Error(t, err)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{Email: "not-an-email", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Register(ctx, &RegisterInput{Email: "ok@example.com", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{Email: "dup@example.com", Password: "secret123"})
	require.NoError(t, err)

	// Same address with different case is still taken
	_, err = svc.Register(ctx, &RegisterInput{Email: "DUP@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAuthService_Login(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{Email: "login@example.com", Password: "secret123"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &LoginInput{Email: "login@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{Email: "login@example.com", Password: "secret123"})
	require.NoError(t, err)

	// Wrong password and unknown email yield the same error
	_, badPass := svc.Login(ctx, &LoginInput{Email: "login@example.com", Password: "wrongpass"})
	_, badUser := svc.Login(ctx, &LoginInput{Email: "ghost@example.com", Password: "secret123"})
	assert.ErrorIs(t, badPass, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, badUser, domain.ErrInvalidCredentials)
	assert.Equal(t, badPass, badUser)
}

func TestAuthService_Refresh_Rotation(t *testing.T) {
	svc, _, tokenRepo := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, &RegisterInput{Email: "rot@example.com", Password: "secret123"})
	require.NoError(t, err)

	resp, err := svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, reg.RefreshToken, resp.RefreshToken)

	// One live token before and after rotation
	assert.Equal(t, 1, tokenRepo.count())

	// The consumed token cannot be exchanged again
	_, err = svc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	// The rotated token still works
	_, err = svc.Refresh(ctx, resp.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_Refresh_UnknownToken(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Refresh(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, tokenRepo := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, &RegisterInput{Email: "out@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, reg.RefreshToken))
	assert.Equal(t, 0, tokenRepo.count())

	_, err = svc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestAuthService_LogoutAll(t *testing.T) {
	svc, _, tokenRepo := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, &RegisterInput{Email: "all@example.com", Password: "secret123"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, &LoginInput{Email: "all@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, 2, tokenRepo.count())

	require.NoError(t, svc.LogoutAll(ctx, reg.User.ID))
	assert.Equal(t, 0, tokenRepo.count())
}
