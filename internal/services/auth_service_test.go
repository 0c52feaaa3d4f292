package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightkatongo/learn-hub/internal/config"
	"github.com/brightkatongo/learn-hub/internal/models"
	"github.com/brightkatongo/learn-hub/internal/utils"
)

func testAuthConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpiresIn = 3600
	return cfg
}

func seedUser(t *testing.T, email, password, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
}

func TestLogin(t *testing.T) {
	cfg := testAuthConfig()
	user := seedUser(t, "student@example.com", "hunter22", "student")
	service := NewAuthService(newFakeUserRepo(user), cfg)

	resp, err := service.Login(context.Background(), &models.LoginRequest{
		Email:    "student@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, user.Email, resp.User.Email)

	claims, err := utils.ValidateJWT(resp.Token, cfg)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims["user_id"])
	assert.Equal(t, "student", claims["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	service := NewAuthService(newFakeUserRepo(seedUser(t, "student@example.com", "hunter22", "student")), testAuthConfig())

	_, err := service.Login(context.Background(), &models.LoginRequest{
		Email:    "student@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	service := NewAuthService(newFakeUserRepo(), testAuthConfig())

	_, err := service.Login(context.Background(), &models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
