package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidpilot_backend/internal/config"
	"bidpilot_backend/internal/models"
)

func setupJWTConfig() {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-for-jwt-package"
	cfg.JWT.TTL = 60
	config.AppConfig = cfg
}

func TestGenerateAndParseToken(t *testing.T) {
	setupJWTConfig()

	user := &models.User{
		Email:    "manager@test.com",
		Role:     models.UserRoleManager,
		TenantID: "tenant-jwt",
	}
	user.ID = "11111111-2222-3333-4444-555555555555"

	token, err := GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)

	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "tenant-jwt", claims.TenantID)
	assert.Equal(t, models.UserRoleManager, claims.Role)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestParseToken_Garbage(t *testing.T) {
	setupJWTConfig()

	_, err := ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestParseToken_WrongSecret(t *testing.T) {
	setupJWTConfig()

	user := &models.User{Role: models.UserRoleUser}
	user.ID = "11111111-2222-3333-4444-555555555555"

	token, err := GenerateToken(user)
	require.NoError(t, err)

	config.AppConfig.JWT.Secret = "another-secret"
	_, err = ParseToken(token)
	assert.Error(t, err, "Токен с чужой подписью должен отклоняться")
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, CheckPasswordHash("password123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("longenough"))
	assert.Error(t, ValidatePassword("short"))
}
