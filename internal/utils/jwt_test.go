package utils

import (
	"testing"
	"time"

	"signwise/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	access, refresh, err := GenerateTokens(&models.OperatorClaims{
		OperatorID:   7,
		Email:        "ops@signwise.test",
		Role:         models.RoleDispatcher,
		Permissions:  models.GetDefaultPermissions(models.RoleDispatcher),
		TokenVersion: 2,
	})
	require.NoError(t, err)

	_, claims, err := ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.OperatorID)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "signwise-api", claims.Issuer)
	assert.True(t, claims.HasPermission(models.PermissionQuoteCreate))
	assert.False(t, claims.HasPermission(models.PermissionPilotConvert))
	assert.Equal(t, 2, claims.TokenVersion)

	_, refreshClaims, err := ParseToken(refresh)
	require.NoError(t, err)
	assert.Empty(t, refreshClaims.Permissions)
	assert.True(t, refreshClaims.ExpiresAt.After(time.Now().Add(24*time.Hour)))
}

func TestParseToken_Rejections(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, _, err := ParseToken("not-a-token")
	assert.Error(t, err)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.OperatorClaims{
		RegisteredClaims: registered(1, time.Now(), time.Minute),
	}).SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, _, err = ParseToken(other)
	assert.Error(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.OperatorClaims{
		RegisteredClaims: registered(1, time.Now().Add(-time.Hour), time.Minute),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, _, err = ParseToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestGenerateTokens_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, _, err := GenerateTokens(&models.OperatorClaims{OperatorID: 1})
	assert.ErrorIs(t, err, ErrSecretNotConfigured)
}
