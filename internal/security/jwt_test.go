package security_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/floorboard/internal/security"
)

const testSecret = "test-secret-key-with-32-chars!!"

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := security.NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	userID := uuid.New()
	accessToken, err := manager.GenerateAccessToken(userID, "test@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)

	claims, err := manager.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, security.Issuer, claims.Issuer)
}

func TestJWTManager_GenerateTokenPair(t *testing.T) {
	manager := security.NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	userID := uuid.New()
	accessToken, refreshToken, expiresIn, err := manager.GenerateTokenPair(userID, "test@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), expiresIn)

	extracted, err := manager.ValidateRefreshToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, extracted)
}

func TestJWTManager_TokensAreNotInterchangeable(t *testing.T) {
	manager := security.NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	access, refresh, _, err := manager.GenerateTokenPair(uuid.New(), "test@example.com")
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(refresh)
	assert.Error(t, err)
	_, err = manager.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestJWTManager_InvalidToken(t *testing.T) {
	manager := security.NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	_, err := manager.ValidateAccessToken("invalid-token")
	assert.Error(t, err)

	_, err = manager.ValidateAccessToken("")
	assert.Error(t, err)

	other := security.NewJWTManager("different-secret-key-32-chars!!", 15*time.Minute, 7*24*time.Hour)
	token, err := other.GenerateAccessToken(uuid.New(), "test@example.com")
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.Error(t, err, "token signed with a different secret")
}

func TestJWTManager_Expired(t *testing.T) {
	manager := security.NewJWTManager(testSecret, -time.Minute, time.Hour)

	token, err := manager.GenerateAccessToken(uuid.New(), "test@example.com")
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_AccessTokenTTL(t *testing.T) {
	manager := security.NewJWTManager(testSecret, 30*time.Minute, 7*24*time.Hour)
	assert.Equal(t, 30*time.Minute, manager.AccessTokenTTL())
}
