package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinTrack/config"
)

func setupGenerator(t *testing.T) {
	t.Helper()
	prev := config.Cfg
	config.Cfg.JWTSecret = "test-secret"
	config.Cfg.JWTExpireMinutes = 15
	config.Cfg.JWTRefreshDays = 7
	t.Cleanup(func() {
		config.Cfg = prev
		sharedGenerator = nil
	})
	require.NoError(t, Init())
}

func TestGenerateAndValidateRefresh(t *testing.T) {
	setupGenerator(t)

	pair, err := GenerateTokenPair("42")
	require.NoError(t, err)
	assert.Equal(t, 15*60, pair.ExpiresIn)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	uid, err := ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "42", uid)

	_, err = ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	_, err = ValidateRefreshToken(pair.RefreshToken + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRefreshExpired(t *testing.T) {
	setupGenerator(t)

	pair, err := GenerateTokenPair("42")
	require.NoError(t, err)

	sharedGenerator.TimeFunc = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, err = ValidateRefreshToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserIDFromClaims(t *testing.T) {
	uid, err := UserIDFromClaims(map[string]interface{}{IdentityKey: float64(7)})
	require.NoError(t, err)
	assert.Equal(t, "7", uid)

	_, err = UserIDFromClaims(map[string]interface{}{})
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestGenerateWithoutInit(t *testing.T) {
	_, err := GenerateTokenPair("1")
	assert.ErrorIs(t, err, ErrGeneratorNotInitialized)
}
