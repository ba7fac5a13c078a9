package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "unit-test-secret")

	var u User
	require.NoError(t, u.SetRefreshToken("1//refresh-token-value"))
	require.NotEmpty(t, u.EncryptedRefreshToken)
	assert.NotContains(t, u.EncryptedRefreshToken, "refresh-token-value")

	got, err := u.RefreshToken()
	require.NoError(t, err)
	assert.Equal(t, "1//refresh-token-value", got)
}

func TestRefreshTokenUniqueNonce(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "unit-test-secret")

	var a, b User
	require.NoError(t, a.SetRefreshToken("same-token"))
	require.NoError(t, b.SetRefreshToken("same-token"))
	assert.NotEqual(t, a.EncryptedRefreshToken, b.EncryptedRefreshToken)
}

func TestRefreshTokenWithoutKey(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "")

	var u User
	assert.Error(t, u.SetRefreshToken("token"))
}

func TestRefreshTokenTampered(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "unit-test-secret")

	var u User
	require.NoError(t, u.SetRefreshToken("token"))

	// Flip one hex digit of the ciphertext.
	raw := []byte(u.EncryptedRefreshToken)
	last := len(raw) - 1
	if raw[last] == '0' {
		raw[last] = '1'
	} else {
		raw[last] = '0'
	}
	u.EncryptedRefreshToken = string(raw)

	_, err := u.RefreshToken()
	assert.Error(t, err)
}
