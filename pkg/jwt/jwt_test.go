package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, secret, issuer string) *TokenManager {
	t.Helper()
	m, err := NewManager(secret, issuer, 1)
	require.NoError(t, err)
	return m
}

func TestNewManager_RejectsEmptySecret(t *testing.T) {
	m, err := NewManager("", "linkhub", 1)
	assert.ErrorIs(t, err, ErrEmptySecret)
	assert.Nil(t, m)
}

func TestTokenRoundTrip(t *testing.T) {
	m := newManager(t, "secret", "linkhub")

	token, err := m.GenerateToken(7, "admin", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateToken_Rejects(t *testing.T) {
	m := newManager(t, "secret", "linkhub")
	token, err := m.GenerateToken(1, "admin", "admin")
	require.NoError(t, err)

	_, err = newManager(t, "other-secret", "linkhub").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = newManager(t, "secret", "someone-else").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
