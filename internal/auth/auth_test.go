package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, "user@test.com", "user", testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "user@test.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(42, "user@test.com", "user", testSecret)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestGenerateToken_EmptySecret(t *testing.T) {
	_, err := GenerateToken(1, "a@b.c", "user", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", testSecret)
	assert.Error(t, err)
}
