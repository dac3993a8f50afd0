package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", hashed, "password must not be stored in plaintext")
	assert.True(t, CheckPassword("secret1", hashed))
	assert.False(t, CheckPassword("secret2", hashed))

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "hashes of the same password should differ by salt")
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()

	_, err := uuid.Parse(a)
	assert.NoError(t, err)
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_LengthLimit(t *testing.T) {
	_, err := HashPassword(strings.Repeat("p", MaxPasswordBytes))
	assert.NoError(t, err)

	_, err = HashPassword(strings.Repeat("p", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}
