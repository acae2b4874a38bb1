package credentials

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_TooShort(t *testing.T) {
	_, _, err := HashPassword("short", bcrypt.MinCost)
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, version, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	require.Equal(t, HashVersionBcrypt, version)
	require.NotEqual(t, "correct horse", hash)

	require.NoError(t, VerifyPassword(hash, "correct horse"))
	require.Error(t, VerifyPassword(hash, "wrong horse"))
}

func TestPair_Match(t *testing.T) {
	p, err := NewPair("dev@example.com", "Password123!", bcrypt.MinCost)
	require.NoError(t, err)

	require.Equal(t, "dev@example.com", p.Email())
	require.True(t, p.Match("dev@example.com", "Password123!"))
	require.False(t, p.Match("DEV@example.com", "Password123!"))
	require.False(t, p.Match(" dev@example.com\t", "Password123!"))
	require.False(t, p.Match("dev@example.com", "password123!"))
	require.False(t, p.Match("other@example.com", "Password123!"))
	require.False(t, p.Match("", ""))
}

func TestNewPair_RequiresEmail(t *testing.T) {
	_, err := NewPair("  ", "Password123!", bcrypt.MinCost)
	require.Error(t, err)
}
