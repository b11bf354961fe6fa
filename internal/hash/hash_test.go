package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	require.NotEqual(t, "Str0ng!Pass", h)

	require.True(t, CheckPassword(h, "Str0ng!Pass"))
	require.False(t, CheckPassword(h, "WrongPass1"))
	require.False(t, CheckPassword("not-a-hash", "Str0ng!Pass"))
}

func TestValidateStrength(t *testing.T) {
	require.NoError(t, ValidateStrength("Str0ng!Pass"))
	require.NoError(t, ValidateStrength("abcdefg1"))

	require.ErrorIs(t, ValidateStrength("a1"), ErrPasswordTooShort)
	require.ErrorIs(t, ValidateStrength("12345678"), ErrPasswordNoLetter)
	require.ErrorIs(t, ValidateStrength("abcdefgh"), ErrPasswordNoDigit)
}
