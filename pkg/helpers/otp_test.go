package helpers

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenVerificationCode_Range(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestPendingKeysAreNormalized(t *testing.T) {
	assert.Equal(t, "signup:pending:jane@example.com", KeyPendingSignup("  Jane@Example.COM "))
	assert.Equal(t, "signup:pending:username:jane", KeyPendingUsername(" Jane"))
}
