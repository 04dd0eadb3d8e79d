package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateResetToken(t *testing.T) {
	token, hash, err := GenerateResetToken()
	require.NoError(t, err)

	// 32 байта в hex = 64 символа
	assert.Len(t, token, 64)
	raw, err := hex.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, ResetTokenBytes)

	assert.Len(t, hash, 64, "SHA256 hash должен быть 64 символа")
	assert.NotEqual(t, token, hash)
	assert.Equal(t, HashResetToken(token), hash)
}

func TestGenerateResetToken_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		token, _, err := GenerateResetToken()
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup, "токены не должны повторяться")
		seen[token] = struct{}{}
	}
}

func TestHashResetToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashResetToken("abc"), HashResetToken("abc"))
	assert.NotEqual(t, HashResetToken("abc"), HashResetToken("abd"))
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HashResetToken("abc"))
}

