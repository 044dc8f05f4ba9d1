package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "pw123", hash)

	assert.True(t, h.Verify("pw123", hash))
	assert.False(t, h.Verify("wrong", hash))
	assert.False(t, h.Verify("", hash))
}

func TestHasher_SaltsEveryHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same-password", first))
	assert.True(t, h.Verify("same-password", second))
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	assert.False(t, h.Verify("pw123", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("pw123", ""))
}

func TestNewHasher_Cost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).cost)
	assert.Equal(t, DefaultCost, NewHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewHasher(12).cost)

	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("pw123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestHasher_LongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	long := strings.Repeat("p", 80)

	hash, err := h.Hash(long)
	require.NoError(t, err)
	assert.True(t, h.Verify(long, hash))

	// only the first 72 bytes count
	assert.True(t, h.Verify(strings.Repeat("p", 72)+"different", hash))
	assert.False(t, h.Verify(strings.Repeat("p", 71), hash))
}
