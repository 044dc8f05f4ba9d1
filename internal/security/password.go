package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// bcrypt only reads the first 72 bytes of its input
const maxPasswordBytes = 72

var ErrHashing = errors.New("could not hash password")

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given cost. Costs outside bcrypt's
// accepted range fall back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	return &Hasher{cost: cost}
}

// Hash hashes a plain text password with bcrypt. Input past 72 bytes is
// ignored, so long passwords hash instead of failing.
func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncate(plain), h.cost)

	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashing, err)
	}

	return string(hash), nil
}

// Verify reports whether plain matches the stored bcrypt hash. A malformed
// hash is treated as a mismatch.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(plain)) == nil
}

func truncate(plain string) []byte {
	b := []byte(plain)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
