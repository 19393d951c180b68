package random

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/google/uuid"
)

// Random provides randomness that can be mocked for testing
type Random interface {
	// Float64 returns a random float in [0, 1)
	Float64() float64

	// NewID generates a fresh opaque player id
	NewID() string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Float64 returns a cryptographically random float in [0, 1)
func (r *CryptoRandom) Float64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// Fall back to 0 on error (should never happen with crypto/rand)
		return 0
	}
	// 53 significant bits, same construction as math/rand
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// NewID returns a random UUID string
func (r *CryptoRandom) NewID() string {
	return uuid.NewString()
}
