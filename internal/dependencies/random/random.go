package random

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Random provides randomness that can be mocked for testing
type Random interface {
	// Token generates an opaque URL-safe token from n random bytes
	Token(n int) (string, error)
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Token generates an opaque URL-safe token from n random bytes
func (r *CryptoRandom) Token(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
