package mocks

import (
	"fmt"

	"sunward.gg/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// Tokens is a queue of results to return from Token
	Tokens []string
	next   int

	// Err, when set, is returned by every call
	Err error
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom returning the given tokens in order
func NewMockRandom(tokens ...string) *MockRandom {
	return &MockRandom{Tokens: tokens}
}

// Token returns the next queued token; once the queue is exhausted it
// generates deterministic "token-N" values
func (r *MockRandom) Token(n int) (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	r.next++
	if r.next <= len(r.Tokens) {
		return r.Tokens[r.next-1], nil
	}
	return fmt.Sprintf("token-%d", r.next), nil
}
