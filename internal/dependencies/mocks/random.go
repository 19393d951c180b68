package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/idlecoins/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu sync.Mutex

	// FloatResults is a queue of results to return from Float64
	FloatResults []float64
	floatIndex   int

	// IDResults is a queue of results to return from NewID
	IDResults []string
	idIndex   int
	generated int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Float64 returns the next queued result, or 0.99 if none remaining.
// The fallback never triggers a golden click at realistic chances.
func (r *MockRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.floatIndex >= len(r.FloatResults) {
		return 0.99
	}
	result := r.FloatResults[r.floatIndex]
	r.floatIndex++
	return result
}

// NewID returns the next queued id, or a sequential id if none remaining
func (r *MockRandom) NewID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idIndex >= len(r.IDResults) {
		r.generated++
		return fmt.Sprintf("generated-%d", r.generated)
	}
	result := r.IDResults[r.idIndex]
	r.idIndex++
	return result
}

// QueueFloat adds values to the Float64 result queue
func (r *MockRandom) QueueFloat(values ...float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FloatResults = append(r.FloatResults, values...)
}

// QueueID adds values to the NewID result queue
func (r *MockRandom) QueueID(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IDResults = append(r.IDResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FloatResults = nil
	r.floatIndex = 0
	r.IDResults = nil
	r.idIndex = 0
	r.generated = 0
}
