package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/eventledger/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued strings are returned first; after that it hands out
// deterministic unique strings so concurrent callers never collide.
type MockRandom struct {
	mu sync.Mutex

	queue   []string
	next    int
	counter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result, or a sequential fallback
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.next < len(r.queue) {
		result := r.queue[r.next]
		r.next++
		return result
	}

	r.counter++
	return fmt.Sprintf("%0*d", length, r.counter)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	r.queue = append(r.queue, values...)
	r.mu.Unlock()
}

// Reset clears all queued results and the fallback sequence
func (r *MockRandom) Reset() {
	r.mu.Lock()
	r.queue = nil
	r.next = 0
	r.counter = 0
	r.mu.Unlock()
}
