package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/connections-go/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing. Each method
// returns queued values in order and falls back to a deterministic default
// once its queue is drained.
type MockRandom struct {
	mu      sync.Mutex
	intns   []int
	strings []string
	uuids   []string
	nextID  int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.intns) == 0 || n <= 0 {
		return 0
	}
	v := r.intns[0]
	r.intns = r.intns[1:]
	return v % n
}

// String returns the next queued result, or empty string if none remaining
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.strings) == 0 {
		return ""
	}
	v := r.strings[0]
	r.strings = r.strings[1:]
	return v
}

// UUID returns the next queued id, or a sequential one like "id-1"
func (r *MockRandom) UUID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.uuids) > 0 {
		v := r.uuids[0]
		r.uuids = r.uuids[1:]
		return v
	}
	r.nextID++
	return fmt.Sprintf("id-%d", r.nextID)
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intns = append(r.intns, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strings = append(r.strings, values...)
}

// QueueUUID adds values to the UUID result queue
func (r *MockRandom) QueueUUID(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uuids = append(r.uuids, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intns = nil
	r.strings = nil
	r.uuids = nil
	r.nextID = 0
}
