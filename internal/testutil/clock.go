package testutil

import "sync"

// RevisionClock hands out increasing revision ids for audit fixtures.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RevisionClock struct {
	mu  sync.Mutex
	rev int64
}

// NewRevisionClock creates a clock whose first revision is 1.
func NewRevisionClock() *RevisionClock {
	return &RevisionClock{}
}

// Next increments and returns the next revision id.
func (c *RevisionClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rev++
	return c.rev
}

// Current returns the last revision id handed out, 0 if none.
func (c *RevisionClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rev
}
