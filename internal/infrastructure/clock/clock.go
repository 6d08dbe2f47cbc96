// Package clock provides domain.Clock implementations.
package clock

import (
	"sync"
	"time"

	"github.com/you/nirogsvc/domain"
)

type systemClock struct{}

// New returns a clock backed by time.Now.
func New() domain.Clock {
	return systemClock{}
}

// Now returns the current time
func (systemClock) Now() time.Time {
	return time.Now()
}

// ManagedClock is a manually advanced clock for tests.
type ManagedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManaged returns a clock frozen at t.
func NewManaged(t time.Time) *ManagedClock {
	return &ManagedClock{now: t}
}

// Now returns the managed time
func (c *ManagedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// WarpForward advances the clock by d.
func (c *ManagedClock) WarpForward(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t.
func (c *ManagedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
