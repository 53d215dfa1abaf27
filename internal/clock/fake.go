package clock

import (
	"sync"
	"time"
)

// Sim is a simulated clock. Sleep advances simulated time instantly instead of
// blocking, so a one-second alert pulse costs nothing in a test.
type Sim struct {
	mu    sync.Mutex
	now   time.Time
	slept time.Duration
}

// NewSim returns a simulated clock starting at start.
func NewSim(start time.Time) *Sim {
	return &Sim{now: start}
}

// Now returns the simulated time.
func (s *Sim) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Sleep advances simulated time by d and records it as blocked time.
func (s *Sim) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.now = s.now.Add(d)
	s.slept += d
	s.mu.Unlock()
}

// Advance moves simulated time forward without counting it as blocked time.
// Tests use it to model idle time between loop passes.
func (s *Sim) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	s.mu.Unlock()
}

// Slept returns the total duration passed to Sleep since creation.
func (s *Sim) Slept() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slept
}
