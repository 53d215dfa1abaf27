package pwm

import (
	"errors"
	"sync"
)

// Fake records every call made to it.
type Fake struct {
	mu      sync.Mutex
	running bool
	Duties  []uint16
	Starts  int
	Stops   int

	// DutyError, if set, will be returned by SetDuty()
	DutyError error
	// FailAfter makes SetDuty fail once this many duties were accepted.
	// Zero disables it.
	FailAfter int
}

// NewFake creates a stopped Fake.
func NewFake() *Fake {
	return &Fake{}
}

// Start marks the channel as running.
func (f *Fake) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = true
	f.Starts++
	return nil
}

// Stop marks the channel as stopped.
func (f *Fake) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	f.Stops++
	return nil
}

// SetDuty records the duty.
func (f *Fake) SetDuty(counts uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DutyError != nil {
		return f.DutyError
	}
	if f.FailAfter > 0 && len(f.Duties) >= f.FailAfter {
		return errFakeDuty
	}
	f.Duties = append(f.Duties, counts)
	return nil
}

// Running reports whether the channel is started.
func (f *Fake) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Reset clears the recorded duties.
func (f *Fake) Reset() {
	f.mu.Lock()
	f.Duties = nil
	f.mu.Unlock()
}

var errFakeDuty = errors.New("pwm: simulated duty failure")
