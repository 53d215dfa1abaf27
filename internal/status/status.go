// Package status provides a thread-safe snapshot of the flood guard's state.
// The control loop writes it after every pass; the command reads it for the
// startup and shutdown records.
package status

import (
	"sync"
	"time"
)

// Config contains controller configuration for display.
type Config struct {
	Target        string
	IdleTimeoutMs int64
	AlertPeriodMs int64
	ConfirmMs     int64
	LowThreshold  uint16
}

// Battery is the most recent successful battery sample.
type Battery struct {
	Voltage   uint16
	Low       bool
	SampledAt time.Time
}

// Controller is the part of the snapshot owned by the control loop.
type Controller struct {
	State       string
	Flood       bool
	Valve       string
	ValveCycles int
	Power       string
	WakeReason  string
	WakeCount   int
	Alerts      int
	LastAlertAt time.Time
	Battery     Battery
}

// Snapshot is a point-in-time view of appliance state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Controller
	Session   string
	Booted    bool
	StartTime time.Time
	Now       time.Time
	Config    Config
}

// Uptime returns the duration since the process started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds the latest snapshot behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	now  func() time.Time
	snap Snapshot
}

// NewTracker creates a Tracker. now stamps each Snapshot.
func NewTracker(now func() time.Time, session string, cfg Config) *Tracker {
	return &Tracker{
		now: now,
		snap: Snapshot{
			Session:   session,
			StartTime: now(),
			Config:    cfg,
		},
	}
}

// Update replaces the controller state and marks the appliance booted.
func (t *Tracker) Update(c Controller) {
	t.mu.Lock()
	t.snap.Controller = c
	t.snap.Booted = true
	t.mu.Unlock()
}

// Snapshot returns a copy of the current state with Now set.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
