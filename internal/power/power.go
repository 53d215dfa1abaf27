// Package power decides when the appliance may sleep and tracks the
// periodic wake counter that schedules battery checks.
package power

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// State is Awake or Sleeping.
type State int

const (
	Awake State = iota
	Sleeping
)

func (s State) String() string {
	if s == Sleeping {
		return "SLEEPING"
	}
	return "AWAKE"
}

// WakeReason records what ended the last sleep.
type WakeReason int

const (
	ReasonNone WakeReason = iota
	ReasonButton
	ReasonFloodEdge
	ReasonPeriodic
)

func (r WakeReason) String() string {
	switch r {
	case ReasonButton:
		return "BUTTON"
	case ReasonFloodEdge:
		return "FLOOD_EDGE"
	case ReasonPeriodic:
		return "PERIODIC"
	default:
		return "NONE"
	}
}

// Hardware is the low-power platform surface.
type Hardware interface {
	SuspendTick()
	ResumeTick()
	ArmWakeTimer(period time.Duration)
	// EnterLowPowerMode blocks until any wake source fires or ctx ends.
	EnterLowPowerMode(ctx context.Context) error
}

// Config holds the sleep policy.
type Config struct {
	IdleTimeout time.Duration
	WakePeriod  time.Duration
	Rollover    int // periodic wakes per battery check
}

// DefaultConfig returns a 5s idle timeout and an hourly battery check
// (60 wakes of one minute).
func DefaultConfig() Config {
	return Config{
		IdleTimeout: 5 * time.Second,
		WakePeriod:  time.Minute,
		Rollover:    60,
	}
}

// Blockers are the controller conditions that forbid sleeping.
type Blockers struct {
	Flood          bool // flood flag set
	ConfirmPending bool // wet edge awaiting confirmation
	GesturePending bool // classified gesture not yet consumed
	Pressed        bool // press in progress
}

func (b Blockers) any() bool {
	return b.Flood || b.ConfirmPending || b.GesturePending || b.Pressed
}

// Scheduler is owned by the control loop.
type Scheduler struct {
	hw  Hardware
	cfg Config

	state          State
	lastActivityAt time.Time
	wakeReason     WakeReason
	wakeCount      int
	batteryDue     bool
	sleeps         int
}

// NewScheduler starts Awake with activity at now. A battery check is due on
// the first sleep after boot.
func NewScheduler(hw Hardware, cfg Config, now time.Time) *Scheduler {
	return &Scheduler{
		hw:             hw,
		cfg:            cfg,
		lastActivityAt: now,
		batteryDue:     true,
	}
}

// Notify handles one posted event. Edges make a battery check due; periodic
// wakes advance the counter. Any event is activity, and wakes a sleeping
// scheduler.
func (s *Scheduler) Notify(now time.Time, reason WakeReason) {
	switch reason {
	case ReasonPeriodic:
		s.wakeCount++
		if s.cfg.Rollover > 0 && s.wakeCount >= s.cfg.Rollover {
			s.wakeCount = 0
			s.batteryDue = true
		}
	case ReasonButton, ReasonFloodEdge:
		s.batteryDue = true
	}

	if s.state == Sleeping {
		s.hw.ResumeTick()
		s.state = Awake
		s.wakeReason = reason
		log.Debug().Stringer("reason", reason).Msg("power: awake")
	}
	s.Activity(now)
}

// Activity resets the idle timer. Older timestamps are ignored.
func (s *Scheduler) Activity(now time.Time) {
	if now.After(s.lastActivityAt) {
		s.lastActivityAt = now
	}
}

// ShouldSleep reports whether the idle timeout has elapsed with nothing
// holding the appliance awake.
func (s *Scheduler) ShouldSleep(now time.Time, b Blockers) bool {
	if s.state != Awake || b.any() {
		return false
	}
	return now.Sub(s.lastActivityAt) >= s.cfg.IdleTimeout
}

// Sleep suspends the tick, arms the periodic wake and blocks in low-power
// mode. The scheduler stays Sleeping until Notify; a return without a
// posted event is a spurious wake and the caller may call Sleep again.
func (s *Scheduler) Sleep(ctx context.Context) error {
	if s.state != Sleeping {
		s.state = Sleeping
		s.sleeps++
		s.hw.SuspendTick()
		s.hw.ArmWakeTimer(s.cfg.WakePeriod)
	}
	return s.hw.EnterLowPowerMode(ctx)
}

// State returns Awake or Sleeping.
func (s *Scheduler) State() State { return s.state }

// WakeReason returns the cause of the last wake.
func (s *Scheduler) WakeReason() WakeReason { return s.wakeReason }

// LastActivityAt returns the time of the last event.
func (s *Scheduler) LastActivityAt() time.Time { return s.lastActivityAt }

// WakeCount returns the periodic counter.
func (s *Scheduler) WakeCount() int { return s.wakeCount }

// Sleeps counts entries into Sleeping.
func (s *Scheduler) Sleeps() int { return s.sleeps }

// BatteryDue reports whether a battery check should run before sleeping.
func (s *Scheduler) BatteryDue() bool { return s.batteryDue }

// ClearBatteryDue marks the battery check done.
func (s *Scheduler) ClearBatteryDue() { s.batteryDue = false }
