package power

import (
	"context"
	"time"
)

// Fake records Hardware calls. EnterLowPowerMode returns immediately after
// running OnSleep, which tests use to advance a clock or post the wake event.
type Fake struct {
	Suspends  int
	Resumes   int
	Armed     []time.Duration
	LowPower  int
	Suspended bool

	OnSleep func()
	// SleepError, if set, will be returned by EnterLowPowerMode()
	SleepError error
}

// NewFake creates a Fake.
func NewFake() *Fake {
	return &Fake{}
}

// SuspendTick records a suspend.
func (f *Fake) SuspendTick() {
	f.Suspends++
	f.Suspended = true
}

// ResumeTick records a resume.
func (f *Fake) ResumeTick() {
	f.Resumes++
	f.Suspended = false
}

// ArmWakeTimer records the period.
func (f *Fake) ArmWakeTimer(period time.Duration) {
	f.Armed = append(f.Armed, period)
}

// EnterLowPowerMode counts the entry, runs OnSleep and returns SleepError or ctx.Err().
func (f *Fake) EnterLowPowerMode(ctx context.Context) error {
	f.LowPower++
	if f.OnSleep != nil {
		f.OnSleep()
	}
	if f.SleepError != nil {
		return f.SleepError
	}
	return ctx.Err()
}
