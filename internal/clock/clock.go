// Package clock provides the time source and blocking delay used by the
// control loop. Actuation and indicator sequences call Sleep for their fixed
// delays, so tests substitute a simulated clock and run instantly.
package clock

import "time"

// Clock reports the current time and blocks for fixed delays.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Real is the wall clock.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time { return time.Now() }

// Sleep blocks for d.
func (Real) Sleep(d time.Duration) { time.Sleep(d) }
