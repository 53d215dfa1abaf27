// Package pwm drives the valve motor's PWM channel.
// Duty values are timer counts; each binding maps a count to its own unit.
package pwm

// Channel is a single PWM output.
type Channel interface {
	Start() error
	Stop() error
	SetDuty(counts uint16) error
}
