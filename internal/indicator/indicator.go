// Package indicator plays the fixed LED and buzzer patterns.
// Patterns block for their full duration and cannot be interrupted.
package indicator

import (
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/flood-guard/internal/clock"
	"github.com/sweeney/flood-guard/internal/gpio"
)

// Durations of each pattern.
type Durations struct {
	Status  time.Duration
	Battery time.Duration
	Alert   time.Duration
}

// DefaultDurations returns 100ms / 200ms / 1000ms.
func DefaultDurations() Durations {
	return Durations{
		Status:  100 * time.Millisecond,
		Battery: 200 * time.Millisecond,
		Alert:   time.Second,
	}
}

// Outputs are the three indicator lines.
type Outputs struct {
	StatusLED  gpio.Output
	WarningLED gpio.Output
	Buzzer     gpio.Output
}

// Driver plays patterns on Outputs.
type Driver struct {
	out Outputs
	clk clock.Clock
	dur Durations
}

// New creates a Driver.
func New(out Outputs, clk clock.Clock, dur Durations) *Driver {
	return &Driver{out: out, clk: clk, dur: dur}
}

// StatusBlink lights both LEDs.
func (d *Driver) StatusBlink() error {
	return d.pulse("status", d.dur.Status, d.out.StatusLED, d.out.WarningLED)
}

// BatteryBlink lights the status LED and sounds the buzzer.
func (d *Driver) BatteryBlink() error {
	return d.pulse("battery", d.dur.Battery, d.out.StatusLED, d.out.Buzzer)
}

// Alert sounds the buzzer with the warning LED.
func (d *Driver) Alert() error {
	return d.pulse("alert", d.dur.Alert, d.out.Buzzer, d.out.WarningLED)
}

func (d *Driver) pulse(name string, dur time.Duration, outs ...gpio.Output) error {
	var errs []error
	for _, o := range outs {
		if err := o.Set(true); err != nil {
			errs = append(errs, err)
			break
		}
	}
	if len(errs) == 0 {
		d.clk.Sleep(dur)
	}
	for _, o := range outs {
		if err := o.Set(false); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("indicator %s: %w", name, err)
	}
	return nil
}
