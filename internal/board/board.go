// Package board assembles the hardware collaborators for one target and
// builds the controller on top of them.
package board

import (
	"errors"
	"fmt"

	"github.com/sweeney/flood-guard/internal/adc"
	"github.com/sweeney/flood-guard/internal/battery"
	"github.com/sweeney/flood-guard/internal/clock"
	"github.com/sweeney/flood-guard/internal/config"
	"github.com/sweeney/flood-guard/internal/controller"
	"github.com/sweeney/flood-guard/internal/event"
	"github.com/sweeney/flood-guard/internal/gpio"
	"github.com/sweeney/flood-guard/internal/indicator"
	"github.com/sweeney/flood-guard/internal/power"
	"github.com/sweeney/flood-guard/internal/pwm"
	"github.com/sweeney/flood-guard/internal/serial"
	"github.com/sweeney/flood-guard/internal/status"
	"github.com/sweeney/flood-guard/internal/valve"
)

// Board is the set of bindings for one hardware target.
type Board struct {
	Clock      clock.Clock
	Sensor     gpio.Watcher // true when wet
	Button     gpio.Watcher // true while pressed
	Drive      gpio.Output
	StatusLED  gpio.Output
	WarningLED gpio.Output
	Buzzer     gpio.Output
	Divider    gpio.Output
	PWM        pwm.Channel
	ADC        adc.Reader
	Console    serial.Console

	// Sim is set on the sim target so callers can script the inputs.
	Sim *Sim

	closers []func() error
}

// Open builds the board named by cfg.Target.
func Open(cfg *config.Config) (*Board, error) {
	switch cfg.Target {
	case config.TargetLinux:
		return openLinux(cfg)
	case config.TargetSim:
		return OpenSim(clock.Real{}, nil, cfg.Serial.Backlog), nil
	default:
		return nil, fmt.Errorf("unknown target %q", cfg.Target)
	}
}

// Watch routes input edges into mb.
func (b *Board) Watch(mb *event.Mailbox) {
	b.Sensor.Watch(func(e gpio.Edge) { mb.PostFloodEdge(e.Time, e.Level) })
	b.Button.Watch(func(e gpio.Edge) { mb.PostButtonEdge(e.Time, e.Level) })
}

// Controller assembles the valve, indicators and battery monitor and returns
// a controller driving them. tracker may be nil.
func (b *Board) Controller(cfg *config.Config, mb *event.Mailbox, hw power.Hardware, tracker *status.Tracker) *controller.Controller {
	return controller.New(controller.Deps{
		Clock:  b.Clock,
		Sensor: b.Sensor,
		Button: b.Button,
		Valve:  valve.New(b.PWM, b.Drive, b.Clock, cfg.ValveConfig()),
		Indicators: indicator.New(indicator.Outputs{
			StatusLED:  b.StatusLED,
			WarningLED: b.WarningLED,
			Buzzer:     b.Buzzer,
		}, b.Clock, cfg.IndicatorDurations()),
		Battery: battery.NewMonitor(b.ADC, b.Divider, b.Clock, cfg.BatteryConfig()),
		Console: b.Console,
		Mailbox: mb,
		Power:   hw,
		Tracker: tracker,
	}, cfg.ControllerConfig())
}

// Close releases the hardware in reverse order of acquisition.
func (b *Board) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
