// Package valve sequences the motorized shutoff valve.
//
// Open and Close block for the whole motion: drive enable, PWM start, a
// stepped duty ramp between the end positions, then PWM stop and drive off
// so the motor draws no holding current.
package valve

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/flood-guard/internal/clock"
	"github.com/sweeney/flood-guard/internal/gpio"
	"github.com/sweeney/flood-guard/internal/pwm"
)

// Position is the valve's last known position.
type Position int

const (
	Moving Position = iota
	Open
	Closed
)

func (p Position) String() string {
	switch p {
	case Open:
		return "OPEN"
	case Closed:
		return "CLOSED"
	default:
		return "MOVING"
	}
}

// Config holds the ramp timing. Duties are PWM counts.
type Config struct {
	OpenDuty   uint16
	ClosedDuty uint16
	Step       uint16
	StepDelay  time.Duration
	Settle     time.Duration
}

// DefaultConfig returns the stock actuator ramp.
func DefaultConfig() Config {
	return Config{
		OpenDuty:   900,
		ClosedDuty: 1800,
		Step:       50,
		StepDelay:  30 * time.Millisecond,
		Settle:     50 * time.Millisecond,
	}
}

// Actuator drives the valve. Not safe for concurrent use.
type Actuator struct {
	ch     pwm.Channel
	drive  gpio.Output
	clk    clock.Clock
	cfg    Config
	pos    Position
	cycles int
}

// New returns an Actuator whose position is unknown (Moving) until the first
// completed motion.
func New(ch pwm.Channel, drive gpio.Output, clk clock.Clock, cfg Config) *Actuator {
	return &Actuator{ch: ch, drive: drive, clk: clk, cfg: cfg}
}

// Open ramps from the closed duty to the open duty.
func (a *Actuator) Open() error {
	return a.move(Open, a.cfg.ClosedDuty, a.cfg.OpenDuty)
}

// Close ramps from the open duty to the closed duty.
func (a *Actuator) Close() error {
	return a.move(Closed, a.cfg.OpenDuty, a.cfg.ClosedDuty)
}

// Position reports the last completed target, or Moving.
func (a *Actuator) Position() Position { return a.pos }

// Cycles counts completed motions.
func (a *Actuator) Cycles() int { return a.cycles }

func (a *Actuator) move(target Position, from, to uint16) error {
	a.pos = Moving
	start := a.clk.Now()

	if err := a.ramp(from, to); err != nil {
		// Leave the motor unpowered whatever happened mid-ramp.
		stopErr := errors.Join(a.ch.Stop(), a.drive.Set(false))
		if stopErr != nil {
			log.Error().Err(stopErr).Msg("valve: failed to de-energize after fault")
		}
		return fmt.Errorf("valve %s: %w", target, err)
	}

	a.pos = target
	a.cycles++
	log.Info().Stringer("position", target).Dur("took", a.clk.Now().Sub(start)).Msg("valve: moved")
	return nil
}

func (a *Actuator) ramp(from, to uint16) error {
	if err := a.drive.Set(true); err != nil {
		return fmt.Errorf("drive on: %w", err)
	}
	if err := a.ch.Start(); err != nil {
		return fmt.Errorf("pwm start: %w", err)
	}
	a.clk.Sleep(a.cfg.Settle)

	for _, d := range dutySteps(from, to, a.cfg.Step) {
		if err := a.ch.SetDuty(d); err != nil {
			return fmt.Errorf("duty %d: %w", d, err)
		}
		a.clk.Sleep(a.cfg.StepDelay)
	}

	a.clk.Sleep(a.cfg.Settle)
	if err := a.ch.Stop(); err != nil {
		return fmt.Errorf("pwm stop: %w", err)
	}
	a.clk.Sleep(a.cfg.Settle)
	if err := a.drive.Set(false); err != nil {
		return fmt.Errorf("drive off: %w", err)
	}
	return nil
}

// dutySteps lists the duties from one end to the other in step increments.
// Both ends are included; a final partial step lands exactly on to.
func dutySteps(from, to, step uint16) []uint16 {
	if step == 0 {
		return []uint16{to}
	}
	var out []uint16
	if from <= to {
		for d := int(from); d < int(to); d += int(step) {
			out = append(out, uint16(d))
		}
	} else {
		for d := int(from); d > int(to); d -= int(step) {
			out = append(out, uint16(d))
		}
	}
	return append(out, to)
}
