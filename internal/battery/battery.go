// Package battery measures the supply through a switched resistor divider.
package battery

import (
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/flood-guard/internal/adc"
	"github.com/sweeney/flood-guard/internal/clock"
	"github.com/sweeney/flood-guard/internal/gpio"
)

// Config holds the measurement parameters.
type Config struct {
	LowThreshold uint16        // readings below this are low
	Timeout      time.Duration // ADC poll bound
	Settle       time.Duration // hold after conversion, before the divider is released
}

// DefaultConfig returns threshold 2950, 1s timeout, 5ms settle.
func DefaultConfig() Config {
	return Config{
		LowThreshold: 2950,
		Timeout:      time.Second,
		Settle:       5 * time.Millisecond,
	}
}

// State is the outcome of the most recent successful sample.
type State struct {
	LastSampleAt time.Time
	LastVoltage  uint16
	Low          bool
}

// Reading is returned by Sample.
type Reading struct {
	Value uint16
	Low   bool
	Stale bool // Value is the previous reading; this sample failed
}

// Monitor samples the battery on demand. It never alerts by itself.
type Monitor struct {
	adc     adc.Reader
	divider gpio.Output
	clk     clock.Clock
	cfg     Config
	state   State
}

// NewMonitor creates a Monitor with no prior reading.
func NewMonitor(r adc.Reader, divider gpio.Output, clk clock.Clock, cfg Config) *Monitor {
	return &Monitor{adc: r, divider: divider, clk: clk, cfg: cfg}
}

// Sample enables the divider, converts, and releases the divider. On failure
// the previous reading comes back marked Stale, State is unchanged and the
// error is returned for the caller to log.
func (m *Monitor) Sample() (Reading, error) {
	stale := Reading{Value: m.state.LastVoltage, Low: m.state.Low, Stale: true}

	if err := m.divider.Set(true); err != nil {
		return stale, fmt.Errorf("battery divider on: %w", err)
	}
	v, sampleErr := m.adc.Sample(m.cfg.Timeout)
	m.clk.Sleep(m.cfg.Settle)
	offErr := m.divider.Set(false)

	if err := errors.Join(sampleErr, offErr); err != nil {
		return stale, fmt.Errorf("battery sample: %w", err)
	}

	m.state = State{
		LastSampleAt: m.clk.Now(),
		LastVoltage:  v,
		Low:          v < m.cfg.LowThreshold,
	}
	return Reading{Value: v, Low: m.state.Low}, nil
}

// State returns the last successful sample.
func (m *Monitor) State() State { return m.state }
