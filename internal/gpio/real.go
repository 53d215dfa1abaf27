//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Chip requests lines from a Linux GPIO character device.
type Chip struct {
	chip  *gpiocdev.Chip
	now   func() time.Time
	mu    sync.Mutex
	lines []*gpiocdev.Line
}

// NewChip opens the named chip (e.g. "gpiochip0"). now timestamps edges.
func NewChip(name string, now func() time.Time) (*Chip, error) {
	c, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &Chip{chip: c, now: now}, nil
}

// RealInput is an input line with edge detection on both edges.
type RealInput struct {
	line *gpiocdev.Line
	now  func() time.Time

	mu      sync.Mutex
	handler EdgeHandler
}

// Input requests offset as an edge-detecting input.
func (c *Chip) Input(offset int, activeLow bool, pull Pull, debounce time.Duration) (*RealInput, error) {
	in := &RealInput{now: c.now}
	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(in.onEvent),
	}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	switch pull {
	case PullUp:
		opts = append(opts, gpiocdev.WithPullUp)
	case PullDown:
		opts = append(opts, gpiocdev.WithPullDown)
	}
	if debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(debounce))
	}

	line, err := c.chip.RequestLine(offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request input %d: %w", offset, err)
	}
	in.line = line
	c.track(line)
	return in, nil
}

func (in *RealInput) onEvent(evt gpiocdev.LineEvent) {
	in.mu.Lock()
	h := in.handler
	in.mu.Unlock()
	if h == nil {
		return
	}
	h(Edge{Time: in.now(), Level: evt.Type == gpiocdev.LineEventRisingEdge})
}

// Level returns the logical level.
func (in *RealInput) Level() (bool, error) {
	v, err := in.line.Value()
	if err != nil {
		return false, fmt.Errorf("read line: %w", err)
	}
	return v == 1, nil
}

// Watch registers the edge handler.
func (in *RealInput) Watch(h EdgeHandler) {
	in.mu.Lock()
	in.handler = h
	in.mu.Unlock()
}

// RealOutput is a driven output line.
type RealOutput struct {
	line *gpiocdev.Line
}

// Output requests offset as an output, initially inactive.
func (c *Chip) Output(offset int, activeLow bool) (*RealOutput, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	line, err := c.chip.RequestLine(offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request output %d: %w", offset, err)
	}
	c.track(line)
	return &RealOutput{line: line}, nil
}

// Set drives the logical level.
func (o *RealOutput) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}

func (c *Chip) track(l *gpiocdev.Line) {
	c.mu.Lock()
	c.lines = append(c.lines, l)
	c.mu.Unlock()
}

// Close releases every requested line and the chip.
// Lines are reconfigured as inputs first so outputs (motor drive, buzzer)
// are not left driven while the process is gone.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, l := range c.lines {
		if err := l.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line: %w", err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	c.lines = nil
	if c.chip != nil {
		if err := c.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
