// Package gpio provides digital input and output lines with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
//
// All levels are logical: an active-low line reads true when driven low.
package gpio

import (
	"errors"
	"time"
)

// ErrUnsupported is returned by the real chip on platforms without the GPIO
// character device.
var ErrUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Input is a level-readable line.
type Input interface {
	// Level returns the current logical level.
	Level() (bool, error)
}

// Edge is a single level change observed on an input line.
type Edge struct {
	Time  time.Time
	Level bool // logical level after the change
}

// EdgeHandler receives edges in interrupt context. It must not block or do I/O.
type EdgeHandler func(Edge)

// Watcher is an input line that can deliver edge interrupts.
type Watcher interface {
	Input
	// Watch registers h for both edges. A later call replaces the handler.
	Watch(h EdgeHandler)
}

// Output is a driven line.
type Output interface {
	// Set drives the line to the given logical level.
	Set(on bool) error
}

// Pull selects the input bias.
type Pull string

const (
	PullNone Pull = "none"
	PullUp   Pull = "up"
	PullDown Pull = "down"
)
