// Package button classifies presses of the test/reset button into gestures.
package button

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Gesture is the result of classifying one completed press.
type Gesture int

const (
	None Gesture = iota
	Short
	Long
)

func (g Gesture) String() string {
	switch g {
	case Short:
		return "SHORT"
	case Long:
		return "LONG"
	default:
		return "NONE"
	}
}

// Thresholds bound the press durations.
type Thresholds struct {
	MinShort time.Duration
	MaxShort time.Duration
	Long     time.Duration
}

// DefaultThresholds returns 50ms / 300ms / 2000ms.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinShort: 50 * time.Millisecond,
		MaxShort: 300 * time.Millisecond,
		Long:     2000 * time.Millisecond,
	}
}

// Classify maps a press duration to a gesture. Durations between MaxShort
// and Long, and below MinShort, are bounce or indecision and yield None.
func Classify(d time.Duration, th Thresholds) Gesture {
	switch {
	case d >= th.Long:
		return Long
	case d >= th.MinShort && d <= th.MaxShort:
		return Short
	default:
		return None
	}
}

// Classifier tracks one button. It is owned by the control loop.
type Classifier struct {
	th             Thresholds
	pressed        bool
	pressStartedAt time.Time
	pending        Gesture
}

// NewClassifier creates an idle Classifier.
func NewClassifier(th Thresholds) *Classifier {
	return &Classifier{th: th}
}

// Press records the start of a press.
func (c *Classifier) Press(at time.Time) {
	c.pressed = true
	c.pressStartedAt = at
}

// Release ends a press and classifies it. A release without a press is
// ignored. A classified gesture replaces any unconsumed one.
func (c *Classifier) Release(at time.Time) Gesture {
	if !c.pressed {
		return None
	}
	c.pressed = false
	d := at.Sub(c.pressStartedAt)
	g := Classify(d, c.th)
	if g == None {
		log.Debug().Dur("held", d).Msg("button: press discarded")
		return None
	}
	c.pending = g
	return g
}

// Take returns the pending gesture and clears it.
func (c *Classifier) Take() Gesture {
	g := c.pending
	c.pending = None
	return g
}

// Pressed reports whether a press is in progress.
func (c *Classifier) Pressed() bool { return c.pressed }

// Pending reports whether a gesture awaits Take.
func (c *Classifier) Pending() bool { return c.pending != None }
