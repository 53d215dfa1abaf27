// Package event carries edge and wake notifications from interrupt-side
// producers to the control loop.
//
// Producers only timestamp and post. The mailbox keeps one slot per source;
// a newer post overwrites an undrained one, so the loop sees events coalesced
// per pass.
package event

import (
	"sync"
	"time"
)

// Edge is a timestamped level change.
type Edge struct {
	At    time.Time
	Level bool
}

// Batch is everything posted since the previous Drain.
type Batch struct {
	// Flood is the latest flood sensor edge; Level is true when wet.
	Flood *Edge
	// Press and Release hold the latest button edge of each direction so
	// a complete press between two passes is still classified.
	Press   *time.Time
	Release *time.Time
	// Periodic counts periodic wakes; LastPeriodic is the newest one.
	Periodic     int
	LastPeriodic time.Time
}

// Empty reports whether nothing was posted.
func (b Batch) Empty() bool {
	return b.Flood == nil && b.Press == nil && b.Release == nil && b.Periodic == 0
}

// Mailbox is safe for concurrent posting from any goroutine. The mutex is
// held only for the slot copy.
type Mailbox struct {
	mu      sync.Mutex
	pending Batch
	wake    chan struct{}
}

// NewMailbox creates an empty Mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{wake: make(chan struct{}, 1)}
}

// PostFloodEdge records a flood sensor edge.
func (m *Mailbox) PostFloodEdge(at time.Time, wet bool) {
	m.mu.Lock()
	m.pending.Flood = &Edge{At: at, Level: wet}
	m.mu.Unlock()
	m.signal()
}

// PostButtonEdge records a button press or release.
func (m *Mailbox) PostButtonEdge(at time.Time, pressed bool) {
	m.mu.Lock()
	if pressed {
		m.pending.Press = &at
	} else {
		m.pending.Release = &at
	}
	m.mu.Unlock()
	m.signal()
}

// PostPeriodicWake records a periodic timer wake.
func (m *Mailbox) PostPeriodicWake(at time.Time) {
	m.mu.Lock()
	m.pending.Periodic++
	m.pending.LastPeriodic = at
	m.mu.Unlock()
	m.signal()
}

// Drain returns and clears everything posted so far.
func (m *Mailbox) Drain() Batch {
	m.mu.Lock()
	b := m.pending
	m.pending = Batch{}
	m.mu.Unlock()
	return b
}

// Wake is signalled after every post. It has capacity one; a pending signal
// absorbs further posts.
func (m *Mailbox) Wake() <-chan struct{} {
	return m.wake
}

func (m *Mailbox) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
