package adc

import (
	"sync"
	"time"
)

// Fake returns scripted readings.
type Fake struct {
	mu     sync.Mutex
	values []uint16
	last   uint16

	// TimeoutNext makes the next n samples fail with ErrTimeout.
	TimeoutNext int
	// Samples counts calls to Sample().
	Samples int
}

// NewFake returns a Fake that reads value until scripted otherwise.
func NewFake(value uint16) *Fake {
	return &Fake{last: value}
}

// Push queues readings returned in order. After the queue is empty the last
// reading repeats.
func (f *Fake) Push(values ...uint16) {
	f.mu.Lock()
	f.values = append(f.values, values...)
	f.mu.Unlock()
}

// Sample returns the next scripted reading.
func (f *Fake) Sample(timeout time.Duration) (uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Samples++
	if f.TimeoutNext > 0 {
		f.TimeoutNext--
		return 0, ErrTimeout
	}
	if len(f.values) > 0 {
		f.last = f.values[0]
		f.values = f.values[1:]
	}
	return f.last, nil
}
