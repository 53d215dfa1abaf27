package gpio

import (
	"sync"
	"time"
)

// FakeInput is a test double for an input line. Tests set its level and
// fire edges by hand.
type FakeInput struct {
	mu      sync.Mutex
	level   bool
	handler EdgeHandler

	// ReadError, if set, will be returned by Level()
	ReadError error
	// Reads counts calls to Level().
	Reads int
}

// NewFakeInput creates a FakeInput at the given level.
func NewFakeInput(level bool) *FakeInput {
	return &FakeInput{level: level}
}

// Level returns the scripted level.
func (f *FakeInput) Level() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads++
	if f.ReadError != nil {
		return false, f.ReadError
	}
	return f.level, nil
}

// Watch registers the edge handler.
func (f *FakeInput) Watch(h EdgeHandler) {
	f.mu.Lock()
	f.handler = h
	f.mu.Unlock()
}

// Set changes the level without raising an edge.
func (f *FakeInput) Set(level bool) {
	f.mu.Lock()
	f.level = level
	f.mu.Unlock()
}

// Drive changes the level and, if it differs from the current one, delivers
// an edge stamped at.
func (f *FakeInput) Drive(level bool, at time.Time) {
	f.mu.Lock()
	changed := f.level != level
	f.level = level
	h := f.handler
	f.mu.Unlock()
	if changed && h != nil {
		h(Edge{Time: at, Level: level})
	}
}

// FakeOutput records every level written to it.
type FakeOutput struct {
	mu      sync.Mutex
	on      bool
	History []bool

	// WriteError, if set, will be returned by Set()
	WriteError error
}

// NewFakeOutput creates an inactive FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records the level.
func (f *FakeOutput) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return f.WriteError
	}
	f.on = on
	f.History = append(f.History, on)
	return nil
}

// On reports the last level written.
func (f *FakeOutput) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// Pulses counts off-to-on transitions in the history.
func (f *FakeOutput) Pulses() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	prev := false
	for _, v := range f.History {
		if v && !prev {
			n++
		}
		prev = v
	}
	return n
}
