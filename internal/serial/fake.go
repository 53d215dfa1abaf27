package serial

import (
	"slices"
	"sync"
)

// FakeConsole records lines in memory.
type FakeConsole struct {
	mu    sync.Mutex
	lines []string
}

// NewFakeConsole creates an empty FakeConsole.
func NewFakeConsole() *FakeConsole {
	return &FakeConsole{}
}

// Line records text.
func (f *FakeConsole) Line(text string) {
	f.mu.Lock()
	f.lines = append(f.lines, text)
	f.mu.Unlock()
}

// Lines returns a copy of every recorded line.
func (f *FakeConsole) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.lines)
}

// Count returns how many times text was written.
func (f *FakeConsole) Count(text string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.lines {
		if l == text {
			n++
		}
	}
	return n
}

// Reset forgets recorded lines.
func (f *FakeConsole) Reset() {
	f.mu.Lock()
	f.lines = nil
	f.mu.Unlock()
}
