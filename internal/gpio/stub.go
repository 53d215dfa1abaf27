//go:build !linux

package gpio

import "time"

// Chip is not available on non-Linux platforms.
type Chip struct{}

// NewChip returns ErrUnsupported on non-Linux platforms.
func NewChip(name string, now func() time.Time) (*Chip, error) {
	return nil, ErrUnsupported
}

// RealInput is not available on non-Linux platforms.
type RealInput struct{}

// Input is not implemented on non-Linux platforms.
func (c *Chip) Input(offset int, activeLow bool, pull Pull, debounce time.Duration) (*RealInput, error) {
	return nil, ErrUnsupported
}

// Level is not implemented on non-Linux platforms.
func (in *RealInput) Level() (bool, error) { return false, ErrUnsupported }

// Watch is a no-op on non-Linux platforms.
func (in *RealInput) Watch(h EdgeHandler) {}

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// Output is not implemented on non-Linux platforms.
func (c *Chip) Output(offset int, activeLow bool) (*RealOutput, error) {
	return nil, ErrUnsupported
}

// Set is not implemented on non-Linux platforms.
func (o *RealOutput) Set(on bool) error { return ErrUnsupported }

// Close is a no-op on non-Linux platforms.
func (c *Chip) Close() error { return nil }
