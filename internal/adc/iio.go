package adc

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// IIO reads an Industrial I/O voltage channel, e.g.
// /sys/bus/iio/devices/iio:device0/in_voltage3_raw.
type IIO struct {
	path string
	poll time.Duration
}

// NewIIO returns a reader for the raw attribute at path. poll is the retry
// interval while the driver reports the conversion busy.
func NewIIO(path string, poll time.Duration) *IIO {
	if poll <= 0 {
		poll = time.Millisecond
	}
	return &IIO{path: path, poll: poll}
}

// Sample reads the channel, retrying until timeout.
func (a *IIO) Sample(timeout time.Duration) (uint16, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		v, err := a.read()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !time.Now().Before(deadline) {
			return 0, fmt.Errorf("%w after %s: %v", ErrTimeout, timeout, lastErr)
		}
		time.Sleep(a.poll)
	}
}

func (a *IIO) read() (uint16, error) {
	b, err := os.ReadFile(a.path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", a.path, err)
	}
	return uint16(v), nil
}
