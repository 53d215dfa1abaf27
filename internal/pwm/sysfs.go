package pwm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Sysfs is a PWM channel exported through /sys/class/pwm.
type Sysfs struct {
	dir  string
	unit time.Duration
}

// OpenSysfs exports channel on chipDir (e.g. /sys/class/pwm/pwmchip0) and
// programs its period. unit is the duration of one duty count.
func OpenSysfs(chipDir string, channel int, period, unit time.Duration) (*Sysfs, error) {
	if unit <= 0 {
		return nil, fmt.Errorf("pwm: unit must be positive, got %s", unit)
	}
	dir := filepath.Join(chipDir, fmt.Sprintf("pwm%d", channel))
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := writeAttr(filepath.Join(chipDir, "export"), strconv.Itoa(channel)); err != nil {
			return nil, fmt.Errorf("export pwm%d: %w", channel, err)
		}
	}

	s := &Sysfs{dir: dir, unit: unit}
	if err := s.write("period", strconv.FormatInt(period.Nanoseconds(), 10)); err != nil {
		return nil, err
	}
	return s, nil
}

// Start enables the output.
func (s *Sysfs) Start() error {
	return s.write("enable", "1")
}

// Stop disables the output.
func (s *Sysfs) Stop() error {
	return s.write("enable", "0")
}

// SetDuty programs the high time in counts.
func (s *Sysfs) SetDuty(counts uint16) error {
	ns := int64(counts) * s.unit.Nanoseconds()
	return s.write("duty_cycle", strconv.FormatInt(ns, 10))
}

func (s *Sysfs) write(attr, value string) error {
	if err := writeAttr(filepath.Join(s.dir, attr), value); err != nil {
		return fmt.Errorf("pwm %s: %w", attr, err)
	}
	return nil
}

func writeAttr(path, value string) error {
	return os.WriteFile(path, []byte(value), 0o644)
}
