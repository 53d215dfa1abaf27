package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/flood-guard/internal/controller"
	"github.com/sweeney/flood-guard/internal/valve"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, TargetLinux, cfg.Target)
	assert.Equal(t, "gpiochip0", cfg.GPIO.Chip)
	assert.True(t, cfg.GPIO.SensorActiveLow)
	assert.Equal(t, 20*time.Millisecond, cfg.PWM.Period)
	assert.Equal(t, time.Microsecond, cfg.PWM.Unit)
	assert.Equal(t, uint(115200), cfg.Serial.Baud)
	assert.Equal(t, uint16(2950), cfg.Battery.LowThreshold)
	assert.Equal(t, 5*time.Second, cfg.Power.IdleTimeout)
	assert.Equal(t, 60, cfg.Power.Rollover)
	assert.Equal(t, 10*time.Millisecond, cfg.Control.LoopTick)

	assert.Equal(t, valve.DefaultConfig(), cfg.ValveConfig())
	assert.Equal(t, controller.DefaultConfig(), cfg.ControllerConfig())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flood-guard.yaml")
	yaml := `
target: sim
battery:
  low_threshold: 2500
power:
  idle_timeout: 15s
button:
  long: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, TargetSim, cfg.Target)
	assert.Equal(t, uint16(2500), cfg.Battery.LowThreshold)
	assert.Equal(t, 15*time.Second, cfg.Power.IdleTimeout)
	assert.Equal(t, 3*time.Second, cfg.Button.Long)
	assert.Equal(t, 300*time.Millisecond, cfg.Button.MaxShort, "unset keys keep defaults")
	assert.Equal(t, int64(15000), cfg.StatusConfig().IdleTimeoutMs)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FLOODGUARD_SERIAL_PORT", "/dev/ttyUSB1")
	t.Setenv("FLOODGUARD_CONTROL_ALERT_PERIOD", "7s")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 7*time.Second, cfg.Control.AlertPeriod)
}

func TestLoadOverridesWin(t *testing.T) {
	t.Setenv("FLOODGUARD_TARGET", "linux")

	cfg, err := Load("", map[string]any{"target": TargetSim, "log_level": "debug"})
	require.NoError(t, err)
	assert.Equal(t, TargetSim, cfg.Target)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := Load("", nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad target", func(c *Config) { c.Target = "esp32" }, "target must be"},
		{"short window inverted", func(c *Config) { c.Button.MinShort = 400 * time.Millisecond }, "exceeds button.max_short"},
		{"short overlaps long", func(c *Config) { c.Button.Long = 200 * time.Millisecond }, "must be below button.long"},
		{"zero step", func(c *Config) { c.Valve.Step = 0 }, "valve.step"},
		{"equal duties", func(c *Config) { c.Valve.ClosedDuty = c.Valve.OpenDuty }, "must differ"},
		{"zero idle", func(c *Config) { c.Power.IdleTimeout = 0 }, "power.idle_timeout"},
		{"zero rollover", func(c *Config) { c.Power.Rollover = 0 }, "power.rollover"},
		{"shared pin", func(c *Config) { c.GPIO.Buzzer = c.GPIO.Sensor }, "share line"},
		{"negative pin", func(c *Config) { c.GPIO.Drive = -1 }, "gpio.drive"},
		{"zero baud", func(c *Config) { c.Serial.Baud = 0 }, "serial.baud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateSimSkipsHardware(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	cfg.Target = TargetSim
	cfg.GPIO.Buzzer = cfg.GPIO.Sensor
	cfg.Serial.Baud = 0

	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsAll(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	cfg.Valve.Step = 0
	cfg.Power.Rollover = 0

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valve.step")
	assert.Contains(t, err.Error(), "power.rollover")
}
