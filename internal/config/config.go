// Package config loads flood guard settings. Every value has a default;
// a YAML file and FLOODGUARD_* environment variables override them.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sweeney/flood-guard/internal/battery"
	"github.com/sweeney/flood-guard/internal/button"
	"github.com/sweeney/flood-guard/internal/controller"
	"github.com/sweeney/flood-guard/internal/indicator"
	"github.com/sweeney/flood-guard/internal/power"
	"github.com/sweeney/flood-guard/internal/status"
	"github.com/sweeney/flood-guard/internal/valve"
)

// Targets.
const (
	TargetLinux = "linux"
	TargetSim   = "sim"
)

// EnvPrefix prefixes environment overrides, e.g. FLOODGUARD_SERIAL_PORT.
const EnvPrefix = "FLOODGUARD"

// GPIO names the chip and line offsets of every input and output.
type GPIO struct {
	Chip            string        `mapstructure:"chip"`
	Sensor          int           `mapstructure:"sensor"`
	Button          int           `mapstructure:"button"`
	Drive           int           `mapstructure:"drive"`
	StatusLED       int           `mapstructure:"status_led"`
	WarningLED      int           `mapstructure:"warning_led"`
	Buzzer          int           `mapstructure:"buzzer"`
	Divider         int           `mapstructure:"divider"`
	SensorActiveLow bool          `mapstructure:"sensor_active_low"`
	ButtonActiveLow bool          `mapstructure:"button_active_low"`
	Debounce        time.Duration `mapstructure:"debounce"`
}

// PWM selects the sysfs channel driving the valve servo.
type PWM struct {
	Chip    string        `mapstructure:"chip"`
	Channel int           `mapstructure:"channel"`
	Period  time.Duration `mapstructure:"period"`
	Unit    time.Duration `mapstructure:"unit"`
}

// ADC points at the IIO channel behind the battery divider.
type ADC struct {
	Path string        `mapstructure:"path"`
	Poll time.Duration `mapstructure:"poll"`
}

// Serial is the status console tty.
type Serial struct {
	Port    string `mapstructure:"port"`
	Baud    uint   `mapstructure:"baud"`
	Backlog int    `mapstructure:"backlog"`
}

// Valve holds the servo duty range and ramp timing.
type Valve struct {
	OpenDuty   uint16        `mapstructure:"open_duty"`
	ClosedDuty uint16        `mapstructure:"closed_duty"`
	Step       uint16        `mapstructure:"step"`
	StepDelay  time.Duration `mapstructure:"step_delay"`
	Settle     time.Duration `mapstructure:"settle"`
}

// Battery holds the low threshold and sampling timing.
type Battery struct {
	LowThreshold uint16        `mapstructure:"low_threshold"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Settle       time.Duration `mapstructure:"settle"`
}

// Indicator holds the blink and alert pulse lengths.
type Indicator struct {
	Status  time.Duration `mapstructure:"status"`
	Battery time.Duration `mapstructure:"battery"`
	Alert   time.Duration `mapstructure:"alert"`
}

// Button holds the gesture thresholds.
type Button struct {
	MinShort time.Duration `mapstructure:"min_short"`
	MaxShort time.Duration `mapstructure:"max_short"`
	Long     time.Duration `mapstructure:"long"`
}

// Power holds the idle timeout and periodic wake schedule.
type Power struct {
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	WakePeriod  time.Duration `mapstructure:"wake_period"`
	Rollover    int           `mapstructure:"rollover"`
}

// Control holds the controller loop timing.
type Control struct {
	LoopTick     time.Duration `mapstructure:"loop_tick"`
	BootDelay    time.Duration `mapstructure:"boot_delay"`
	StartupPause time.Duration `mapstructure:"startup_pause"`
	ConfirmDelay time.Duration `mapstructure:"confirm_delay"`
	AlertPeriod  time.Duration `mapstructure:"alert_period"`
	TestPause    time.Duration `mapstructure:"test_pause"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
}

// Config is the full settings tree.
type Config struct {
	Target    string    `mapstructure:"target"`
	LogLevel  string    `mapstructure:"log_level"`
	GPIO      GPIO      `mapstructure:"gpio"`
	PWM       PWM       `mapstructure:"pwm"`
	ADC       ADC       `mapstructure:"adc"`
	Serial    Serial    `mapstructure:"serial"`
	Valve     Valve     `mapstructure:"valve"`
	Battery   Battery   `mapstructure:"battery"`
	Indicator Indicator `mapstructure:"indicator"`
	Button    Button    `mapstructure:"button"`
	Power     Power     `mapstructure:"power"`
	Control   Control   `mapstructure:"control"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("target", TargetLinux)
	v.SetDefault("log_level", "info")

	v.SetDefault("gpio.chip", "gpiochip0")
	v.SetDefault("gpio.sensor", 17)
	v.SetDefault("gpio.button", 27)
	v.SetDefault("gpio.drive", 22)
	v.SetDefault("gpio.status_led", 5)
	v.SetDefault("gpio.warning_led", 6)
	v.SetDefault("gpio.buzzer", 13)
	v.SetDefault("gpio.divider", 26)
	// The float switch pulls the line low when wet; the button pulls low
	// when pressed.
	v.SetDefault("gpio.sensor_active_low", true)
	v.SetDefault("gpio.button_active_low", true)
	v.SetDefault("gpio.debounce", "5ms")

	v.SetDefault("pwm.chip", "/sys/class/pwm/pwmchip0")
	v.SetDefault("pwm.channel", 0)
	v.SetDefault("pwm.period", "20ms")
	v.SetDefault("pwm.unit", "1us")

	v.SetDefault("adc.path", "/sys/bus/iio/devices/iio:device0/in_voltage0_raw")
	v.SetDefault("adc.poll", "1ms")

	v.SetDefault("serial.port", "/dev/ttyS0")
	v.SetDefault("serial.baud", 115200)
	v.SetDefault("serial.backlog", 64)

	vc := valve.DefaultConfig()
	v.SetDefault("valve.open_duty", vc.OpenDuty)
	v.SetDefault("valve.closed_duty", vc.ClosedDuty)
	v.SetDefault("valve.step", vc.Step)
	v.SetDefault("valve.step_delay", vc.StepDelay)
	v.SetDefault("valve.settle", vc.Settle)

	bc := battery.DefaultConfig()
	v.SetDefault("battery.low_threshold", bc.LowThreshold)
	v.SetDefault("battery.timeout", bc.Timeout)
	v.SetDefault("battery.settle", bc.Settle)

	id := indicator.DefaultDurations()
	v.SetDefault("indicator.status", id.Status)
	v.SetDefault("indicator.battery", id.Battery)
	v.SetDefault("indicator.alert", id.Alert)

	th := button.DefaultThresholds()
	v.SetDefault("button.min_short", th.MinShort)
	v.SetDefault("button.max_short", th.MaxShort)
	v.SetDefault("button.long", th.Long)

	pc := power.DefaultConfig()
	v.SetDefault("power.idle_timeout", pc.IdleTimeout)
	v.SetDefault("power.wake_period", pc.WakePeriod)
	v.SetDefault("power.rollover", pc.Rollover)

	cc := controller.DefaultConfig()
	v.SetDefault("control.loop_tick", "10ms")
	v.SetDefault("control.boot_delay", cc.BootDelay)
	v.SetDefault("control.startup_pause", cc.StartupPause)
	v.SetDefault("control.confirm_delay", cc.ConfirmDelay)
	v.SetDefault("control.alert_period", cc.AlertPeriod)
	v.SetDefault("control.test_pause", cc.TestPause)
	v.SetDefault("control.retry_delay", cc.RetryDelay)
}

// Load reads defaults, then the optional file at path, then the environment.
// overrides (command-line flags) win over all of them.
func Load(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	for k, val := range overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Target != TargetLinux && c.Target != TargetSim {
		add("target must be %q or %q, got %q", TargetLinux, TargetSim, c.Target)
	}

	b := c.Button
	if b.MinShort <= 0 {
		add("button.min_short must be positive")
	}
	if b.MinShort > b.MaxShort {
		add("button.min_short (%s) exceeds button.max_short (%s)", b.MinShort, b.MaxShort)
	}
	if b.MaxShort >= b.Long {
		add("button.max_short (%s) must be below button.long (%s)", b.MaxShort, b.Long)
	}

	if c.Valve.Step == 0 {
		add("valve.step must be positive")
	}
	if c.Valve.OpenDuty == c.Valve.ClosedDuty {
		add("valve.open_duty and valve.closed_duty must differ")
	}
	if c.Valve.StepDelay < 0 || c.Valve.Settle < 0 {
		add("valve delays must not be negative")
	}

	if c.Power.IdleTimeout <= 0 {
		add("power.idle_timeout must be positive")
	}
	if c.Power.WakePeriod <= 0 {
		add("power.wake_period must be positive")
	}
	if c.Power.Rollover <= 0 {
		add("power.rollover must be positive")
	}

	if c.Control.LoopTick <= 0 {
		add("control.loop_tick must be positive")
	}
	if c.Control.AlertPeriod <= 0 {
		add("control.alert_period must be positive")
	}
	if c.Battery.Timeout <= 0 {
		add("battery.timeout must be positive")
	}
	if c.Serial.Backlog < 0 {
		add("serial.backlog must not be negative")
	}

	if c.Target == TargetLinux {
		seen := map[int]string{}
		for name, pin := range c.pins() {
			if pin < 0 {
				add("gpio.%s must not be negative", name)
				continue
			}
			if other, dup := seen[pin]; dup {
				add("gpio.%s and gpio.%s share line %d", name, other, pin)
			}
			seen[pin] = name
		}
		if c.Serial.Baud == 0 {
			add("serial.baud must be positive")
		}
		if c.PWM.Unit <= 0 {
			add("pwm.unit must be positive")
		}
	}

	return errors.Join(errs...)
}

func (c *Config) pins() map[string]int {
	return map[string]int{
		"sensor":      c.GPIO.Sensor,
		"button":      c.GPIO.Button,
		"drive":       c.GPIO.Drive,
		"status_led":  c.GPIO.StatusLED,
		"warning_led": c.GPIO.WarningLED,
		"buzzer":      c.GPIO.Buzzer,
		"divider":     c.GPIO.Divider,
	}
}

// ValveConfig returns the actuator settings.
func (c *Config) ValveConfig() valve.Config {
	return valve.Config{
		OpenDuty:   c.Valve.OpenDuty,
		ClosedDuty: c.Valve.ClosedDuty,
		Step:       c.Valve.Step,
		StepDelay:  c.Valve.StepDelay,
		Settle:     c.Valve.Settle,
	}
}

// BatteryConfig returns the monitor settings.
func (c *Config) BatteryConfig() battery.Config {
	return battery.Config{
		LowThreshold: c.Battery.LowThreshold,
		Timeout:      c.Battery.Timeout,
		Settle:       c.Battery.Settle,
	}
}

// IndicatorDurations returns the pattern lengths.
func (c *Config) IndicatorDurations() indicator.Durations {
	return indicator.Durations{
		Status:  c.Indicator.Status,
		Battery: c.Indicator.Battery,
		Alert:   c.Indicator.Alert,
	}
}

// ControllerConfig returns the loop timing.
func (c *Config) ControllerConfig() controller.Config {
	return controller.Config{
		BootDelay:    c.Control.BootDelay,
		StartupPause: c.Control.StartupPause,
		ConfirmDelay: c.Control.ConfirmDelay,
		AlertPeriod:  c.Control.AlertPeriod,
		TestPause:    c.Control.TestPause,
		RetryDelay:   c.Control.RetryDelay,
		Button: button.Thresholds{
			MinShort: c.Button.MinShort,
			MaxShort: c.Button.MaxShort,
			Long:     c.Button.Long,
		},
		Power: power.Config{
			IdleTimeout: c.Power.IdleTimeout,
			WakePeriod:  c.Power.WakePeriod,
			Rollover:    c.Power.Rollover,
		},
	}
}

// StatusConfig returns the values shown in the status snapshot.
func (c *Config) StatusConfig() status.Config {
	return status.Config{
		Target:        c.Target,
		IdleTimeoutMs: c.Power.IdleTimeout.Milliseconds(),
		AlertPeriodMs: c.Control.AlertPeriod.Milliseconds(),
		ConfirmMs:     c.Control.ConfirmDelay.Milliseconds(),
		LowThreshold:  c.Battery.LowThreshold,
	}
}
