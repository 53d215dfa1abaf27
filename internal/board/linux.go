package board

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/flood-guard/internal/adc"
	"github.com/sweeney/flood-guard/internal/clock"
	"github.com/sweeney/flood-guard/internal/config"
	"github.com/sweeney/flood-guard/internal/gpio"
	"github.com/sweeney/flood-guard/internal/pwm"
	"github.com/sweeney/flood-guard/internal/serial"
)

func openLinux(cfg *config.Config) (_ *Board, err error) {
	b := &Board{Clock: clock.Real{}}
	defer func() {
		if err != nil {
			if cerr := b.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("board: cleanup after failed open")
			}
		}
	}()

	chip, err := gpio.NewChip(cfg.GPIO.Chip, time.Now)
	if err != nil {
		return nil, fmt.Errorf("init gpio: %w", err)
	}
	b.closers = append(b.closers, chip.Close)

	g := cfg.GPIO
	if b.Sensor, err = chip.Input(g.Sensor, g.SensorActiveLow, gpio.PullUp, g.Debounce); err != nil {
		return nil, fmt.Errorf("flood sensor: %w", err)
	}
	if b.Button, err = chip.Input(g.Button, g.ButtonActiveLow, gpio.PullUp, g.Debounce); err != nil {
		return nil, fmt.Errorf("button: %w", err)
	}

	outputs := []struct {
		name   string
		offset int
		dst    *gpio.Output
	}{
		{"valve drive", g.Drive, &b.Drive},
		{"status led", g.StatusLED, &b.StatusLED},
		{"warning led", g.WarningLED, &b.WarningLED},
		{"buzzer", g.Buzzer, &b.Buzzer},
		{"battery divider", g.Divider, &b.Divider},
	}
	for _, o := range outputs {
		out, err := chip.Output(o.offset, false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", o.name, err)
		}
		*o.dst = out
	}

	ch, err := pwm.OpenSysfs(cfg.PWM.Chip, cfg.PWM.Channel, cfg.PWM.Period, cfg.PWM.Unit)
	if err != nil {
		return nil, fmt.Errorf("init pwm: %w", err)
	}
	b.PWM = ch
	b.closers = append(b.closers, ch.Stop)

	b.ADC = adc.NewIIO(cfg.ADC.Path, cfg.ADC.Poll)

	port, err := serial.Open(cfg.Serial.Port, cfg.Serial.Baud, cfg.Serial.Backlog)
	if err != nil {
		return nil, err
	}
	b.Console = port
	b.closers = append(b.closers, port.Close)

	log.Info().
		Str("chip", g.Chip).
		Int("sensor", g.Sensor).
		Int("button", g.Button).
		Str("serial", cfg.Serial.Port).
		Msg("board: linux target ready")
	return b, nil
}
