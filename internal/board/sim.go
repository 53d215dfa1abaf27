package board

import (
	"io"
	"os"

	"github.com/sweeney/flood-guard/internal/adc"
	"github.com/sweeney/flood-guard/internal/clock"
	"github.com/sweeney/flood-guard/internal/gpio"
	"github.com/sweeney/flood-guard/internal/pwm"
	"github.com/sweeney/flood-guard/internal/serial"
)

// Sim exposes the fakes behind a sim board.
type Sim struct {
	Sensor     *gpio.FakeInput
	Button     *gpio.FakeInput
	Drive      *gpio.FakeOutput
	StatusLED  *gpio.FakeOutput
	WarningLED *gpio.FakeOutput
	Buzzer     *gpio.FakeOutput
	Divider    *gpio.FakeOutput
	PWM        *pwm.Fake
	ADC        *adc.Fake
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// OpenSim builds a board of in-memory fakes: a dry sensor, a released
// button and a healthy battery. Console lines go to console, or stdout if
// nil. backlog <= 0 selects serial.DefaultBacklog.
func OpenSim(clk clock.Clock, console io.Writer, backlog int) *Board {
	if console == nil {
		console = os.Stdout
	}
	s := &Sim{
		Sensor:     gpio.NewFakeInput(false),
		Button:     gpio.NewFakeInput(false),
		Drive:      gpio.NewFakeOutput(),
		StatusLED:  gpio.NewFakeOutput(),
		WarningLED: gpio.NewFakeOutput(),
		Buzzer:     gpio.NewFakeOutput(),
		Divider:    gpio.NewFakeOutput(),
		PWM:        pwm.NewFake(),
		ADC:        adc.NewFake(3100),
	}
	return &Board{
		Clock:      clk,
		Sensor:     s.Sensor,
		Button:     s.Button,
		Drive:      s.Drive,
		StatusLED:  s.StatusLED,
		WarningLED: s.WarningLED,
		Buzzer:     s.Buzzer,
		Divider:    s.Divider,
		PWM:        s.PWM,
		ADC:        s.ADC,
		Console:    serial.NewPort(nopCloser{console}, backlog),
		Sim:        s,
	}
}
