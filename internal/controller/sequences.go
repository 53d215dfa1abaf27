package controller

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/flood-guard/internal/valve"
)

// closeValve closes unless a recent failure is still backing off. line is
// printed on success; empty prints nothing.
func (c *Controller) closeValve(line string) bool {
	if c.d.Clock.Now().Before(c.nextValveTry) {
		return false
	}
	if err := c.d.Valve.Close(); err != nil {
		log.Error().Err(err).Msg("valve: close failed, will retry")
		c.nextValveTry = c.d.Clock.Now().Add(c.cfg.RetryDelay)
		return false
	}
	if line != "" {
		c.d.Console.Line(line)
	}
	return true
}

func (c *Controller) openValve(line string) bool {
	if c.d.Clock.Now().Before(c.nextValveTry) {
		return false
	}
	if err := c.d.Valve.Open(); err != nil {
		log.Error().Err(err).Msg("valve: open failed, will retry")
		c.nextValveTry = c.d.Clock.Now().Add(c.cfg.RetryDelay)
		return false
	}
	if line != "" {
		c.d.Console.Line(line)
	}
	return true
}

// alert stamps lastAlertAt before the blocking pulse so the cadence is
// measured start to start.
func (c *Controller) alert() {
	c.lastAlertAt = c.d.Clock.Now()
	c.alerts++
	if err := c.d.Indicators.Alert(); err != nil {
		log.Error().Err(err).Msg("indicator: alert failed")
	}
}

func (c *Controller) statusBlink() {
	if err := c.d.Indicators.StatusBlink(); err != nil {
		log.Error().Err(err).Msg("indicator: status blink failed")
	}
}

// reset clears the flood only when the sensor reads dry and the button line
// reads released. Read failures count as wet and pressed.
func (c *Controller) reset() {
	wet, err := c.d.Sensor.Level()
	if err != nil {
		log.Error().Err(err).Msg("reset: sensor read failed")
		wet = true
	}
	pressed, err := c.d.Button.Level()
	if err != nil {
		log.Error().Err(err).Msg("reset: button read failed")
		pressed = true
	}
	if wet || pressed {
		log.Info().Bool("wet", wet).Bool("pressed", pressed).Msg("reset: refused")
		return
	}

	if c.d.Valve.Position() != valve.Open {
		c.nextValveTry = c.d.Clock.Now()
		if !c.openValve("") {
			return
		}
	}
	c.flag = false
	c.mode = Monitoring
	c.d.Console.Line(LineValveOpen)
	c.sched.Activity(c.d.Clock.Now())
	log.Info().Msg("reset: flood cleared")
}

// selfTest exercises the valve and indicators, then returns to Monitoring
// with the valve open.
func (c *Controller) selfTest() {
	c.mode = TestMode
	c.publish()
	c.d.Console.Line(LineSelfTest)
	log.Info().Msg("self test: start")

	c.statusBlink()
	c.nextValveTry = c.d.Clock.Now()
	c.closeValve("")
	c.alert()
	c.d.Clock.Sleep(c.cfg.TestPause)
	c.statusBlink()
	c.nextValveTry = c.d.Clock.Now()
	c.openValve("")

	c.mode = Monitoring
	c.d.Console.Line(LineSelfTestDone)
	c.sched.Activity(c.d.Clock.Now())
	log.Info().Stringer("valve", c.d.Valve.Position()).Msg("self test: done")
}

// checkBattery samples the battery and reports it. On a failed sample the
// previous reading is reported; with no previous reading nothing is.
func (c *Controller) checkBattery() {
	r, err := c.d.Battery.Sample()
	if err != nil {
		log.Warn().Err(err).Uint16("stale", r.Value).Msg("battery: sample failed")
		if r.Value == 0 {
			return
		}
	}

	line := fmt.Sprintf("battery %d", r.Value)
	if r.Low {
		line += " low"
	}
	c.d.Console.Line(line)
	log.Info().Uint16("reading", r.Value).Bool("low", r.Low).Bool("stale", r.Stale).Msg("battery: checked")

	if r.Low {
		if err := c.d.Indicators.BatteryBlink(); err != nil {
			log.Error().Err(err).Msg("indicator: battery blink failed")
		}
	}
}

func (c *Controller) sleep(ctx context.Context) error {
	c.statusBlink()
	if c.sched.BatteryDue() {
		c.checkBattery()
		c.sched.ClearBatteryDue()
	}
	c.d.Console.Line(LineSleep)
	log.Debug().Msg("power: entering sleep")
	c.publish()
	return c.sched.Sleep(ctx)
}
