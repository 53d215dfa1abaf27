package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/flood-guard/internal/board"
	"github.com/sweeney/flood-guard/internal/clock"
	"github.com/sweeney/flood-guard/internal/config"
	"github.com/sweeney/flood-guard/internal/controller"
	"github.com/sweeney/flood-guard/internal/event"
	"github.com/sweeney/flood-guard/internal/power"
	"github.com/sweeney/flood-guard/internal/status"
)

const loopTick = 10 * time.Millisecond

type appliance struct {
	t       *testing.T
	clk     *clock.Sim
	board   *board.Board
	mb      *event.Mailbox
	hw      *power.Fake
	tracker *status.Tracker
	ctrl    *controller.Controller
	out     *bytes.Buffer
}

// newAppliance builds the sim board around a simulated clock, as
// cmd/flood-guard does for -target sim.
func newAppliance(t *testing.T, overrides map[string]any) *appliance {
	t.Helper()
	if overrides == nil {
		overrides = map[string]any{}
	}
	overrides["target"] = config.TargetSim
	cfg, err := config.Load("", overrides)
	require.NoError(t, err)

	a := &appliance{
		t:   t,
		clk: clock.NewSim(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)),
		mb:  event.NewMailbox(),
		hw:  power.NewFake(),
		out: &bytes.Buffer{},
	}
	a.board = board.OpenSim(a.clk, a.out, 0)
	a.board.Watch(a.mb)
	a.tracker = status.NewTracker(a.clk.Now, "integration", cfg.StatusConfig())
	a.ctrl = a.board.Controller(cfg, a.mb, a.hw, a.tracker)
	return a
}

func (a *appliance) run(d time.Duration) {
	a.t.Helper()
	end := a.clk.Now().Add(d)
	for a.clk.Now().Before(end) {
		a.clk.Advance(loopTick)
		require.NoError(a.t, a.ctrl.Step(context.Background()))
	}
}

func (a *appliance) lines() []string {
	s := strings.TrimSuffix(a.out.String(), "\r\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\r\n")
}

func (a *appliance) press(d time.Duration) {
	a.board.Sim.Button.Drive(true, a.clk.Now())
	a.clk.Advance(d)
	a.board.Sim.Button.Drive(false, a.clk.Now())
}

// TestIntegrationFloodCycle walks boot, a flood, the reset and the first sleep.
func TestIntegrationFloodCycle(t *testing.T) {
	a := newAppliance(t, nil)
	sim := a.board.Sim

	a.ctrl.Boot()
	assert.Equal(t, []string{"flood guard", "valve open"}, a.lines())
	assert.Equal(t, uint16(900), sim.PWM.Duties[len(sim.PWM.Duties)-1])

	sim.Sensor.Drive(true, a.clk.Now())
	a.run(12 * time.Second)

	snap := a.tracker.Snapshot()
	assert.Equal(t, "FLOOD_ACTIVE", snap.State)
	assert.Equal(t, "CLOSED", snap.Valve)
	assert.GreaterOrEqual(t, snap.Alerts, 3, "startup alert plus the flood cadence")
	assert.Equal(t, 0, a.hw.LowPower)
	assert.Equal(t, uint16(1800), sim.PWM.Duties[len(sim.PWM.Duties)-1])

	// Operator override while still wet does nothing.
	a.press(100 * time.Millisecond)
	a.run(loopTick)
	assert.True(t, a.ctrl.Flooded())

	sim.Sensor.Drive(false, a.clk.Now())
	a.run(time.Second)
	assert.True(t, a.ctrl.Flooded(), "drying alone does not clear the flood")

	a.press(100 * time.Millisecond)
	a.run(loopTick)
	assert.False(t, a.ctrl.Flooded())
	assert.Equal(t, "OPEN", a.tracker.Snapshot().Valve)

	a.run(6 * time.Second)
	assert.Equal(t, 1, a.hw.Suspends, "one sleep entry; later passes re-enter low power quietly")

	assert.Equal(t, []string{
		"flood guard",
		"valve open",
		"flood",
		"valve closed",
		"valve open",
		"battery 3100",
		"entering sleep",
	}, a.lines())
}

// TestIntegrationWakeSchedule checks the hourly battery check driven by
// periodic wakes.
func TestIntegrationWakeSchedule(t *testing.T) {
	a := newAppliance(t, map[string]any{"power.rollover": 3})
	a.ctrl.Boot()
	a.run(5 * time.Second)
	require.Equal(t, "SLEEPING", a.tracker.Snapshot().Power)
	a.out.Reset()

	for i := 0; i < 3; i++ {
		a.clk.Advance(time.Minute)
		a.mb.PostPeriodicWake(a.clk.Now())
		a.run(5 * time.Second)
	}

	assert.Equal(t, []string{
		"entering sleep",
		"entering sleep",
		"battery 3100",
		"entering sleep",
	}, a.lines())
	assert.Equal(t, "PERIODIC", a.tracker.Snapshot().WakeReason)
	assert.Equal(t, 0, a.tracker.Snapshot().WakeCount)
}

// TestIntegrationLowBattery checks the low reading line and blink.
func TestIntegrationLowBattery(t *testing.T) {
	a := newAppliance(t, nil)
	a.board.Sim.ADC.Push(2700)
	a.ctrl.Boot()
	buzz := a.board.Sim.Buzzer.Pulses()

	a.run(5 * time.Second)

	assert.Contains(t, a.lines(), "battery 2700 low")
	assert.Equal(t, buzz+1, a.board.Sim.Buzzer.Pulses())
	assert.True(t, a.tracker.Snapshot().Battery.Low)
}

// TestIntegrationSelfTest runs the long-press self test from Monitoring.
func TestIntegrationSelfTest(t *testing.T) {
	a := newAppliance(t, nil)
	a.ctrl.Boot()
	a.out.Reset()

	a.press(2500 * time.Millisecond)
	a.run(loopTick)

	assert.Equal(t, []string{"self test", "self test done"}, a.lines())
	assert.Equal(t, "OPEN", a.tracker.Snapshot().Valve)
	assert.Equal(t, 3, a.tracker.Snapshot().ValveCycles)
}

// TestIntegrationBootWet starts with water already on the floor.
func TestIntegrationBootWet(t *testing.T) {
	a := newAppliance(t, nil)
	a.board.Sim.Sensor.Set(true)

	a.ctrl.Boot()
	a.run(time.Minute)

	assert.Equal(t, []string{"flood guard", "flood", "valve closed"}, a.lines())
	assert.Equal(t, 0, a.hw.LowPower)
	assert.False(t, a.board.Sim.Drive.On(), "motor supply must be off between motions")
}

// TestIntegrationValveFaultConverges shows the valve reaching Closed once a
// transient PWM fault clears.
func TestIntegrationValveFaultConverges(t *testing.T) {
	a := newAppliance(t, nil)
	a.ctrl.Boot()

	a.board.Sim.PWM.DutyError = errors.New("timer fault")
	a.board.Sim.Sensor.Drive(true, a.clk.Now())
	a.run(3 * time.Second)
	assert.Equal(t, "MOVING", a.tracker.Snapshot().Valve)

	a.board.Sim.PWM.DutyError = nil
	a.run(3 * time.Second)
	assert.Equal(t, "CLOSED", a.tracker.Snapshot().Valve)
}

// TestIntegrationStatusJSON renders the tracker the way the command logs it.
func TestIntegrationStatusJSON(t *testing.T) {
	a := newAppliance(t, nil)
	a.ctrl.Boot()
	a.run(time.Second)

	var got status.StatusJSON
	require.NoError(t, json.Unmarshal(status.FormatStatusEvent(a.tracker.Snapshot(), "SHUTDOWN", "SIGTERM"), &got))

	assert.Equal(t, "SHUTDOWN", got.Status.Event)
	assert.Equal(t, "integration", got.Status.Session)
	assert.Equal(t, "MONITORING", got.Status.State)
	assert.Equal(t, "OPEN", got.Status.Valve)
	assert.Equal(t, "sim", got.Status.Config.Target)
	assert.Equal(t, int64(5000), got.Status.Config.IdleTimeoutMs)
}
