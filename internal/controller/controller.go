// Package controller coordinates the flood guard: it owns all appliance
// state, drains the event mailbox once per loop pass and drives the valve,
// indicators, battery monitor and power scheduler from the loop goroutine.
package controller

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/flood-guard/internal/battery"
	"github.com/sweeney/flood-guard/internal/button"
	"github.com/sweeney/flood-guard/internal/clock"
	"github.com/sweeney/flood-guard/internal/event"
	"github.com/sweeney/flood-guard/internal/gpio"
	"github.com/sweeney/flood-guard/internal/power"
	"github.com/sweeney/flood-guard/internal/serial"
	"github.com/sweeney/flood-guard/internal/status"
	"github.com/sweeney/flood-guard/internal/valve"
)

// Mode is the controller's top-level state.
type Mode int

const (
	Init Mode = iota
	Monitoring
	FloodActive
	TestMode
)

func (m Mode) String() string {
	switch m {
	case Monitoring:
		return "MONITORING"
	case FloodActive:
		return "FLOOD_ACTIVE"
	case TestMode:
		return "TEST_MODE"
	default:
		return "INIT"
	}
}

// Console lines, one per transition.
const (
	LineBanner       = "flood guard"
	LineFlood        = "flood"
	LineValveClosed  = "valve closed"
	LineValveOpen    = "valve open"
	LineSelfTest     = "self test"
	LineSelfTestDone = "self test done"
	LineSleep        = "entering sleep"
)

// Valve is the shutoff valve actuator.
type Valve interface {
	Open() error
	Close() error
	Position() valve.Position
	Cycles() int
}

// Indicators plays the LED and buzzer patterns.
type Indicators interface {
	StatusBlink() error
	BatteryBlink() error
	Alert() error
}

// Battery samples the supply voltage.
type Battery interface {
	Sample() (battery.Reading, error)
	State() battery.State
}

// Config holds the loop timing.
type Config struct {
	BootDelay    time.Duration // before the boot actuation
	StartupPause time.Duration // between boot actuation and the startup alert
	ConfirmDelay time.Duration // wet edge to confirming re-read
	AlertPeriod  time.Duration // alert cadence while flooded
	TestPause    time.Duration // between alert and reopen in the self test
	RetryDelay   time.Duration // after a failed valve motion
	Button       button.Thresholds
	Power        power.Config
}

// DefaultConfig returns the stock timing.
func DefaultConfig() Config {
	return Config{
		BootDelay:    100 * time.Millisecond,
		StartupPause: 500 * time.Millisecond,
		ConfirmDelay: 100 * time.Millisecond,
		AlertPeriod:  5 * time.Second,
		TestPause:    500 * time.Millisecond,
		RetryDelay:   time.Second,
		Button:       button.DefaultThresholds(),
		Power:        power.DefaultConfig(),
	}
}

// Deps are the collaborators. Tracker may be nil.
type Deps struct {
	Clock      clock.Clock
	Sensor     gpio.Input // true when wet
	Button     gpio.Input // true while pressed
	Valve      Valve
	Indicators Indicators
	Battery    Battery
	Console    serial.Console
	Mailbox    *event.Mailbox
	Power      power.Hardware
	Tracker    *status.Tracker
}

// Controller is the flood guard state machine. All methods must be called
// from a single goroutine.
type Controller struct {
	d     Deps
	cfg   Config
	btn   *button.Classifier
	sched *power.Scheduler

	mode           Mode
	flag           bool
	confirmPending bool
	pendingSince   time.Time
	lastAlertAt    time.Time
	nextValveTry   time.Time
	alerts         int
}

// New creates a Controller in Init.
func New(d Deps, cfg Config) *Controller {
	return &Controller{
		d:     d,
		cfg:   cfg,
		btn:   button.NewClassifier(cfg.Button),
		sched: power.NewScheduler(d.Power, cfg.Power, d.Clock.Now()),
	}
}

// Boot reads the sensor and brings the valve to the matching position, then
// plays one startup alert. A sensor read failure is treated as wet.
func (c *Controller) Boot() {
	c.d.Console.Line(LineBanner)

	wet, err := c.d.Sensor.Level()
	if err != nil {
		log.Error().Err(err).Msg("boot: sensor read failed, assuming wet")
		wet = true
	}
	log.Info().Bool("wet", wet).Msg("boot: sensor read")

	c.d.Clock.Sleep(c.cfg.BootDelay)
	if wet {
		c.flag = true
		c.mode = FloodActive
		c.d.Console.Line(LineFlood)
		c.closeValve(LineValveClosed)
	} else {
		c.mode = Monitoring
		c.openValve(LineValveOpen)
	}

	c.d.Clock.Sleep(c.cfg.StartupPause)
	c.alert()
	c.sched.Activity(c.d.Clock.Now())
	c.publish()
}

// Run boots, then calls Step on every tick until ctx is done. The tick is
// suspended while asleep, so after a wake Run steps straight away until the
// scheduler is awake again.
func (c *Controller) Run(ctx context.Context, tick <-chan time.Time) error {
	c.Boot()
	for {
		select {
		case <-ctx.Done():
			log.Info().Stringer("mode", c.mode).Msg("controller: stopping")
			return nil
		case <-tick:
		}
		for {
			if err := c.Step(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error().Err(err).Msg("controller: step failed")
				break
			}
			if c.sched.State() != power.Sleeping || ctx.Err() != nil {
				break
			}
		}
	}
}

// Step is one loop pass.
func (c *Controller) Step(ctx context.Context) error {
	defer c.publish()

	batch := c.d.Mailbox.Drain()
	if c.sched.State() == power.Sleeping && batch.Empty() {
		// Woken with nothing posted.
		return c.sched.Sleep(ctx)
	}
	c.absorb(batch)

	c.confirmFlood()
	c.handleGesture(c.btn.Take())

	if c.mode == FloodActive {
		c.serviceFlood()
	} else if c.mode == Monitoring {
		c.serviceMonitoring()
	}

	if c.sched.ShouldSleep(c.d.Clock.Now(), c.blockers()) {
		return c.sleep(ctx)
	}
	return nil
}

type buttonEdge struct {
	at      time.Time
	pressed bool
}

// absorb applies a drained batch. Button edges are replayed oldest first so
// a press and release landing in one batch still classify.
func (c *Controller) absorb(b event.Batch) {
	if f := b.Flood; f != nil {
		c.sched.Notify(f.At, power.ReasonFloodEdge)
		if f.Level && !c.flag && !c.confirmPending {
			c.confirmPending = true
			c.pendingSince = f.At
			log.Info().Time("at", f.At).Msg("flood: wet edge, confirming")
		}
	}

	var edges []buttonEdge
	if b.Press != nil {
		edges = append(edges, buttonEdge{at: *b.Press, pressed: true})
	}
	if b.Release != nil {
		edges = append(edges, buttonEdge{at: *b.Release})
	}
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].at.Before(edges[j].at) })
	for _, e := range edges {
		c.sched.Notify(e.at, power.ReasonButton)
		if e.pressed {
			c.btn.Press(e.at)
		} else if g := c.btn.Release(e.at); g != button.None {
			log.Info().Stringer("gesture", g).Msg("button: gesture")
		}
	}

	for i := 0; i < b.Periodic; i++ {
		c.sched.Notify(b.LastPeriodic, power.ReasonPeriodic)
	}
}

func (c *Controller) handleGesture(g button.Gesture) {
	switch g {
	case button.Long:
		if c.flag || c.confirmPending || c.mode != Monitoring {
			log.Debug().Msg("button: self test ignored while flooded")
			return
		}
		c.selfTest()
	case button.Short:
		if !c.flag {
			log.Debug().Msg("button: reset ignored, no flood")
			return
		}
		c.reset()
	}
}

// confirmFlood re-reads the sensor once ConfirmDelay has passed since the
// wet edge. A read failure counts as wet.
func (c *Controller) confirmFlood() {
	if !c.confirmPending {
		return
	}
	now := c.d.Clock.Now()
	if now.Sub(c.pendingSince) < c.cfg.ConfirmDelay {
		return
	}
	c.confirmPending = false

	wet, err := c.d.Sensor.Level()
	if err != nil {
		log.Error().Err(err).Msg("flood: sensor re-read failed, assuming wet")
		wet = true
	}
	if !wet {
		log.Info().Msg("flood: edge not confirmed")
		return
	}

	c.flag = true
	c.mode = FloodActive
	c.d.Console.Line(LineFlood)
	log.Warn().Msg("flood: confirmed")
}

func (c *Controller) serviceFlood() {
	if c.d.Valve.Position() != valve.Closed {
		c.closeValve(LineValveClosed)
		return
	}
	now := c.d.Clock.Now()
	if now.Sub(c.lastAlertAt) > c.cfg.AlertPeriod {
		c.alert()
	}
}

// serviceMonitoring retries an open that failed earlier.
func (c *Controller) serviceMonitoring() {
	if c.d.Valve.Position() == valve.Moving {
		c.openValve(LineValveOpen)
	}
}

func (c *Controller) blockers() power.Blockers {
	return power.Blockers{
		Flood:          c.flag,
		ConfirmPending: c.confirmPending,
		GesturePending: c.btn.Pending(),
		Pressed:        c.btn.Pressed(),
	}
}

// Snapshot returns the state for the status tracker.
func (c *Controller) Snapshot() status.Controller {
	b := c.d.Battery.State()
	return status.Controller{
		State:       c.mode.String(),
		Flood:       c.flag,
		Valve:       c.d.Valve.Position().String(),
		ValveCycles: c.d.Valve.Cycles(),
		Power:       c.sched.State().String(),
		WakeReason:  c.sched.WakeReason().String(),
		WakeCount:   c.sched.WakeCount(),
		Alerts:      c.alerts,
		LastAlertAt: c.lastAlertAt,
		Battery: status.Battery{
			Voltage:   b.LastVoltage,
			Low:       b.Low,
			SampledAt: b.LastSampleAt,
		},
	}
}

func (c *Controller) publish() {
	if c.d.Tracker != nil {
		c.d.Tracker.Update(c.Snapshot())
	}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// Flooded reports the flood flag.
func (c *Controller) Flooded() bool { return c.flag }

// Power returns the scheduler.
func (c *Controller) Power() *power.Scheduler { return c.sched }
