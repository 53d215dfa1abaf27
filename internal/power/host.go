package power

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Host is Hardware for a Linux host. Low-power mode blocks the loop
// goroutine on the event mailbox; the periodic wake source is a ticker.
// An attached loop ticker is stopped while suspended.
type Host struct {
	wake <-chan struct{}
	post func(time.Time)

	mu         sync.Mutex
	ticker     *time.Ticker
	period     time.Duration
	loop       *time.Ticker
	loopPeriod time.Duration
}

// NewHost returns a Host that waits on wake and posts periodic wakes
// through post.
func NewHost(wake <-chan struct{}, post func(time.Time), period time.Duration) *Host {
	return &Host{
		wake:   wake,
		post:   post,
		ticker: time.NewTicker(period),
		period: period,
	}
}

// AttachLoop hands the controller's loop ticker to the host so SuspendTick
// and ResumeTick can stop and restart it.
func (h *Host) AttachLoop(t *time.Ticker, period time.Duration) {
	h.mu.Lock()
	h.loop = t
	h.loopPeriod = period
	h.mu.Unlock()
}

// SuspendTick stops the loop ticker.
func (h *Host) SuspendTick() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loop != nil {
		h.loop.Stop()
	}
}

// ResumeTick restarts the loop ticker.
func (h *Host) ResumeTick() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loop != nil {
		h.loop.Reset(h.loopPeriod)
	}
}

// ArmWakeTimer sets the periodic wake interval. The running ticker is only
// reset when the period changes, so repeated sleeps keep the cadence.
func (h *Host) ArmWakeTimer(period time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if period <= 0 || period == h.period {
		return
	}
	h.period = period
	h.ticker.Reset(period)
}

// EnterLowPowerMode blocks until an event is posted or ctx is done.
func (h *Host) EnterLowPowerMode(ctx context.Context) error {
	select {
	case <-h.wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunPeriodic posts a periodic wake on every tick until ctx is done.
func (h *Host) RunPeriodic(ctx context.Context) error {
	defer h.ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-h.ticker.C:
			log.Debug().Time("at", t).Msg("power: periodic wake")
			h.post(t)
		}
	}
}
