package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewTracker(t *testing.T) {
	cfg := Config{Target: "sim", IdleTimeoutMs: 5000, AlertPeriodMs: 5000, ConfirmMs: 100, LowThreshold: 2950}
	tr := NewTracker(fixedNow(start), "abc", cfg)

	snap := tr.Snapshot()
	assert.Equal(t, start, snap.StartTime)
	assert.Equal(t, "abc", snap.Session)
	assert.Equal(t, cfg, snap.Config)
	assert.False(t, snap.Booted)
}

func TestUpdate(t *testing.T) {
	tr := NewTracker(fixedNow(start), "abc", Config{})
	tr.Update(Controller{State: "FLOOD_ACTIVE", Flood: true, Valve: "CLOSED", Alerts: 3})

	snap := tr.Snapshot()
	assert.True(t, snap.Booted)
	assert.True(t, snap.Flood)
	assert.Equal(t, "CLOSED", snap.Valve)
	assert.Equal(t, 3, snap.Alerts)
}

func TestUptime(t *testing.T) {
	now := start
	tr := NewTracker(func() time.Time { return now }, "abc", Config{})
	now = start.Add(90 * time.Second)

	assert.Equal(t, 90*time.Second, tr.Snapshot().Uptime())
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now, "abc", Config{})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			tr.Update(Controller{WakeCount: i})
		}(i)
		go func() {
			defer wg.Done()
			_ = tr.Snapshot()
		}()
	}
	wg.Wait()
}

func TestStatusEventFields(t *testing.T) {
	tr := NewTracker(fixedNow(start), "session-1", Config{Target: "linux", LowThreshold: 2950})
	tr.Update(Controller{
		State:   "MONITORING",
		Valve:   "OPEN",
		Power:   "AWAKE",
		Battery: Battery{Voltage: 3050, SampledAt: start},
	})

	var got StatusJSON
	require.NoError(t, json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "", ""), &got))

	assert.Equal(t, "session-1", got.Status.Session)
	assert.Equal(t, "MONITORING", got.Status.State)
	assert.Equal(t, "OPEN", got.Status.Valve)
	assert.Equal(t, "UNKNOWN", got.Status.WakeReason)
	assert.Equal(t, uint16(3050), got.Status.Battery.Voltage)
	assert.Equal(t, "2026-01-01T00:00:00Z", got.Status.Battery.SampledAt)
	assert.Empty(t, got.Status.LastAlert)
	assert.Empty(t, got.Status.Event)
	assert.Equal(t, "linux", got.Status.Config.Target)
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(fixedNow(start), "session-1", Config{})

	var got StatusJSON
	require.NoError(t, json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &got))

	assert.Equal(t, "SHUTDOWN", got.Status.Event)
	assert.Equal(t, "SIGTERM", got.Status.Reason)
	assert.Equal(t, "UNKNOWN", got.Status.State)
	assert.False(t, got.Status.Booted)
}
