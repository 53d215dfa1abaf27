package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string      `json:"event,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	Session       string      `json:"session"`
	State         string      `json:"state"`
	Flood         bool        `json:"flood"`
	Valve         string      `json:"valve"`
	ValveCycles   int         `json:"valve_cycles"`
	Power         string      `json:"power"`
	WakeReason    string      `json:"wake_reason"`
	WakeCount     int         `json:"wake_count"`
	Alerts        int         `json:"alerts"`
	LastAlert     string      `json:"last_alert,omitempty"`
	Battery       BatteryJSON `json:"battery"`
	Booted        bool        `json:"booted"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	Config        ConfigJSON  `json:"config"`
}

// BatteryJSON is the JSON representation of the last battery sample.
type BatteryJSON struct {
	Voltage   uint16 `json:"voltage"`
	Low       bool   `json:"low"`
	SampledAt string `json:"sampled_at,omitempty"`
}

// ConfigJSON is the JSON representation of controller config.
type ConfigJSON struct {
	Target        string `json:"target"`
	IdleTimeoutMs int64  `json:"idle_timeout_ms"`
	AlertPeriodMs int64  `json:"alert_period_ms"`
	ConfirmMs     int64  `json:"confirm_ms"`
	LowThreshold  uint16 `json:"low_threshold"`
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Session:     snap.Session,
		State:       orUnknown(snap.State),
		Flood:       snap.Flood,
		Valve:       orUnknown(snap.Valve),
		ValveCycles: snap.ValveCycles,
		Power:       orUnknown(snap.Power),
		WakeReason:  orUnknown(snap.WakeReason),
		WakeCount:   snap.WakeCount,
		Alerts:      snap.Alerts,
		LastAlert:   formatTime(snap.LastAlertAt),
		Battery: BatteryJSON{
			Voltage:   snap.Battery.Voltage,
			Low:       snap.Battery.Low,
			SampledAt: formatTime(snap.Battery.SampledAt),
		},
		Booted:        snap.Booted,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Config: ConfigJSON{
			Target:        snap.Config.Target,
			IdleTimeoutMs: snap.Config.IdleTimeoutMs,
			AlertPeriodMs: snap.Config.AlertPeriodMs,
			ConfirmMs:     snap.Config.ConfirmMs,
			LowThreshold:  snap.Config.LowThreshold,
		},
	}
}

// FormatStatusEvent returns compact JSON status tagged with a lifecycle
// event (STARTUP, SHUTDOWN).
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
