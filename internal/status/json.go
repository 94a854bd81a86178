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
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	State         string     `json:"state"`
	RPM           int        `json:"rpm"`
	TargetRPM     int        `json:"target_rpm"`
	Command       int        `json:"command_us"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of activity counters.
type CountsJSON struct {
	ControlTicks     int   `json:"control_ticks"`
	CommandsAccepted int   `json:"commands_accepted"`
	CommandsRejected int   `json:"commands_rejected"`
	SoftStartsRun    int   `json:"soft_starts_run"`
	PulsesTotal      int64 `json:"pulses_total"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	ControlMs    int64  `json:"control_ms"`
	StatusMs     int64  `json:"status_ms"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
	GPIOChip     string `json:"gpio_chip"`
	PulsePin     int    `json:"pulse_pin"`
	PWMPin       string `json:"pwm_pin"`
	PulsesPerRev int    `json:"pulses_per_rev"`
	Neutral      int    `json:"neutral_us"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		State:         string(snap.State),
		RPM:           snap.RPM,
		TargetRPM:     snap.TargetRPM,
		Command:       snap.Command,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			ControlTicks:     snap.Counts.ControlTicks,
			CommandsAccepted: snap.Counts.CommandsAccepted,
			CommandsRejected: snap.Counts.CommandsRejected,
			SoftStartsRun:    snap.Counts.SoftStartsRun,
			PulsesTotal:      snap.PulsesTotal,
		},
		Config: ConfigJSON{
			ControlMs:    snap.Config.ControlMs,
			StatusMs:     snap.Config.StatusMs,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
			GPIOChip:     snap.Config.GPIOChip,
			PulsePin:     snap.Config.PulsePin,
			PWMPin:       snap.Config.PWMPin,
			PulsesPerRev: snap.Config.PulsesPerRev,
			Neutral:      snap.Config.Neutral,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
