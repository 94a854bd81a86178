// Package status provides a thread-safe status tracker for the
// motor-governor daemon. It is read by the HTTP handlers and by the
// MQTT heartbeat.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/motor-governor/internal/control"
)

// Config contains daemon configuration for display.
type Config struct {
	ControlMs    int64
	StatusMs     int64
	HeartbeatMs  int64
	Broker       string
	HTTPAddr     string
	GPIOChip     string
	PulsePin     int
	PWMPin       string
	PulsesPerRev int
	Neutral      int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	State         control.State
	RPM           int
	TargetRPM     int
	Command       int
	PulsesTotal   int64
	Counts        control.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     control.StateDisabled,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the controller view: state, measured RPM, target, command
// and counters. Called from the run loop on every control tick.
func (t *Tracker) Update(state control.State, rpm, target, command int, counts control.Counts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.RPM = rpm
	t.snap.TargetRPM = target
	t.snap.Command = command
	t.snap.Counts = counts
	t.mu.Unlock()
}

// AddPulses accumulates drained pulse counts into the lifetime total.
func (t *Tracker) AddPulses(n int64) {
	t.mu.Lock()
	t.snap.PulsesTotal += n
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
