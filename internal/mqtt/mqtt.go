// Package mqtt provides MQTT publishing and command intake with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/motor-governor/internal/control"
)

// Topic is the MQTT topic for controller state transitions.
const Topic = "motor/governor/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "motor/governor/system"

// TopicCommand is the MQTT topic the daemon subscribes to for remote
// commands. Payloads use the same line protocol as the console.
const TopicCommand = "motor/governor/command"

// Transition is a controller state change to be published.
type Transition struct {
	Timestamp time.Time
	From      control.State
	To        control.State
	RPM       int
	Command   int
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a state transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(tr Transition) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandSource delivers remote command lines.
type CommandSource interface {
	// SubscribeCommands registers a handler for incoming command lines.
	SubscribeCommands(handler func(line string)) error
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Motor MotorPayload `json:"motor"`
}

// MotorPayload contains the transition details.
type MotorPayload struct {
	Timestamp string `json:"timestamp"`
	From      string `json:"from"`
	To        string `json:"to"`
	RPM       int    `json:"rpm"`
	Command   int    `json:"command_us"`
}

// FormatPayload creates the JSON payload for a state transition.
func FormatPayload(tr Transition) ([]byte, error) {
	payload := Payload{
		Motor: MotorPayload{
			Timestamp: tr.Timestamp.UTC().Format(time.RFC3339),
			From:      string(tr.From),
			To:        string(tr.To),
			RPM:       tr.RPM,
			Command:   tr.Command,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
