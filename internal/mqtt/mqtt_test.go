package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/motor-governor/internal/control"
)

func TestFormatPayload(t *testing.T) {
	tr := Transition{
		Timestamp: time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
		From:      control.StateSoftStart,
		To:        control.StateRegulating,
		RPM:       104,
		Command:   1180,
	}

	data, err := FormatPayload(tr)
	if err != nil {
		t.Fatalf("FormatPayload: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if parsed.Motor.Timestamp != "2026-03-15T10:30:00Z" {
		t.Errorf("timestamp: got %q", parsed.Motor.Timestamp)
	}
	if parsed.Motor.From != "SOFT_START" {
		t.Errorf("from: got %q, want SOFT_START", parsed.Motor.From)
	}
	if parsed.Motor.To != "REGULATING" {
		t.Errorf("to: got %q, want REGULATING", parsed.Motor.To)
	}
	if parsed.Motor.RPM != 104 {
		t.Errorf("rpm: got %d, want 104", parsed.Motor.RPM)
	}
	if parsed.Motor.Command != 1180 {
		t.Errorf("command_us: got %d, want 1180", parsed.Motor.Command)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", parsed.System.Reason)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"state":"DISABLED"}}`)
	data, err := FormatSystemPayload(SystemEvent{RawPayload: raw})
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}
	if string(data) != string(raw) {
		t.Errorf("raw payload not passed through: got %s", data)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	tr := Transition{From: control.StateDisabled, To: control.StateSoftStart, Command: 1100}
	if err := f.Publish(tr); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(f.Transitions) != 1 {
		t.Fatalf("transitions: got %d, want 1", len(f.Transitions))
	}
	if f.Transitions[0].To != control.StateSoftStart {
		t.Errorf("to: got %s, want SOFT_START", f.Transitions[0].To)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("payloads: got %d, want 1", len(f.Payloads))
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	wantErr := errors.New("broker down")
	f.PublishError = wantErr

	if err := f.Publish(Transition{}); err != wantErr {
		t.Errorf("Publish: got %v, want %v", err, wantErr)
	}
	if len(f.Transitions) != 0 {
		t.Errorf("transitions recorded despite error: %d", len(f.Transitions))
	}
}

func TestFakePublisherCommandInjection(t *testing.T) {
	f := NewFakePublisher()

	var got []string
	if err := f.SubscribeCommands(func(line string) { got = append(got, line) }); err != nil {
		t.Fatalf("SubscribeCommands: %v", err)
	}

	f.InjectCommand("start")
	f.InjectCommand("rpm 150")

	if len(got) != 2 || got[0] != "start" || got[1] != "rpm 150" {
		t.Errorf("injected commands: got %v", got)
	}
}
