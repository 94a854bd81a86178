package internal

import (
	"testing"
	"time"

	"github.com/sweeney/motor-governor/internal/command"
	"github.com/sweeney/motor-governor/internal/control"
	"github.com/sweeney/motor-governor/internal/esc"
	"github.com/sweeney/motor-governor/internal/mqtt"
	"github.com/sweeney/motor-governor/internal/pulse"
)

// TestIntegrationFullFlow walks the complete path from sensor edges to
// ESC writes using fakes: start, soft-start ramp, regulation, manual
// override and stop.
func TestIntegrationFullFlow(t *testing.T) {
	var counter pulse.Counter
	edges := pulse.NewFakeEdges(&counter)
	port := esc.NewFakePort()
	publisher := mqtt.NewFakePublisher()
	ctrl := control.NewController(control.Config{})

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sched := control.NewTickScheduler(200*time.Millisecond, 500*time.Millisecond, start)

	const ppr = 2 // rpm = pulses*5 at the 200 ms window

	// Scripted run: pulse bursts per control tick, with commands applied
	// between ticks.
	script := []struct {
		pulses  int
		command string
	}{
		// Enable, then ramp while rpm stays under the threshold.
		{0, "start"},
		{4, ""},
		{10, ""},
		// rpm 120 completes the ramp with no increment.
		{24, ""},
		// rpm 80 nudges up, rpm 100 sits in the dead-band.
		{16, ""},
		{20, ""},
		// Manual override holds 1400 regardless of rpm.
		{30, "esc 1400"},
		{30, ""},
		// Stop writes neutral immediately and again on the next tick.
		{0, "stop"},
	}

	prevState := ctrl.State()
	now := start
	for i, step := range script {
		if step.command != "" {
			cmd, err := command.Parse(step.command)
			if err != nil {
				t.Fatalf("step %d: parse %q: %v", i, step.command, err)
			}
			if err := command.Apply(cmd, ctrl); err != nil {
				t.Fatalf("step %d: apply %q: %v", i, step.command, err)
			}
			if cmd.Kind == command.KindStop {
				if err := port.Write(ctrl.Command()); err != nil {
					t.Fatalf("step %d: stop write: %v", i, err)
				}
			}
		}

		now = now.Add(200 * time.Millisecond)
		if !sched.ControlDue(now) {
			t.Fatalf("step %d: control tick not due", i)
		}

		edges.Inject(step.pulses)
		drained := counter.Drain()
		rpm := control.EstimateRPM(int(drained), 200, ppr)

		cmd := ctrl.Tick(rpm)
		if err := port.Write(cmd); err != nil {
			t.Fatalf("step %d: write: %v", i, err)
		}

		if state := ctrl.State(); state != prevState {
			if err := publisher.Publish(mqtt.Transition{
				Timestamp: now,
				From:      prevState,
				To:        state,
				RPM:       rpm,
				Command:   cmd,
			}); err != nil {
				t.Fatalf("step %d: publish: %v", i, err)
			}
			prevState = state
		}
	}

	// Commanded pulse widths, tick by tick (stop inserts an immediate
	// neutral write before its tick).
	want := []int{
		1110, // ramp
		1120, // ramp
		1130, // ramp
		1130, // completion tick, no increment
		1135, // rpm 80: +5
		1135, // dead-band
		1400, // manual hold
		1400, // manual hold
		1100, // stop, immediate
		1100, // disabled tick
	}
	if len(port.Writes) != len(want) {
		t.Fatalf("writes: got %v, want %v", port.Writes, want)
	}
	for i := range want {
		if port.Writes[i] != want[i] {
			t.Errorf("write %d: got %d, want %d", i, port.Writes[i], want[i])
		}
	}

	// State history: disabled -> soft start -> regulating -> manual -> disabled.
	wantTr := []struct{ from, to control.State }{
		{control.StateDisabled, control.StateSoftStart},
		{control.StateSoftStart, control.StateRegulating},
		{control.StateRegulating, control.StateManual},
		{control.StateManual, control.StateDisabled},
	}
	if len(publisher.Transitions) != len(wantTr) {
		t.Fatalf("transitions: got %d, want %d", len(publisher.Transitions), len(wantTr))
	}
	for i, w := range wantTr {
		tr := publisher.Transitions[i]
		if tr.From != w.from || tr.To != w.to {
			t.Errorf("transition %d: got %s->%s, want %s->%s", i, tr.From, tr.To, w.from, w.to)
		}
	}
}

// TestIntegrationSensorSilence verifies that a silent sensor reads as
// zero RPM and keeps the ramp climbing rather than being treated as a
// fault.
func TestIntegrationSensorSilence(t *testing.T) {
	var counter pulse.Counter
	port := esc.NewFakePort()
	ctrl := control.NewController(control.Config{})
	ctrl.Start()

	for i := 0; i < 5; i++ {
		rpm := control.EstimateRPM(int(counter.Drain()), 200, 2)
		if rpm != 0 {
			t.Fatalf("tick %d: rpm %d, want 0", i, rpm)
		}
		if err := port.Write(ctrl.Tick(rpm)); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	if got := port.Last(0); got != control.DefaultNeutral+5*control.SoftStartStep {
		t.Errorf("command after 5 silent ticks: got %d, want %d", got, control.DefaultNeutral+5*control.SoftStartStep)
	}
	if ctrl.State() != control.StateSoftStart {
		t.Errorf("state: got %s, want SOFT_START", ctrl.State())
	}
}
