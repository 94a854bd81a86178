package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/motor-governor/internal/control"
	"github.com/sweeney/motor-governor/internal/status"
)

func newTestServer(t *testing.T) (*Server, *status.Tracker) {
	t.Helper()
	tracker := status.NewTracker(time.Now(), status.Config{
		ControlMs:    200,
		StatusMs:     500,
		Broker:       "tcp://broker:1883",
		GPIOChip:     "gpiochip0",
		PulsePin:     17,
		PWMPin:       "GPIO18",
		PulsesPerRev: 2,
		Neutral:      1100,
	})
	return New(":0", tracker), tracker
}

func TestHandleIndex(t *testing.T) {
	srv, tracker := newTestServer(t)
	tracker.Update(control.StateRegulating, 98, 100, 1240, control.Counts{ControlTicks: 50})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.handleIndex(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	page := string(body)

	for _, want := range []string{"REGULATING", "1240", "GPIO18", "tcp://broker:1883"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHandleIndexNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.handleIndex(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestHandleJSON(t *testing.T) {
	srv, tracker := newTestServer(t)
	tracker.Update(control.StateManual, 0, 100, 1500, control.Counts{CommandsAccepted: 2})

	req := httptest.NewRequest(http.MethodGet, "/index.json", nil)
	rec := httptest.NewRecorder()
	srv.handleJSON(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}

	var parsed status.StatusJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Status.State != "MANUAL" {
		t.Errorf("state: got %q, want MANUAL", parsed.Status.State)
	}
	if parsed.Status.Command != 1500 {
		t.Errorf("command_us: got %d, want 1500", parsed.Status.Command)
	}
}
