package control

import "time"

// TickScheduler decides when control and status ticks are due, by
// elapsed-time comparison against an injected clock. Ticks are "at least
// the interval has elapsed", never exact — jitter from other loop work
// is tolerated by design.
type TickScheduler struct {
	controlInterval time.Duration
	statusInterval  time.Duration
	lastControl     time.Time
	lastStatus      time.Time
}

// NewTickScheduler creates a scheduler. The first control and status
// ticks become due one full interval after start.
func NewTickScheduler(control, status time.Duration, start time.Time) *TickScheduler {
	return &TickScheduler{
		controlInterval: control,
		statusInterval:  status,
		lastControl:     start,
		lastStatus:      start,
	}
}

// ControlDue reports whether a control tick is due at now, and if so
// marks it taken.
func (s *TickScheduler) ControlDue(now time.Time) bool {
	if now.Sub(s.lastControl) < s.controlInterval {
		return false
	}
	s.lastControl = now
	return true
}

// StatusDue reports whether a status tick is due at now, and if so marks
// it taken.
func (s *TickScheduler) StatusDue(now time.Time) bool {
	if now.Sub(s.lastStatus) < s.statusInterval {
		return false
	}
	s.lastStatus = now
	return true
}
