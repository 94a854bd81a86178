package esc

// FakePort records pulse-width writes for test assertions.
type FakePort struct {
	// Writes contains every commanded pulse width, post-clamp, in order.
	Writes []int

	// WriteError, if set, will be returned by Write.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePort creates a FakePort for testing.
func NewFakePort() *FakePort {
	return &FakePort{}
}

// Write records the clamped pulse width.
func (f *FakePort) Write(micros int) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes = append(f.Writes, Clamp(micros))
	return nil
}

// Last returns the most recent write, or the given fallback if nothing
// was written yet.
func (f *FakePort) Last(fallback int) int {
	if len(f.Writes) == 0 {
		return fallback
	}
	return f.Writes[len(f.Writes)-1]
}

// Close marks the port as closed.
func (f *FakePort) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded writes.
func (f *FakePort) Reset() {
	f.Writes = nil
	f.Closed = false
	f.WriteError = nil
}
