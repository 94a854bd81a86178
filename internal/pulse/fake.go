package pulse

// FakeEdges drives a Counter with scripted edge bursts, standing in for
// the GPIO event source in tests.
type FakeEdges struct {
	counter *Counter

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeEdges creates a FakeEdges feeding the given counter.
func NewFakeEdges(counter *Counter) *FakeEdges {
	return &FakeEdges{counter: counter}
}

// Inject records n edges, as if the sensor emitted them.
func (f *FakeEdges) Inject(n int) {
	for i := 0; i < n; i++ {
		f.counter.Increment()
	}
}

// Close marks the source as closed.
func (f *FakeEdges) Close() error {
	f.Closed = true
	return nil
}
