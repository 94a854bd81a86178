// Package pulse provides hall-sensor pulse counting with hardware
// abstraction. The real implementation uses Linux GPIO line events; the
// fake allows testing without hardware.
package pulse

import "sync/atomic"

// Default GPIO line for the hall sensor (BCM numbering).
const DefaultPin = 17

// Counter accumulates sensor edges. Increment is called from the edge
// event context, Drain from the main control loop. The atomic swap in
// Drain guarantees no edge is lost or double-counted across the drain
// boundary; there is no other shared state between the two contexts.
type Counter struct {
	n atomic.Int64
}

// Increment adds one edge. Safe to call at any time relative to Drain.
// It must stay a single atomic add: the edge context must never block,
// allocate, or perform I/O.
func (c *Counter) Increment() {
	c.n.Add(1)
}

// Drain atomically returns the accumulated count and resets it to zero.
func (c *Counter) Drain() int64 {
	return c.n.Swap(0)
}
