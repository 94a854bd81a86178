package control

import "time"

// SampleWindow is the default RPM sampling window.
const SampleWindow = 200 * time.Millisecond

// referenceScale is the per-window to RPM conversion numerator. It is
// calibrated against the 200 ms window (scale 10) and grows inversely
// with the window length: changing the window without keeping this
// relation breaks calibration.
const referenceScale = 2000

// EstimateRPM converts a drained pulse count over a sampling window into
// an RPM value. Pure function; integer truncation semantics. Returns 0
// for a zero count (a silent sensor reads as stopped, not as an error).
//
// pulsesPerRev must be > 0; that is validated once at initialization,
// not per call.
func EstimateRPM(pulses int, windowMillis int64, pulsesPerRev int) int {
	if pulses == 0 {
		return 0
	}
	return pulses * int(referenceScale/windowMillis) / pulsesPerRev
}
