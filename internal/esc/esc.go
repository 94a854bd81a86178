// Package esc commands an electronic speed controller with a pulse-width
// value in microseconds. The real implementation drives 50 Hz servo PWM;
// the fake records writes for tests.
package esc

import "github.com/sweeney/motor-governor/internal/control"

// Default PWM pin for the ESC signal line (periph.io pin name).
const DefaultPin = "GPIO18"

// Port writes pulse-width commands to the ESC.
type Port interface {
	// Write commands the given pulse width in microseconds. Callers
	// clamp first; the port clamps again as a last line of defense and
	// never forwards an out-of-range value to hardware. Writing the
	// same value every tick is fine.
	Write(micros int) error

	// Close releases the output, leaving the signal at neutral.
	Close() error
}

// Clamp forces a pulse width into the safe [1000, 2000] range.
func Clamp(micros int) int {
	return control.Clamp(micros)
}
