// Package control contains pure control logic for the motor governor.
// This package has NO external dependencies (no GPIO, PWM, MQTT, OS, or
// time.Sleep). Time is always injectable via time.Time parameters.
package control

import "errors"

// State represents the operating state of the controller.
// Exactly one state is active at any time.
type State string

const (
	StateDisabled   State = "DISABLED"
	StateManual     State = "MANUAL"
	StateSoftStart  State = "SOFT_START"
	StateRegulating State = "REGULATING"
)

// Pulse-width command limits in microseconds. 1000 is stopped/idle,
// 2000 is full command. Every value handed to the actuator must sit
// inside this range.
const (
	MinCommand = 1000
	MaxCommand = 2000
)

// Tuning constants. The soft-start threshold and the dead-band are kept
// as-is from the field-calibrated setup; do not re-derive them.
const (
	// DefaultNeutral is the idle/disabled baseline command.
	DefaultNeutral = 1100
	// DefaultTargetRPM is the regulation setpoint until a rpm command changes it.
	DefaultTargetRPM = 100
	// SoftStartThresholdRPM is the minimum observed speed that ends the ramp.
	SoftStartThresholdRPM = 100
	// SoftStartStep is the ramp increment per control tick, in microseconds.
	SoftStartStep = 10
	// RegulateStep is the fixed correction per control tick, in microseconds.
	RegulateStep = 5
	// DeadbandRPM is the error band around the target inside which no
	// correction is applied.
	DeadbandRPM = 1
)

// Command rejection errors. These are reported back to whoever issued the
// command; they never change controller state.
var (
	ErrCommandOutOfRange = errors.New("command out of range [1000, 2000]")
	ErrTargetNotPositive = errors.New("target rpm must be positive")
)

// Config holds the tunables for a Controller. Zero fields fall back to
// the defaults above.
type Config struct {
	Neutral            int
	TargetRPM          int
	SoftStartThreshold int
	Deadband           int
}

func (c Config) withDefaults() Config {
	if c.Neutral == 0 {
		c.Neutral = DefaultNeutral
	}
	if c.TargetRPM == 0 {
		c.TargetRPM = DefaultTargetRPM
	}
	if c.SoftStartThreshold == 0 {
		c.SoftStartThreshold = SoftStartThresholdRPM
	}
	if c.Deadband == 0 {
		c.Deadband = DeadbandRPM
	}
	return c
}

// Counts tracks controller activity since startup.
type Counts struct {
	ControlTicks     int
	CommandsAccepted int
	CommandsRejected int
	SoftStartsRun    int
}

// Clamp forces a pulse-width command into [MinCommand, MaxCommand].
func Clamp(micros int) int {
	if micros < MinCommand {
		return MinCommand
	}
	if micros > MaxCommand {
		return MaxCommand
	}
	return micros
}
