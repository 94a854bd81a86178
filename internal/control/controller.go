package control

// Controller is the speed-control state machine. It owns the operating
// flags, the target RPM and the current pulse-width command. It performs
// no I/O: Tick returns the command to write and the caller hands it to
// the actuator.
type Controller struct {
	cfg Config

	enabled bool
	manual  bool
	started bool

	targetRPM int
	command   int

	counts Counts
}

// NewController creates a controller in the Disabled state with the
// command at neutral.
func NewController(cfg Config) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		cfg:       cfg,
		targetRPM: cfg.TargetRPM,
		command:   cfg.Neutral,
	}
}

// State derives the active state from the controller flags.
func (c *Controller) State() State {
	switch {
	case !c.enabled:
		return StateDisabled
	case c.manual:
		return StateManual
	case !c.started:
		return StateSoftStart
	default:
		return StateRegulating
	}
}

// Tick consumes one RPM sample and returns the next actuator command.
// The sample is ignored in the Disabled and Manual states. The returned
// value is always clamped to [MinCommand, MaxCommand].
func (c *Controller) Tick(rpm int) int {
	c.counts.ControlTicks++

	switch {
	case !c.enabled:
		// Safety invariant: Disabled always forces neutral, every tick.
		c.command = c.cfg.Neutral

	case c.manual:
		// Command is whatever the last explicit esc command set.

	case !c.started:
		if rpm >= c.cfg.SoftStartThreshold {
			// Ramp done. Hand off to regulation on the next tick;
			// no ramp increment is applied on the completion tick.
			c.started = true
		} else if c.command < MaxCommand {
			c.command += SoftStartStep
		}

	default:
		diff := c.targetRPM - rpm
		if diff > c.cfg.Deadband {
			c.command += RegulateStep
		} else if diff < -c.cfg.Deadband {
			c.command -= RegulateStep
		}
	}

	c.command = Clamp(c.command)
	return c.command
}

// Start enables the controller and enters soft start with the command
// at neutral. Manual override does not survive a start: a manual command
// issued while disabled would otherwise leave the motor parked at
// neutral in MANUAL instead of ramping. No-op while already enabled.
func (c *Controller) Start() {
	if c.enabled {
		return
	}
	c.enabled = true
	c.manual = false
	c.started = false
	c.command = c.cfg.Neutral
	c.counts.SoftStartsRun++
	c.counts.CommandsAccepted++
}

// Stop disables the controller, clears manual override and forces the
// command to neutral. The returned value is the neutral command so the
// caller can write it on the same tick.
func (c *Controller) Stop() int {
	c.enabled = false
	c.manual = false
	c.command = c.cfg.Neutral
	c.counts.CommandsAccepted++
	return c.command
}

// Reset forces the command to neutral and clears the started flag so the
// next pass through regulation re-runs the soft-start ramp. It does not
// change the enabled flag.
func (c *Controller) Reset() {
	c.command = c.cfg.Neutral
	c.started = false
	c.counts.CommandsAccepted++
}

// SetManual switches manual override on ("mode esc") or off ("mode rpm").
// Leaving manual resumes feedback regulation; the soft-start ramp is not
// re-run unless a Reset cleared the started flag.
func (c *Controller) SetManual(on bool) {
	c.manual = on
	c.counts.CommandsAccepted++
}

// SetCommand sets the pulse-width command directly and enters manual
// override. Out-of-range values are rejected and nothing changes.
func (c *Controller) SetCommand(micros int) error {
	if micros < MinCommand || micros > MaxCommand {
		c.counts.CommandsRejected++
		return ErrCommandOutOfRange
	}
	c.command = micros
	c.manual = true
	c.counts.CommandsAccepted++
	return nil
}

// SetTarget sets the regulation setpoint. Non-positive values are
// rejected and the target is unchanged.
func (c *Controller) SetTarget(rpm int) error {
	if rpm <= 0 {
		c.counts.CommandsRejected++
		return ErrTargetNotPositive
	}
	c.targetRPM = rpm
	c.counts.CommandsAccepted++
	return nil
}

// Command returns the current pulse-width command in microseconds.
func (c *Controller) Command() int {
	return c.command
}

// TargetRPM returns the current regulation setpoint.
func (c *Controller) TargetRPM() int {
	return c.targetRPM
}

// Enabled reports whether the controller is enabled.
func (c *Controller) Enabled() bool {
	return c.enabled
}

// Started reports whether the soft-start ramp has completed.
func (c *Controller) Started() bool {
	return c.started
}

// CountsSnapshot returns a copy of the activity counters.
func (c *Controller) CountsSnapshot() Counts {
	return c.counts
}
