package esc

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Standard servo/ESC signal: 50 Hz frame, so a 20 ms period carries the
// 1000-2000 µs pulse.
const (
	pwmFrequency = 50 * physic.Hertz
	periodMicros = 20000
)

// PWMPort drives the ESC signal line as hardware PWM through periph.io.
type PWMPort struct {
	pin     gpio.PinIO
	neutral int
}

// NewPWMPort initializes the periph host, looks up the pin by name and
// arms the ESC at the neutral pulse width.
func NewPWMPort(pinName string, neutral int) (*PWMPort, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("pwm pin %q not found", pinName)
	}

	p := &PWMPort{pin: pin, neutral: Clamp(neutral)}
	if err := p.Write(p.neutral); err != nil {
		return nil, fmt.Errorf("arm at neutral: %w", err)
	}
	return p, nil
}

// Write commands the given pulse width, clamped to the safe range.
func (p *PWMPort) Write(micros int) error {
	micros = Clamp(micros)
	duty := gpio.Duty(int64(micros) * int64(gpio.DutyMax) / periodMicros)
	if err := p.pin.PWM(duty, pwmFrequency); err != nil {
		return fmt.Errorf("pwm %dus: %w", micros, err)
	}
	return nil
}

// Close returns the signal to neutral and halts the pin. The ESC sees
// neutral until the line goes quiet.
func (p *PWMPort) Close() error {
	if err := p.Write(p.neutral); err != nil {
		return err
	}
	if err := p.pin.Halt(); err != nil {
		return fmt.Errorf("halt pwm pin: %w", err)
	}
	return nil
}
