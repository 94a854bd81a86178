// Package command parses the line-oriented control protocol and applies
// parsed commands to the controller.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sweeney/motor-governor/internal/control"
)

// Kind identifies a parsed command.
type Kind string

const (
	// KindNone marks unrecognized input, which is ignored.
	KindNone      Kind = ""
	KindStart     Kind = "start"
	KindStop      Kind = "stop"
	KindReset     Kind = "reset"
	KindManualOn  Kind = "mode esc"
	KindManualOff Kind = "mode rpm"
	KindSetPulse  Kind = "esc"
	KindSetTarget Kind = "rpm"
)

// Command is one parsed input line.
type Command struct {
	Kind  Kind
	Value int // pulse width for KindSetPulse, target for KindSetTarget
}

// Parse interprets one input line, case-insensitively. Unrecognized
// input parses to KindNone with no error; a recognized command with a
// malformed argument is an error for the issuer.
func Parse(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{}, nil
	}

	switch fields[0] {
	case "start":
		return Command{Kind: KindStart}, nil
	case "stop":
		return Command{Kind: KindStop}, nil
	case "reset":
		return Command{Kind: KindReset}, nil
	case "mode":
		if len(fields) < 2 {
			return Command{}, fmt.Errorf("mode: missing argument (esc or rpm)")
		}
		switch fields[1] {
		case "esc":
			return Command{Kind: KindManualOn}, nil
		case "rpm":
			return Command{Kind: KindManualOff}, nil
		}
		return Command{}, fmt.Errorf("mode: unknown argument %q", fields[1])
	case "esc", "rpm":
		if len(fields) < 2 {
			return Command{}, fmt.Errorf("%s: missing value", fields[0])
		}
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("%s: invalid value %q", fields[0], fields[1])
		}
		if fields[0] == "esc" {
			return Command{Kind: KindSetPulse, Value: v}, nil
		}
		return Command{Kind: KindSetTarget, Value: v}, nil
	}

	return Command{}, nil
}

// Apply translates a parsed command into controller inputs. Range
// rejections come back as errors with the controller unchanged.
func Apply(cmd Command, c *control.Controller) error {
	switch cmd.Kind {
	case KindStart:
		c.Start()
	case KindStop:
		c.Stop()
	case KindReset:
		c.Reset()
	case KindManualOn:
		c.SetManual(true)
	case KindManualOff:
		c.SetManual(false)
	case KindSetPulse:
		return c.SetCommand(cmd.Value)
	case KindSetTarget:
		return c.SetTarget(cmd.Value)
	}
	return nil
}
