//go:build linux

package pulse

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// EdgeSource feeds rising edges from a GPIO line into a Counter using
// the Linux GPIO character device event interface.
type EdgeSource struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewEdgeSource requests the given line (BCM numbering) with a rising-edge
// event handler that increments the counter. The handler runs on the
// gpiocdev event goroutine and does nothing beyond the increment.
func NewEdgeSource(chipName string, pin int, counter *Counter) (*EdgeSource, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Pull-up to match open-collector hall sensor boards that pull the
	// line low on each pulse.
	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			counter.Increment()
		}),
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pulse pin %d: %w", pin, err)
	}

	return &EdgeSource{chip: chip, line: line}, nil
}

// Close releases the GPIO line and chip.
func (s *EdgeSource) Close() error {
	var errs []error

	if s.line != nil {
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pulse line: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
