//go:build !linux

package pulse

import "errors"

// EdgeSource is not available on non-Linux platforms.
type EdgeSource struct{}

// NewEdgeSource returns an error on non-Linux platforms.
func NewEdgeSource(chipName string, pin int, counter *Counter) (*EdgeSource, error) {
	return nil, errors.New("pulse: not supported on this platform (requires Linux)")
}

// Close is not implemented on non-Linux platforms.
func (s *EdgeSource) Close() error {
	return nil
}
