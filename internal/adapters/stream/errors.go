package stream

import "errors"

var (
	// ErrInvalidPort indicates a discovery file value outside 1-65535.
	ErrInvalidPort = errors.New("invalid port")
)
