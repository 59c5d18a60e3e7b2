package dex

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrDatasetUnavailable = errors.New("reference dataset unavailable")
	ErrMalformedDataset   = errors.New("reference dataset malformed")
)
