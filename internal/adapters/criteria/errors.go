package criteria

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrLoadCriteria   = errors.New("load criteria failed")
	ErrSaveCriteria   = errors.New("save criteria failed")
	ErrUnknownProfile = errors.New("unknown profile")
)
