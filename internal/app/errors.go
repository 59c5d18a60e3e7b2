package service

import "errors"

var (
	// ErrNotStarted indicates an operation that needs Start to have run.
	ErrNotStarted = errors.New("service not started")
)
