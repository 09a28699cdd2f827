package app

import "errors"

// Service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrDuplicateRun = errors.New("duplicate run id")
	ErrQueueFull    = errors.New("run queue full")
)
