package repository

import "errors"

// ErrNotFound is returned when no result exists for a run id.
var ErrNotFound = errors.New("analysis result not found")
