package checklist

import "errors"

// Sentinel kinds for checklist lookup errors.
var (
	ErrUnknownShotType = errors.New("unknown shot type")
)
