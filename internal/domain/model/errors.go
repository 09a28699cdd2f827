package model

import "errors"

// Sentinel kinds for result construction errors.
var (
	ErrOutcomeScoreMismatch = errors.New("outcome and score presence disagree")
	ErrOverlappingAttempts  = errors.New("overlapping attempts")
	ErrPhaseOrder           = errors.New("phases out of order")
)
