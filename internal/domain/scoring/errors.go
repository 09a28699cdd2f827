package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrNoEvaluatedItems means every category was starved. The fallback
	// policy is expected to have routed such runs away from full scoring;
	// seeing this error indicates a policy bug upstream.
	ErrNoEvaluatedItems = errors.New("no category has evaluated items")
)
