// Package fallback decides the terminal outcome of a run from upstream
// confidence signals. The policy is total: every run gets exactly one
// outcome, and ambiguous footage is routed to review rather than
// rejected outright.
package fallback

import "github.com/hooplab/shotform/internal/domain/model"

// Default confidence gates.
const (
	defaultContentValidityFloor = 0.4
	defaultEvaluationFloor      = 0.35
)

// Signals are the three independent confidence inputs of the policy,
// all in [0,1].
type Signals struct {
	// ContentValidity is how confident upstream is that the footage
	// shows the expected activity at all.
	ContentValidity float64

	// ShotCount is how confidently the attempts were segmented; the
	// segmenter reports it as mean attempt consistency.
	ShotCount float64

	// Evaluation is the share of the checklist that could be evaluated.
	Evaluation float64
}

// Decision is the policy verdict for one run.
type Decision struct {
	Outcome model.Outcome
	Reason  string
}

// Option applies a configuration option to the Policy.
type Option func(*Policy)

// WithContentValidityFloor sets the gate below which footage goes to
// human review.
func WithContentValidityFloor(floor float64) Option {
	return func(p *Policy) {
		if floor >= 0 && floor <= 1 {
			p.contentValidityFloor = floor
		}
	}
}

// WithEvaluationFloor sets the gate below which a run is unverified.
func WithEvaluationFloor(floor float64) Option {
	return func(p *Policy) {
		if floor >= 0 && floor <= 1 {
			p.evaluationFloor = floor
		}
	}
}

// Policy evaluates the decision table over the confidence signals.
type Policy struct {
	contentValidityFloor float64
	evaluationFloor      float64
}

// NewPolicy creates a policy with configuration options.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		contentValidityFloor: defaultContentValidityFloor,
		evaluationFloor:      defaultEvaluationFloor,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Decide maps the segmented attempts and confidence signals to exactly
// one outcome. Rows are evaluated in table order: no attempts, then
// incomplete/low-evaluation attempts, then dubious content, then full
// scoring.
func (p *Policy) Decide(attempts []model.ShotAttempt, sig Signals) Decision {
	if len(attempts) == 0 {
		return Decision{
			Outcome: model.OutcomeNoShots,
			Reason:  "no shot attempts segmented",
		}
	}

	if anyIncomplete(attempts) {
		return Decision{
			Outcome: model.OutcomeUnverified,
			Reason:  "attempt missing one or more phases",
		}
	}
	if sig.Evaluation < p.evaluationFloor {
		return Decision{
			Outcome: model.OutcomeUnverified,
			Reason:  "checklist evaluation confidence below floor",
		}
	}

	// Dubious content never auto-rejects; a human confirms. False
	// positives cost a review, false negatives cost a user.
	if sig.ContentValidity < p.contentValidityFloor {
		return Decision{
			Outcome: model.OutcomeReview,
			Reason:  "content validity confidence below floor",
		}
	}

	return Decision{Outcome: model.OutcomeFull}
}

func anyIncomplete(attempts []model.ShotAttempt) bool {
	for _, a := range attempts {
		if a.Incomplete {
			return true
		}
	}
	return false
}
