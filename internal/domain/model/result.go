package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnalysisResult is the immutable output of one pipeline run. A re-run
// produces a new result; nothing mutates one in place.
type AnalysisResult struct {
	RunID            uuid.UUID
	ShotType         ShotType
	ShotsDetected    int
	Attempts         []ShotAttempt
	Items            []ItemResult
	PerCategoryScore map[string]float64
	GlobalScore      *float64
	Confidence       float64
	Outcome          Outcome
	Meta             Meta
	CreatedAt        time.Time
}

// NewResult builds a validated AnalysisResult. It enforces the structural
// invariants: a global score exists iff the outcome is full, attempts are
// non-overlapping and time-ordered, and phases within each attempt are
// ordered.
func NewResult(runID uuid.UUID, shotType ShotType, attempts []ShotAttempt, items []ItemResult,
	perCategory map[string]float64, global *float64, confidence float64, outcome Outcome, meta Meta,
) (AnalysisResult, error) {
	if (outcome == OutcomeFull) != (global != nil) {
		return AnalysisResult{}, fmt.Errorf("%w: outcome %q with globalScore defined=%t",
			ErrOutcomeScoreMismatch, outcome, global != nil)
	}
	for i := 1; i < len(attempts); i++ {
		if attempts[i-1].EndFrame >= attempts[i].StartFrame {
			return AnalysisResult{}, fmt.Errorf("%w: attempts %d and %d", ErrOverlappingAttempts, i-1, i)
		}
	}
	for _, a := range attempts {
		if !a.PhasesOrdered() {
			return AnalysisResult{}, fmt.Errorf("%w: attempt %d", ErrPhaseOrder, a.ID)
		}
	}
	return AnalysisResult{
		RunID:            runID,
		ShotType:         shotType,
		ShotsDetected:    len(attempts),
		Attempts:         attempts,
		Items:            items,
		PerCategoryScore: perCategory,
		GlobalScore:      global,
		Confidence:       confidence,
		Outcome:          outcome,
		Meta:             meta,
		CreatedAt:        time.Now().UTC(),
	}, nil
}
