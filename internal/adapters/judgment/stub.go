package judgment

import (
	"context"

	"github.com/hooplab/shotform/internal/domain/checklist"
	"github.com/hooplab/shotform/internal/domain/model"
)

// StubEvaluator rates every checklist item from the attempt's internal
// consistency, mapped onto the 0-5 scale. Deterministic, used by tests
// and local runs in place of the real collaborator.
type StubEvaluator struct {
	library *checklist.Library
}

// NewStubEvaluator creates a stub evaluator over the given library.
func NewStubEvaluator(lib *checklist.Library) *StubEvaluator {
	return &StubEvaluator{library: lib}
}

// Evaluate implements Evaluator.
func (s *StubEvaluator) Evaluate(_ context.Context, req Request) (Evaluation, error) {
	v, err := s.library.ForShotType(req.ShotType)
	if err != nil {
		return Evaluation{}, err
	}

	rating := req.Attempt.Consistency * 5
	if rating > 5 {
		rating = 5
	}
	items := make([]model.ItemResult, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, model.Evaluated(it.ID, rating, model.SourceAutomated))
	}
	return Evaluation{Items: items, ContentConfidence: req.Attempt.Consistency}, nil
}
