// Package judgment talks to the checklist-judgment collaborator and
// merges its automated item results with human overrides.
package judgment

import (
	"context"

	"github.com/hooplab/shotform/internal/domain/checklist"
	"github.com/hooplab/shotform/internal/domain/model"
	"github.com/hooplab/shotform/internal/domain/pose"
	"github.com/hooplab/shotform/pkg/metrics"
)

// Request is everything the evaluator sees about one attempt.
type Request struct {
	ShotType model.ShotType
	Attempt  model.ShotAttempt
	Samples  []pose.AngleSample
}

// Evaluation is the collaborator's verdict: per-item results plus its
// confidence that the footage shows the expected activity at all.
type Evaluation struct {
	Items             []model.ItemResult
	ContentConfidence float64
}

// Evaluator judges one segmented attempt against the checklist.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) (Evaluation, error)
}

// retryEvaluator retries a failed evaluation once before giving up.
type retryEvaluator struct {
	inner Evaluator
	name  string
}

// WithRetry wraps an evaluator so that one transient failure is retried
// before the error becomes terminal. name labels the collaborator in
// metrics.
func WithRetry(inner Evaluator, name string) Evaluator {
	return &retryEvaluator{inner: inner, name: name}
}

// Evaluate implements Evaluator.
func (r *retryEvaluator) Evaluate(ctx context.Context, req Request) (Evaluation, error) {
	ev, err := r.inner.Evaluate(ctx, req)
	if err == nil {
		return ev, nil
	}
	if ctx.Err() != nil {
		return Evaluation{}, ctx.Err()
	}
	metrics.RecordCollaboratorRetry(r.name)

	ev, err = r.inner.Evaluate(ctx, req)
	if err != nil {
		metrics.RecordCollaboratorError(r.name)
		return Evaluation{}, err
	}
	return ev, nil
}

// Merge combines automated results with human overrides into one result
// per checklist item, in the version's item order. A human result always
// displaces an automated one for the same item; items neither source
// covered become not_applicable so the result set is total over the
// version.
func Merge(v checklist.Version, automated, overrides []model.ItemResult) []model.ItemResult {
	byID := make(map[string]model.ItemResult, len(v.Items))
	for _, it := range automated {
		if _, ok := v.Item(it.ItemID); !ok {
			continue
		}
		byID[it.ItemID] = it
	}
	for _, it := range overrides {
		if _, ok := v.Item(it.ItemID); !ok {
			continue
		}
		it.Source = model.SourceHuman
		byID[it.ItemID] = it
	}

	out := make([]model.ItemResult, 0, len(v.Items))
	for _, item := range v.Items {
		if r, ok := byID[item.ID]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, model.NotApplicable(item.ID, "not judged by any source", model.SourceAutomated))
	}
	return out
}
