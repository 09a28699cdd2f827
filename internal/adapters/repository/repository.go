// Package repository persists final analysis results. The document
// store behind it is a collaborator; this package defines the contract
// and ships an in-memory implementation for tests and local runs.
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hooplab/shotform/internal/domain/model"
	"github.com/hooplab/shotform/pkg/metrics"
)

// ResultRepository stores and retrieves analysis results by run id.
type ResultRepository interface {
	Save(ctx context.Context, result model.AnalysisResult) error
	Get(ctx context.Context, runID uuid.UUID) (model.AnalysisResult, error)
	ListByOutcome(ctx context.Context, outcome model.Outcome) ([]model.AnalysisResult, error)
}

// InMemoryRepository implements ResultRepository with a concurrency-safe
// map keyed by run id. Saving the same run id again overwrites, keeping
// reprocessing idempotent.
type InMemoryRepository struct {
	mu      sync.RWMutex
	results map[uuid.UUID]model.AnalysisResult
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{results: make(map[uuid.UUID]model.AnalysisResult)}
}

// Save implements ResultRepository.
func (r *InMemoryRepository) Save(_ context.Context, result model.AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results[result.RunID] = result
	metrics.UpdateResultsStored(len(r.results))
	return nil
}

// Get implements ResultRepository.
func (r *InMemoryRepository) Get(_ context.Context, runID uuid.UUID) (model.AnalysisResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.results[runID]
	if !ok {
		return model.AnalysisResult{}, ErrNotFound
	}
	return result, nil
}

// ListByOutcome implements ResultRepository. Results are returned in
// creation order.
func (r *InMemoryRepository) ListByOutcome(_ context.Context, outcome model.Outcome) ([]model.AnalysisResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.AnalysisResult
	for _, res := range r.results {
		if res.Outcome == outcome {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Size returns the number of stored results.
func (r *InMemoryRepository) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.results)
}
