// Package scoring aggregates per-item checklist ratings into category
// scores and a global weighted score.
package scoring

import (
	"sort"

	"github.com/hooplab/shotform/internal/domain/checklist"
	"github.com/hooplab/shotform/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultMaxRating = 5.0
	scoreCeiling     = 100.0
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMaxRating sets the top of the per-item rating scale.
func WithMaxRating(max float64) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxRating = max
		}
	}
}

// Breakdown is the output of one scoring pass. Global is nil when no
// category had any evaluated item; the fallback policy must have routed
// such runs away from full scoring before this point.
type Breakdown struct {
	PerCategory     map[string]float64
	Global          *float64
	Redistributions []model.Redistribution
	Starved         []string
}

// Engine computes weighted scores. It is stateless and idempotent:
// scoring the same items against the same version twice yields identical
// results.
type Engine struct {
	maxRating float64
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{maxRating: defaultMaxRating}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score aggregates item results under the given checklist version.
//
// Human ratings are authoritative: when an item carries both an automated
// and a human rating, only the human one enters the aggregation; the
// automated one stays in the input slice as provenance. Items with status
// not_applicable never contribute to category denominators. Categories
// with zero evaluated items are excluded and their weight is
// redistributed proportionally across the scored categories, with each
// move recorded in the breakdown.
func (e *Engine) Score(items []model.ItemResult, v checklist.Version) (Breakdown, error) {
	effective := authoritative(items)

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, it := range effective {
		if it.Status != model.StatusEvaluated || it.Rating == nil {
			continue
		}
		def, ok := v.Item(it.ItemID)
		if !ok {
			// Unknown ids are flagged by checklist validation; they
			// cannot be weighted, so they cannot be scored.
			continue
		}
		rating := clamp(*it.Rating, 0, e.maxRating)
		sums[def.CategoryID] += rating / e.maxRating * scoreCeiling
		counts[def.CategoryID]++
	}

	b := Breakdown{PerCategory: make(map[string]float64, len(counts))}

	liveWeight, starvedWeight := 0.0, 0.0
	for _, c := range v.Categories {
		if counts[c.ID] > 0 {
			b.PerCategory[c.ID] = sums[c.ID] / float64(counts[c.ID])
			liveWeight += c.WeightPercent
		} else {
			b.Starved = append(b.Starved, c.ID)
			starvedWeight += c.WeightPercent
		}
	}
	sort.Strings(b.Starved)

	if len(b.PerCategory) == 0 {
		return b, ErrNoEvaluatedItems
	}

	// Redistribute starved weight proportionally over scored categories.
	weighted, totalWeight := 0.0, 0.0
	for _, c := range v.Categories {
		score, scored := b.PerCategory[c.ID]
		if !scored {
			continue
		}
		eff := c.WeightPercent
		if starvedWeight > 0 && liveWeight > 0 {
			eff += c.WeightPercent * starvedWeight / liveWeight
			b.Redistributions = append(b.Redistributions, model.Redistribution{
				CategoryID:      c.ID,
				OriginalWeight:  c.WeightPercent,
				EffectiveWeight: eff,
			})
		}
		weighted += score * eff
		totalWeight += eff
	}

	global := clamp(weighted/totalWeight, 0, scoreCeiling)
	b.Global = &global
	return b, nil
}

// authoritative reduces duplicate results per item id: human beats
// automated, and among results of the same source the last writer wins.
func authoritative(items []model.ItemResult) []model.ItemResult {
	byID := make(map[string]model.ItemResult)
	var order []string
	for _, it := range items {
		prev, seen := byID[it.ItemID]
		if !seen {
			order = append(order, it.ItemID)
			byID[it.ItemID] = it
			continue
		}
		if prev.Source == model.SourceHuman && it.Source != model.SourceHuman {
			continue
		}
		byID[it.ItemID] = it
	}
	out := make([]model.ItemResult, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
