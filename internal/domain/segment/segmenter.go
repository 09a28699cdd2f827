package segment

import (
	"sort"

	"github.com/hooplab/shotform/internal/domain/model"
	"github.com/hooplab/shotform/internal/domain/pose"
)

// Option applies a configuration option to the Segmenter.
type Option func(*Segmenter)

// WithTunables replaces the transition parameters wholesale.
func WithTunables(cfg Tunables) Option {
	return func(s *Segmenter) {
		s.cfg = cfg
	}
}

// Stats summarizes one segmentation pass.
type Stats struct {
	// Discarded counts candidates dropped as noise (false starts and
	// overlap losers).
	Discarded int

	// MeanConsistency is the average consistency of the kept attempts,
	// zero when no attempt was kept. The fallback policy reads it as the
	// shot-count confidence signal.
	MeanConsistency float64
}

// Segmenter runs the phase machine over a single angle's time series.
// Segmentation is deterministic given identical samples and tunables and
// never fails on degenerate input; it just yields zero attempts.
type Segmenter struct {
	cfg Tunables
}

// NewSegmenter creates a segmenter with configuration options.
func NewSegmenter(opts ...Option) *Segmenter {
	s := &Segmenter{cfg: DefaultTunables()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment consumes the primary-angle sample series and returns the
// non-overlapping, time-ordered shot attempts found in it.
func (s *Segmenter) Segment(samples []pose.AngleSample) ([]model.ShotAttempt, Stats) {
	m := NewMachine(s.cfg)

	var candidates []model.ShotAttempt
	for _, sample := range samples {
		if a := m.Step(sample); a != nil {
			candidates = append(candidates, *a)
		}
	}
	if a := m.Flush(); a != nil {
		candidates = append(candidates, *a)
	}

	kept, dropped := resolveOverlaps(candidates)

	stats := Stats{Discarded: m.Discarded() + dropped}
	if len(kept) > 0 {
		total := 0.0
		for i := range kept {
			kept[i].ID = i + 1
			total += kept[i].Consistency
		}
		stats.MeanConsistency = total / float64(len(kept))
	}
	return kept, stats
}

// resolveOverlaps keeps at most one attempt per overlapping window: the
// one with the higher consistency score, ties broken by earliest start.
func resolveOverlaps(candidates []model.ShotAttempt) (kept []model.ShotAttempt, dropped int) {
	if len(candidates) == 0 {
		return nil, 0
	}
	sorted := make([]model.ShotAttempt, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartFrame < sorted[j].StartFrame
	})

	kept = append(kept, sorted[0])
	for _, c := range sorted[1:] {
		last := &kept[len(kept)-1]
		if c.StartFrame > last.EndFrame {
			kept = append(kept, c)
			continue
		}
		dropped++
		if c.Consistency > last.Consistency {
			*last = c
		}
	}
	return kept, dropped
}
