// Package sampler computes the per-angle frame sampling plan for a run.
// The primary angle is sampled denser than secondary angles, and the
// combined plan never exceeds the total frame budget.
package sampler

import (
	"math"

	"github.com/hooplab/shotform/internal/domain/model"
)

// Default plan parameters.
const (
	defaultPrimaryRate   = 30
	defaultSecondaryRate = 10
	defaultMinRate       = 5
	defaultMaxDurationMs = 15_000
	defaultFrameBudget   = 900
)

// Buffer describes one available angle recording.
type Buffer struct {
	Role       model.AngleRole
	Ref        string
	SizeBytes  int64
	DurationMs int64
}

// AnglePlan is the sampling decision for one angle.
type AnglePlan struct {
	FrameRate     int
	MaxDurationMs int64
}

// Frames returns how many frames the plan will sample.
func (p AnglePlan) Frames() int {
	return int(int64(p.FrameRate) * p.MaxDurationMs / 1000)
}

// Plan maps each usable angle to its sampling decision. Absent or empty
// buffers are omitted from the plan.
type Plan map[model.AngleRole]AnglePlan

// TotalFrames sums the frame counts across all planned angles.
func (p Plan) TotalFrames() int {
	total := 0
	for _, ap := range p {
		total += ap.Frames()
	}
	return total
}

// Option applies a configuration option to the Planner.
type Option func(*Planner)

// WithPrimaryRate sets the target frame rate for the primary angle.
func WithPrimaryRate(rate int) Option {
	return func(p *Planner) {
		if rate > 0 {
			p.primaryRate = rate
		}
	}
}

// WithSecondaryRate sets the target frame rate for non-primary angles.
func WithSecondaryRate(rate int) Option {
	return func(p *Planner) {
		if rate > 0 {
			p.secondaryRate = rate
		}
	}
}

// WithMinRate sets the floor below which frame rate is never reduced;
// past it, duration is shortened instead.
func WithMinRate(rate int) Option {
	return func(p *Planner) {
		if rate > 0 {
			p.minRate = rate
		}
	}
}

// WithMaxDurationMs caps the sampled window per angle.
func WithMaxDurationMs(ms int64) Option {
	return func(p *Planner) {
		if ms > 0 {
			p.maxDurationMs = ms
		}
	}
}

// WithFrameBudget caps the total frames sampled across all angles.
func WithFrameBudget(frames int) Option {
	return func(p *Planner) {
		if frames > 0 {
			p.frameBudget = frames
		}
	}
}

// Planner turns available angle buffers into a sampling plan.
type Planner struct {
	primaryRate   int
	secondaryRate int
	minRate       int
	maxDurationMs int64
	frameBudget   int
}

// NewPlanner creates a planner with configuration options.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{
		primaryRate:   defaultPrimaryRate,
		secondaryRate: defaultSecondaryRate,
		minRate:       defaultMinRate,
		maxDurationMs: defaultMaxDurationMs,
		frameBudget:   defaultFrameBudget,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan builds the sampling plan. A missing or zero-length buffer drops
// its angle from the plan rather than failing the run. When the combined
// frame count exceeds the budget, frame rate is reduced first (down to
// the minimum rate) and only then is duration shortened, preserving
// temporal coverage over density.
func (p *Planner) Plan(buffers []Buffer) Plan {
	plan := make(Plan)
	for _, b := range buffers {
		if b.SizeBytes <= 0 || b.DurationMs <= 0 {
			continue
		}
		rate := p.secondaryRate
		if b.Role == model.AnglePrimary {
			rate = p.primaryRate
		}
		dur := b.DurationMs
		if dur > p.maxDurationMs {
			dur = p.maxDurationMs
		}
		plan[b.Role] = AnglePlan{FrameRate: rate, MaxDurationMs: dur}
	}

	total := plan.TotalFrames()
	if total <= p.frameBudget {
		return plan
	}

	// First pass: scale rates down proportionally, clamped at the floor.
	scale := float64(p.frameBudget) / float64(total)
	for role, ap := range plan {
		rate := int(math.Floor(float64(ap.FrameRate) * scale))
		if rate < p.minRate {
			rate = p.minRate
		}
		ap.FrameRate = rate
		plan[role] = ap
	}

	total = plan.TotalFrames()
	if total <= p.frameBudget {
		return plan
	}

	// Rates are at the floor; shorten durations proportionally.
	scale = float64(p.frameBudget) / float64(total)
	for role, ap := range plan {
		ap.MaxDurationMs = int64(float64(ap.MaxDurationMs) * scale)
		plan[role] = ap
	}
	return plan
}
