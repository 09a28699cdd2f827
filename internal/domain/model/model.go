// Package model contains domain models passed between pipeline layers.
package model

import "github.com/google/uuid"

// ShotType identifies the checklist family used for a run.
type ShotType string

// Known shot types.
const (
	ThreePoint ShotType = "three_point"
	MidRange   ShotType = "mid_range"
	FreeThrow  ShotType = "free_throw"
)

// Outcome is the terminal classification of an analysis run.
type Outcome string

// Run outcomes.
const (
	OutcomeFull       Outcome = "full"
	OutcomeNoShots    Outcome = "no_shots"
	OutcomeUnverified Outcome = "unverified"
	OutcomeReview     Outcome = "review"
)

// Phase names one stage of a shooting motion.
type Phase string

// Phases in temporal order.
const (
	PhaseLoad    Phase = "load"
	PhaseAscent  Phase = "ascent"
	PhaseRelease Phase = "release"
	PhaseApex    Phase = "apex"
	PhaseLanding Phase = "landing"
)

// PhaseOrder lists the phases in the order they must occur within an attempt.
var PhaseOrder = []Phase{PhaseLoad, PhaseAscent, PhaseRelease, PhaseApex, PhaseLanding}

// AngleRole identifies a camera angle's role in the sampling plan.
type AngleRole string

// Angle roles. The primary angle drives segmentation.
const (
	AnglePrimary   AngleRole = "primary"
	AngleSecondary AngleRole = "secondary"
	AngleTertiary  AngleRole = "tertiary"
)

// ShotAttempt is one segmented shooting motion. Attempts within a run are
// non-overlapping and time-ordered. A nil phase entry means the phase was
// not observed; such attempts carry Incomplete=true but are still reported.
type ShotAttempt struct {
	ID          int
	StartFrame  int
	EndFrame    int
	StartTimeMs int64
	EndTimeMs   int64
	Phases      map[Phase]*int
	Incomplete  bool

	// Consistency in [0,1] reflects monotonic angle progression and the
	// share of defined angle samples inside the window.
	Consistency float64
}

// PhaseFrame returns the frame index recorded for a phase, or -1.
func (a ShotAttempt) PhaseFrame(p Phase) int {
	if f, ok := a.Phases[p]; ok && f != nil {
		return *f
	}
	return -1
}

// PhasesOrdered reports whether all present phases respect
// load <= ascent <= release <= apex <= landing.
func (a ShotAttempt) PhasesOrdered() bool {
	last := -1
	for _, p := range PhaseOrder {
		f := a.PhaseFrame(p)
		if f < 0 {
			continue
		}
		if f < last {
			return false
		}
		last = f
	}
	return true
}

// ItemStatus is the tag of the checklist item result union.
type ItemStatus string

// Item statuses.
const (
	StatusEvaluated     ItemStatus = "evaluated"
	StatusNotApplicable ItemStatus = "not_applicable"
)

// ItemSource records the provenance of an item rating.
type ItemSource string

// Item sources. Human ratings are authoritative over automated ones.
const (
	SourceAutomated ItemSource = "automated"
	SourceHuman     ItemSource = "human"
)

// ItemResult is one checklist criterion judgment. Rating is set iff
// Status == StatusEvaluated, on a 0-5 scale. Reason explains a forced
// not-applicable status.
type ItemResult struct {
	ItemID   string
	Status   ItemStatus
	Rating   *float64
	Evidence string
	Comment  string
	Reason   string
	Source   ItemSource
}

// Evaluated builds an evaluated item result.
func Evaluated(itemID string, rating float64, source ItemSource) ItemResult {
	return ItemResult{ItemID: itemID, Status: StatusEvaluated, Rating: &rating, Source: source}
}

// NotApplicable builds a not-applicable item result.
func NotApplicable(itemID, reason string, source ItemSource) ItemResult {
	return ItemResult{ItemID: itemID, Status: StatusNotApplicable, Reason: reason, Source: source}
}

// ForceNotApplicable rewrites every item to not_applicable with the given
// reason, preserving item ids and provenance. Used when the fallback policy
// routes a run away from full scoring.
func ForceNotApplicable(items []ItemResult, reason string) []ItemResult {
	out := make([]ItemResult, len(items))
	for i, it := range items {
		out[i] = ItemResult{
			ItemID:   it.ItemID,
			Status:   StatusNotApplicable,
			Evidence: it.Evidence,
			Comment:  it.Comment,
			Reason:   reason,
			Source:   it.Source,
		}
	}
	return out
}

// AnalysisJob is the unit of work submitted to the run queue. AngleRefs
// point into the video storage collaborator; Overrides carry coach ratings
// that take precedence over automated judgments.
type AnalysisJob struct {
	RunID     uuid.UUID
	ShotType  ShotType
	AngleRefs map[AngleRole]string
	Overrides []ItemResult
}

// Redistribution records one category whose weight moved during scoring.
type Redistribution struct {
	CategoryID      string
	OriginalWeight  float64
	EffectiveWeight float64
}

// Meta carries audit data attached to a result: weight redistributions,
// checklist validation issues, the fallback reason, and the automated
// judgments as they stood before human overrides were merged, so both
// sides of an overridden item stay on record.
type Meta struct {
	Redistributions   []Redistribution
	StarvedCategories []string
	ChecklistIssues   []string
	FallbackReason    string
	AutomatedItems    []ItemResult
}
