package model_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hooplab/shotform/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func intp(v int) *int { return &v }

func TestShotAttemptPhases(t *testing.T) {
	Convey("Given an attempt with all phases in order", t, func() {
		a := model.ShotAttempt{
			ID: 1, StartFrame: 10, EndFrame: 60,
			Phases: map[model.Phase]*int{
				model.PhaseLoad:    intp(10),
				model.PhaseAscent:  intp(20),
				model.PhaseRelease: intp(32),
				model.PhaseApex:    intp(38),
				model.PhaseLanding: intp(55),
			},
		}

		Convey("PhasesOrdered should hold", func() {
			So(a.PhasesOrdered(), ShouldBeTrue)
		})

		Convey("PhaseFrame should return recorded indices", func() {
			So(a.PhaseFrame(model.PhaseRelease), ShouldEqual, 32)
		})
	})

	Convey("Given an attempt with a missing phase", t, func() {
		a := model.ShotAttempt{
			ID: 2, StartFrame: 10, EndFrame: 60,
			Phases: map[model.Phase]*int{
				model.PhaseLoad:    intp(10),
				model.PhaseAscent:  nil,
				model.PhaseRelease: intp(32),
			},
		}

		Convey("PhaseFrame should return -1 for it", func() {
			So(a.PhaseFrame(model.PhaseAscent), ShouldEqual, -1)
		})

		Convey("Ordering should skip the missing phase", func() {
			So(a.PhasesOrdered(), ShouldBeTrue)
		})
	})

	Convey("Given an attempt with phases out of order", t, func() {
		a := model.ShotAttempt{
			ID: 3,
			Phases: map[model.Phase]*int{
				model.PhaseLoad:    intp(30),
				model.PhaseRelease: intp(12),
			},
		}

		So(a.PhasesOrdered(), ShouldBeFalse)
	})
}

func TestForceNotApplicable(t *testing.T) {
	Convey("Given a mix of evaluated and not-applicable items", t, func() {
		items := []model.ItemResult{
			model.Evaluated("elbow_alignment", 4, model.SourceAutomated),
			model.NotApplicable("follow_through_hold", "occluded", model.SourceAutomated),
		}

		Convey("ForceNotApplicable should rewrite all of them with the reason", func() {
			forced := model.ForceNotApplicable(items, "attempt unverified")
			So(forced, ShouldHaveLength, 2)
			for _, it := range forced {
				So(it.Status, ShouldEqual, model.StatusNotApplicable)
				So(it.Rating, ShouldBeNil)
				So(it.Reason, ShouldEqual, "attempt unverified")
			}
			So(forced[0].ItemID, ShouldEqual, "elbow_alignment")
			So(forced[0].Source, ShouldEqual, model.SourceAutomated)
		})

		Convey("The original slice should be untouched", func() {
			_ = model.ForceNotApplicable(items, "x")
			So(items[0].Status, ShouldEqual, model.StatusEvaluated)
		})
	})
}

func TestNewResult(t *testing.T) {
	runID := uuid.New()
	score := 72.5

	Convey("Given a full outcome with a global score", t, func() {
		res, err := model.NewResult(runID, model.FreeThrow, nil, nil,
			map[string]float64{"release": 80}, &score, 0.9, model.OutcomeFull, model.Meta{})

		Convey("Construction should succeed and be stamped", func() {
			So(err, ShouldBeNil)
			So(res.Outcome, ShouldEqual, model.OutcomeFull)
			So(*res.GlobalScore, ShouldEqual, 72.5)
			So(res.CreatedAt.IsZero(), ShouldBeFalse)
		})
	})

	Convey("Given a full outcome without a global score", t, func() {
		_, err := model.NewResult(runID, model.FreeThrow, nil, nil, nil, nil, 0.9, model.OutcomeFull, model.Meta{})

		Convey("Construction should fail with ErrOutcomeScoreMismatch", func() {
			So(errors.Is(err, model.ErrOutcomeScoreMismatch), ShouldBeTrue)
		})
	})

	Convey("Given a no-shots outcome carrying a global score", t, func() {
		_, err := model.NewResult(runID, model.FreeThrow, nil, nil, nil, &score, 0.9, model.OutcomeNoShots, model.Meta{})
		So(errors.Is(err, model.ErrOutcomeScoreMismatch), ShouldBeTrue)
	})

	Convey("Given overlapping attempts", t, func() {
		attempts := []model.ShotAttempt{
			{ID: 1, StartFrame: 0, EndFrame: 50},
			{ID: 2, StartFrame: 40, EndFrame: 90},
		}
		_, err := model.NewResult(runID, model.MidRange, attempts, nil, nil, nil, 0.5, model.OutcomeUnverified, model.Meta{})

		Convey("Construction should fail with ErrOverlappingAttempts", func() {
			So(errors.Is(err, model.ErrOverlappingAttempts), ShouldBeTrue)
		})
	})

	Convey("Given an attempt with disordered phases", t, func() {
		attempts := []model.ShotAttempt{
			{ID: 1, StartFrame: 0, EndFrame: 50, Phases: map[model.Phase]*int{
				model.PhaseLoad:    intp(20),
				model.PhaseRelease: intp(5),
			}},
		}
		_, err := model.NewResult(runID, model.MidRange, attempts, nil, nil, nil, 0.5, model.OutcomeUnverified, model.Meta{})
		So(errors.Is(err, model.ErrPhaseOrder), ShouldBeTrue)
	})

	Convey("ShotsDetected should equal the attempt count", t, func() {
		attempts := []model.ShotAttempt{
			{ID: 1, StartFrame: 0, EndFrame: 50},
			{ID: 2, StartFrame: 60, EndFrame: 110},
		}
		res, err := model.NewResult(runID, model.ThreePoint, attempts, nil, nil, nil, 0.5, model.OutcomeUnverified, model.Meta{})
		So(err, ShouldBeNil)
		So(res.ShotsDetected, ShouldEqual, 2)
	})
}
