package judgment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hooplab/shotform/internal/adapters/judgment"
	"github.com/hooplab/shotform/internal/domain/checklist"
	"github.com/hooplab/shotform/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type flakyEvaluator struct {
	failures int
	calls    int
}

func (f *flakyEvaluator) Evaluate(_ context.Context, _ judgment.Request) (judgment.Evaluation, error) {
	f.calls++
	if f.calls <= f.failures {
		return judgment.Evaluation{}, errors.New("timeout")
	}
	return judgment.Evaluation{ContentConfidence: 0.9}, nil
}

func version(t *testing.T) checklist.Version {
	t.Helper()
	v, err := checklist.NewLibrary().ForShotType(model.ThreePoint)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestMerge(t *testing.T) {
	Convey("Given automated results and human overrides", t, func() {
		v := version(t)
		automated := []model.ItemResult{
			model.Evaluated("elbow_alignment", 2, model.SourceAutomated),
			model.Evaluated("wrist_snap", 4, model.SourceAutomated),
		}
		overrides := []model.ItemResult{
			model.Evaluated("elbow_alignment", 5, model.SourceHuman),
		}

		merged := judgment.Merge(v, automated, overrides)

		Convey("The merge is total over the version", func() {
			So(merged, ShouldHaveLength, len(v.Items))
		})

		Convey("Human overrides displace automated results", func() {
			for _, it := range merged {
				if it.ItemID == "elbow_alignment" {
					So(it.Source, ShouldEqual, model.SourceHuman)
					So(*it.Rating, ShouldEqual, 5)
				}
			}
		})

		Convey("Uncovered items become not_applicable with a reason", func() {
			for _, it := range merged {
				if it.ItemID == "stance_width" {
					So(it.Status, ShouldEqual, model.StatusNotApplicable)
					So(it.Reason, ShouldNotBeEmpty)
				}
			}
		})

		Convey("Unknown item ids are dropped", func() {
			merged := judgment.Merge(v, []model.ItemResult{
				model.Evaluated("hang_time", 5, model.SourceAutomated),
			}, nil)
			for _, it := range merged {
				So(it.ItemID, ShouldNotEqual, "hang_time")
			}
		})
	})
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	req := judgment.Request{ShotType: model.ThreePoint}

	Convey("A single transient failure is retried", t, func() {
		inner := &flakyEvaluator{failures: 1}
		ev, err := judgment.WithRetry(inner, "judge").Evaluate(ctx, req)
		So(err, ShouldBeNil)
		So(ev.ContentConfidence, ShouldEqual, 0.9)
		So(inner.calls, ShouldEqual, 2)
	})

	Convey("A second failure is terminal", t, func() {
		inner := &flakyEvaluator{failures: 2}
		_, err := judgment.WithRetry(inner, "judge").Evaluate(ctx, req)
		So(err, ShouldNotBeNil)
		So(inner.calls, ShouldEqual, 2)
	})

	Convey("A cancelled context is not retried", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		inner := &flakyEvaluator{failures: 2}
		cancel()
		_, err := judgment.WithRetry(inner, "judge").Evaluate(cctx, req)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
		So(inner.calls, ShouldEqual, 1)
	})
}

func TestStubEvaluator(t *testing.T) {
	Convey("Given a stub evaluator", t, func() {
		ev := judgment.NewStubEvaluator(checklist.NewLibrary())

		Convey("Ratings follow attempt consistency", func() {
			out, err := ev.Evaluate(context.Background(), judgment.Request{
				ShotType: model.ThreePoint,
				Attempt:  model.ShotAttempt{Consistency: 0.8},
			})
			So(err, ShouldBeNil)
			So(out.Items, ShouldHaveLength, len(version(t).Items))
			So(*out.Items[0].Rating, ShouldAlmostEqual, 4, 1e-9)
			So(out.ContentConfidence, ShouldAlmostEqual, 0.8, 1e-9)
		})

		Convey("An unknown shot type fails", func() {
			_, err := ev.Evaluate(context.Background(), judgment.Request{ShotType: "dunk"})
			So(errors.Is(err, checklist.ErrUnknownShotType), ShouldBeTrue)
		})
	})
}
