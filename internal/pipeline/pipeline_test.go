package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hooplab/shotform/internal/adapters/judgment"
	"github.com/hooplab/shotform/internal/adapters/posedetect"
	"github.com/hooplab/shotform/internal/adapters/videostore"
	"github.com/hooplab/shotform/internal/domain/checklist"
	"github.com/hooplab/shotform/internal/domain/model"
	"github.com/hooplab/shotform/internal/domain/pose"
	"github.com/hooplab/shotform/internal/pipeline"
	"github.com/hooplab/shotform/internal/synthetic"
	. "github.com/smartystreets/goconvey/convey"
)

func newRunner(t *testing.T, trace []pose.Frame) (*pipeline.Runner, *videostore.InMemoryStore) {
	t.Helper()
	return newRunnerWithDetector(t, posedetect.NewTraceDetector(trace))
}

func newRunnerWithDetector(t *testing.T, det posedetect.Detector) (*pipeline.Runner, *videostore.InMemoryStore) {
	t.Helper()
	store := videostore.NewInMemoryStore()
	lib := checklist.NewLibrary()
	runner := pipeline.NewRunner(
		store,
		posedetect.StubExtractor{},
		det,
		judgment.NewStubEvaluator(lib),
		lib,
	)
	return runner, store
}

type deadDetector struct {
	mu    sync.Mutex
	calls int
}

func (d *deadDetector) Detect(context.Context, posedetect.FrameImage) ([]posedetect.RawKeypoint, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return nil, errors.New("pose service unavailable")
}

func (d *deadDetector) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func primaryJob(ctx context.Context, t *testing.T, store *videostore.InMemoryStore) model.AnalysisJob {
	t.Helper()
	ref, err := store.Put(ctx, "runs/x/primary.mp4", []byte("fake video"))
	if err != nil {
		t.Fatal(err)
	}
	return model.AnalysisJob{
		RunID:     uuid.New(),
		ShotType:  model.ThreePoint,
		AngleRefs: map[model.AngleRole]string{model.AnglePrimary: ref},
	}
}

func TestRunTextbookShot(t *testing.T) {
	ctx := context.Background()

	Convey("Given a clean ten second single-angle clip", t, func() {
		runner, store := newRunner(t, synthetic.TextbookShot())
		job := primaryJob(ctx, t, store)

		result, err := runner.Run(ctx, job)
		So(err, ShouldBeNil)

		Convey("Exactly one complete attempt is reported", func() {
			So(result.ShotsDetected, ShouldEqual, 1)
			So(result.Attempts[0].Incomplete, ShouldBeFalse)
			So(result.Attempts[0].PhasesOrdered(), ShouldBeTrue)
		})

		Convey("The outcome is full with a defined global score", func() {
			So(result.Outcome, ShouldEqual, model.OutcomeFull)
			So(result.GlobalScore, ShouldNotBeNil)
			So(*result.GlobalScore, ShouldBeBetween, 0, 100)
			So(result.PerCategoryScore, ShouldNotBeEmpty)
		})

		Convey("Every checklist item is evaluated with a rating", func() {
			v, err := checklist.NewLibrary().ForShotType(model.ThreePoint)
			So(err, ShouldBeNil)
			So(result.Items, ShouldHaveLength, len(v.Items))
			for _, it := range result.Items {
				So(it.Status, ShouldEqual, model.StatusEvaluated)
				So(it.Rating, ShouldNotBeNil)
			}
			So(result.Meta.ChecklistIssues, ShouldBeEmpty)
		})

		Convey("Confidence reflects the weakest signal", func() {
			So(result.Confidence, ShouldBeBetween, 0, 1)
		})

		Convey("Reprocessing is deterministic", func() {
			again, err := runner.Run(ctx, job)
			So(err, ShouldBeNil)
			So(again.ShotsDetected, ShouldEqual, result.ShotsDetected)
			So(*again.GlobalScore, ShouldAlmostEqual, *result.GlobalScore, 1e-9)
		})
	})
}

func TestRunNoShots(t *testing.T) {
	ctx := context.Background()

	Convey("Given footage with an undetectable pose", t, func() {
		runner, store := newRunner(t, synthetic.Flatline(300))
		job := primaryJob(ctx, t, store)

		result, err := runner.Run(ctx, job)
		So(err, ShouldBeNil)

		Convey("The run degrades to no_shots instead of failing", func() {
			So(result.Outcome, ShouldEqual, model.OutcomeNoShots)
			So(result.ShotsDetected, ShouldEqual, 0)
			So(result.GlobalScore, ShouldBeNil)
			So(result.Meta.FallbackReason, ShouldNotBeEmpty)
		})

		Convey("Every checklist item is not_applicable", func() {
			So(result.Items, ShouldNotBeEmpty)
			for _, it := range result.Items {
				So(it.Status, ShouldEqual, model.StatusNotApplicable)
				So(it.Rating, ShouldBeNil)
			}
		})
	})
}

func TestRunDegradedInputs(t *testing.T) {
	ctx := context.Background()

	Convey("Given a job whose angle refs are all missing from storage", t, func() {
		runner, _ := newRunner(t, synthetic.TextbookShot())
		job := model.AnalysisJob{
			RunID:     uuid.New(),
			ShotType:  model.ThreePoint,
			AngleRefs: map[model.AngleRole]string{model.AnglePrimary: "runs/gone"},
		}

		result, err := runner.Run(ctx, job)

		Convey("The run completes as no_shots rather than erroring", func() {
			So(err, ShouldBeNil)
			So(result.Outcome, ShouldEqual, model.OutcomeNoShots)
		})
	})

	Convey("Given a pose service that errors on every frame", t, func() {
		det := &deadDetector{}
		runner, store := newRunnerWithDetector(t, det)
		job := primaryJob(ctx, t, store)

		result, err := runner.Run(ctx, job)

		Convey("The run fails terminally instead of reporting no_shots", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "pose detection")
			So(result.Outcome, ShouldBeEmpty)
		})

		Convey("The failure was retried exactly once", func() {
			So(det.callCount(), ShouldEqual, 2)
		})
	})

	Convey("Given an unknown shot type", t, func() {
		runner, store := newRunner(t, synthetic.TextbookShot())
		job := primaryJob(ctx, t, store)
		job.ShotType = "dunk"

		_, err := runner.Run(ctx, job)
		So(err, ShouldNotBeNil)
	})

	Convey("Given human overrides on a full run", t, func() {
		runner, store := newRunner(t, synthetic.TextbookShot())
		job := primaryJob(ctx, t, store)
		job.Overrides = []model.ItemResult{
			model.Evaluated("elbow_alignment", 1, model.SourceHuman),
		}

		result, err := runner.Run(ctx, job)
		So(err, ShouldBeNil)
		So(result.Outcome, ShouldEqual, model.OutcomeFull)

		Convey("The override survives into the stored items", func() {
			for _, it := range result.Items {
				if it.ItemID == "elbow_alignment" {
					So(it.Source, ShouldEqual, model.SourceHuman)
					So(*it.Rating, ShouldEqual, 1)
				}
			}
		})

		Convey("The displaced automated judgment stays on record in Meta", func() {
			So(result.Meta.AutomatedItems, ShouldNotBeEmpty)
			var found bool
			for _, it := range result.Meta.AutomatedItems {
				if it.ItemID == "elbow_alignment" {
					found = true
					So(it.Source, ShouldEqual, model.SourceAutomated)
					So(it.Rating, ShouldNotBeNil)
					So(*it.Rating, ShouldNotEqual, 1)
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}
