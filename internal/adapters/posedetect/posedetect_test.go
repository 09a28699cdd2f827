package posedetect_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hooplab/shotform/internal/adapters/posedetect"
	"github.com/hooplab/shotform/internal/adapters/sampler"
	"github.com/hooplab/shotform/internal/domain/pose"
	"github.com/hooplab/shotform/internal/synthetic"
	. "github.com/smartystreets/goconvey/convey"
)

type failingDetector struct {
	calls int
}

func (d *failingDetector) Detect(context.Context, posedetect.FrameImage) ([]posedetect.RawKeypoint, error) {
	d.calls++
	return nil, errors.New("model crashed")
}

type flakyDetector struct {
	failures int
	calls    int
}

func (d *flakyDetector) Detect(context.Context, posedetect.FrameImage) ([]posedetect.RawKeypoint, error) {
	d.calls++
	if d.calls <= d.failures {
		return nil, errors.New("timeout")
	}
	return []posedetect.RawKeypoint{{Name: pose.RightWrist, X: 1, Y: 2, Confidence: 0.9}}, nil
}

func TestAdapt(t *testing.T) {
	Convey("Given raw detector output", t, func() {
		img := posedetect.FrameImage{Index: 7, TimestampMs: 233}

		Convey("Confidence is clamped into [0,1]", func() {
			f := posedetect.Adapt(img, []posedetect.RawKeypoint{
				{Name: pose.RightWrist, X: 10, Y: 20, Confidence: 1.7},
				{Name: pose.RightElbow, X: 11, Y: 21, Confidence: -0.3},
			})
			So(f.Index, ShouldEqual, 7)
			So(f.Keypoints[0].Confidence, ShouldEqual, 1)
			So(f.Keypoints[1].Confidence, ShouldEqual, 0)
		})

		Convey("Zero keypoints yields an empty frame, not a dropped one", func() {
			f := posedetect.Adapt(img, nil)
			So(f.Index, ShouldEqual, 7)
			So(f.TimestampMs, ShouldEqual, 233)
			So(f.Keypoints, ShouldBeEmpty)
		})
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	plan := sampler.AnglePlan{FrameRate: 30, MaxDurationMs: 10_000}

	Convey("Given a trace detector replaying a textbook shot", t, func() {
		trace := synthetic.TextbookShot()
		det := posedetect.NewTraceDetector(trace)

		frames, err := posedetect.Run(ctx, posedetect.StubExtractor{}, det, nil, plan)
		So(err, ShouldBeNil)

		Convey("Every planned frame is produced in order", func() {
			So(frames, ShouldHaveLength, plan.Frames())
			for i, f := range frames {
				So(f.Index, ShouldEqual, i)
			}
		})

		Convey("Replayed frames carry the trace keypoints", func() {
			_, ok := frames[0].Keypoint(pose.RightWrist)
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given a detector that always errors", t, func() {
		det := &failingDetector{}
		_, err := posedetect.Run(ctx, posedetect.StubExtractor{}, det, nil, plan)

		Convey("The angle fails instead of degrading to empty frames", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "detect frame")
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := posedetect.Run(cctx, posedetect.StubExtractor{}, &failingDetector{}, nil, plan)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	img := posedetect.FrameImage{Index: 3}

	Convey("A single transient failure is retried with the same frame", t, func() {
		inner := &flakyDetector{failures: 1}
		raw, err := posedetect.WithRetry(inner, "pose").Detect(ctx, img)
		So(err, ShouldBeNil)
		So(raw, ShouldHaveLength, 1)
		So(inner.calls, ShouldEqual, 2)
	})

	Convey("A second failure is terminal", t, func() {
		inner := &failingDetector{}
		_, err := posedetect.WithRetry(inner, "pose").Detect(ctx, img)
		So(err, ShouldNotBeNil)
		So(inner.calls, ShouldEqual, 2)
	})

	Convey("A cancelled context is not retried", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		inner := &failingDetector{}
		_, err := posedetect.WithRetry(inner, "pose").Detect(cctx, img)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
		So(inner.calls, ShouldEqual, 1)
	})
}
