package posedetect

import (
	"context"

	"github.com/hooplab/shotform/internal/adapters/sampler"
	"github.com/hooplab/shotform/internal/domain/pose"
)

// StubExtractor emits empty frame images at the plan's rate without
// decoding anything. Stands in for the video decoder in tests and local
// runs.
type StubExtractor struct{}

// Extract implements Extractor.
func (StubExtractor) Extract(_ context.Context, _ []byte, plan sampler.AnglePlan) ([]FrameImage, error) {
	n := plan.Frames()
	imgs := make([]FrameImage, n)
	for i := 0; i < n; i++ {
		imgs[i] = FrameImage{Index: i, TimestampMs: int64(i) * 1000 / int64(plan.FrameRate)}
	}
	return imgs, nil
}

// TraceDetector replays a prepared frame sequence, keyed by frame index.
// Frames past the end of the trace detect nothing.
type TraceDetector struct {
	byIndex map[int]pose.Frame
}

// NewTraceDetector builds a detector that replays the given frames.
func NewTraceDetector(frames []pose.Frame) *TraceDetector {
	byIndex := make(map[int]pose.Frame, len(frames))
	for _, f := range frames {
		byIndex[f.Index] = f
	}
	return &TraceDetector{byIndex: byIndex}
}

// Detect implements Detector.
func (d *TraceDetector) Detect(_ context.Context, img FrameImage) ([]RawKeypoint, error) {
	f, ok := d.byIndex[img.Index]
	if !ok {
		return nil, nil
	}
	raw := make([]RawKeypoint, 0, len(f.Keypoints))
	for _, kp := range f.Keypoints {
		raw = append(raw, RawKeypoint{Name: kp.Name, X: kp.X, Y: kp.Y, Confidence: kp.Confidence})
	}
	return raw, nil
}
