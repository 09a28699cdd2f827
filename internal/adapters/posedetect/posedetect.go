// Package posedetect adapts the external pose-detection collaborator's
// raw output into domain frames. The adapter only normalizes shape and
// clamps confidence; it never interprets poses.
package posedetect

import (
	"context"
	"fmt"

	"github.com/hooplab/shotform/internal/adapters/sampler"
	"github.com/hooplab/shotform/internal/domain/pose"
	"github.com/hooplab/shotform/pkg/metrics"
)

// RawKeypoint is one landmark as reported by the detector, before any
// normalization.
type RawKeypoint struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// FrameImage is one decoded frame handed to the detector.
type FrameImage struct {
	Index       int
	TimestampMs int64
	Pixels      []byte
}

// Extractor decodes a video buffer into the frames the plan asks for.
type Extractor interface {
	Extract(ctx context.Context, video []byte, plan sampler.AnglePlan) ([]FrameImage, error)
}

// Detector runs pose estimation on a single frame.
type Detector interface {
	Detect(ctx context.Context, img FrameImage) ([]RawKeypoint, error)
}

// retryDetector retries a failed detection once before giving up.
type retryDetector struct {
	inner Detector
	name  string
}

// WithRetry wraps a detector so that one transient failure is retried
// with the same frame before the error becomes terminal. name labels
// the collaborator in metrics.
func WithRetry(inner Detector, name string) Detector {
	return &retryDetector{inner: inner, name: name}
}

// Detect implements Detector.
func (r *retryDetector) Detect(ctx context.Context, img FrameImage) ([]RawKeypoint, error) {
	raw, err := r.inner.Detect(ctx, img)
	if err == nil {
		return raw, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	metrics.RecordCollaboratorRetry(r.name)

	raw, err = r.inner.Detect(ctx, img)
	if err != nil {
		metrics.RecordCollaboratorError(r.name)
		return nil, err
	}
	return raw, nil
}

// Adapt converts raw detector output for one frame into a domain Frame.
// Confidence is clamped to [0,1]. Zero keypoints yields a Frame with an
// empty list rather than dropping the frame; downstream treats it as low
// information.
func Adapt(img FrameImage, raw []RawKeypoint) pose.Frame {
	kps := make([]pose.Keypoint, 0, len(raw))
	for _, rk := range raw {
		c := rk.Confidence
		if c < 0 {
			c = 0
		} else if c > 1 {
			c = 1
		}
		kps = append(kps, pose.Keypoint{Name: rk.Name, X: rk.X, Y: rk.Y, Confidence: c})
	}
	return pose.Frame{Index: img.Index, TimestampMs: img.TimestampMs, Keypoints: kps}
}

// Run extracts, detects and adapts one angle buffer end to end. A
// detector that returns zero keypoints yields an empty Frame; a detector
// that returns an error aborts the angle. Detecting nothing is low
// confidence, failing to detect is an error, and the two must not blur.
func Run(ctx context.Context, ex Extractor, det Detector, video []byte, plan sampler.AnglePlan) ([]pose.Frame, error) {
	imgs, err := ex.Extract(ctx, video, plan)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	frames := make([]pose.Frame, 0, len(imgs))
	for _, img := range imgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := det.Detect(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("detect frame %d: %w", img.Index, err)
		}
		frames = append(frames, Adapt(img, raw))
	}
	return frames, nil
}
