// Package synthetic generates keypoint traces with known phase structure.
// Tests and calibration tooling use it in place of real pose-detection
// output: a textbook trace must segment into exactly one complete attempt.
package synthetic

import (
	"math"

	"github.com/hooplab/shotform/internal/domain/pose"
)

// Trace layout in seconds for one textbook shot. The wrist holds still,
// dips during the load, rises sharply through the ascent, pauses at the
// set point, follows through and settles.
const (
	quietEnd   = 2.0
	dipEnd     = 3.0
	ascentEnd  = 3.6
	pauseEnd   = 3.67
	followEnd  = 4.2
	clipLength = 10.0

	wristRest   = 600.0
	wristDip    = 750.0
	wristPeak   = 210.0
	wristSettle = wristRest

	elbowRest = 170.0
	elbowDip  = 70.0
	elbowExt  = 175.0

	limbLength = 100.0
	wristX     = 640.0
)

type traceConfig struct {
	fps        int
	confidence float64
	durationS  float64
	startFrame int
	startMs    int64
}

// TraceOption configures trace generation.
type TraceOption func(*traceConfig)

// WithFPS sets the frame rate of the generated trace.
func WithFPS(fps int) TraceOption {
	return func(c *traceConfig) {
		if fps > 0 {
			c.fps = fps
		}
	}
}

// WithConfidence sets the keypoint confidence of the generated trace.
func WithConfidence(conf float64) TraceOption {
	return func(c *traceConfig) {
		if conf >= 0 && conf <= 1 {
			c.confidence = conf
		}
	}
}

// WithOffset shifts frame indices and timestamps, for stitching clips.
func WithOffset(frame int, ms int64) TraceOption {
	return func(c *traceConfig) {
		c.startFrame = frame
		c.startMs = ms
	}
}

func newTraceConfig(opts []TraceOption) traceConfig {
	c := traceConfig{fps: 30, confidence: 0.95, durationS: clipLength}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// TextbookShot produces a ten-second single-angle clip containing one
// clean dip-rise-release-apex-landing motion.
func TextbookShot(opts ...TraceOption) []pose.Frame {
	c := newTraceConfig(opts)
	total := int(c.durationS * float64(c.fps))
	frames := make([]pose.Frame, 0, total)
	for i := 0; i < total; i++ {
		t := float64(i) / float64(c.fps)
		frames = append(frames, frameAt(c, i, wristYAt(t), elbowAt(t)))
	}
	return frames
}

// MultiShot concatenates n textbook shots back to back, each with its own
// quiet lead-in, producing n independent non-overlapping attempts.
func MultiShot(n int, opts ...TraceOption) []pose.Frame {
	c := newTraceConfig(opts)
	perClip := int(c.durationS * float64(c.fps))
	var frames []pose.Frame
	for clip := 0; clip < n; clip++ {
		offFrame := c.startFrame + clip*perClip
		offMs := c.startMs + int64(clip)*int64(c.durationS*1000)
		clipOpts := append([]TraceOption{}, opts...)
		clipOpts = append(clipOpts, WithOffset(offFrame, offMs))
		frames = append(frames, TextbookShot(clipOpts...)...)
	}
	return frames
}

// Flatline produces frames whose keypoints all sit below any reasonable
// confidence floor, simulating undetectable pose.
func Flatline(total int, opts ...TraceOption) []pose.Frame {
	c := newTraceConfig(opts)
	c.confidence = 0.05
	frames := make([]pose.Frame, 0, total)
	for i := 0; i < total; i++ {
		frames = append(frames, frameAt(c, i, wristRest, elbowRest))
	}
	return frames
}

// wristYAt returns the wrist height (pixels, y down) at time t seconds.
func wristYAt(t float64) float64 {
	switch {
	case t < quietEnd:
		return wristRest
	case t < dipEnd:
		return lerp(wristRest, wristDip, (t-quietEnd)/(dipEnd-quietEnd))
	case t < ascentEnd:
		return lerp(wristDip, wristPeak, (t-dipEnd)/(ascentEnd-dipEnd))
	case t < pauseEnd:
		return wristPeak
	case t < followEnd:
		return lerp(wristPeak, wristSettle, (t-pauseEnd)/(followEnd-pauseEnd))
	default:
		return wristSettle
	}
}

// elbowAt returns the shooting-arm elbow angle in degrees at time t.
func elbowAt(t float64) float64 {
	switch {
	case t < quietEnd:
		return elbowRest
	case t < dipEnd:
		return lerp(elbowRest, elbowDip, (t-quietEnd)/(dipEnd-quietEnd))
	case t < ascentEnd:
		return lerp(elbowDip, elbowExt, (t-dipEnd)/(ascentEnd-dipEnd))
	default:
		return elbowExt
	}
}

// frameAt places a full right-side skeleton so the elbow angle measured at
// the elbow joint equals elbowDeg and the wrist sits at wristY. The
// shoulder is positioned on a circle around the elbow to realize the
// requested angle; the lower body hangs straight below.
func frameAt(c traceConfig, i int, wristY, elbowDeg float64) pose.Frame {
	rad := elbowDeg * math.Pi / 180

	elbowX, elbowY := wristX, wristY+limbLength
	shoulderX := elbowX - limbLength*math.Sin(rad)
	shoulderY := elbowY - limbLength*math.Cos(rad)

	kps := []pose.Keypoint{
		{Name: pose.RightWrist, X: wristX, Y: wristY, Confidence: c.confidence},
		{Name: pose.RightElbow, X: elbowX, Y: elbowY, Confidence: c.confidence},
		{Name: pose.RightShoulder, X: shoulderX, Y: shoulderY, Confidence: c.confidence},
		{Name: pose.RightHip, X: shoulderX, Y: shoulderY + 150, Confidence: c.confidence},
		{Name: pose.RightKnee, X: shoulderX, Y: shoulderY + 300, Confidence: c.confidence},
		{Name: pose.RightAnkle, X: shoulderX, Y: shoulderY + 450, Confidence: c.confidence},
	}
	return pose.Frame{
		Index:       c.startFrame + i,
		TimestampMs: c.startMs + int64(i*1000/c.fps),
		Keypoints:   kps,
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
