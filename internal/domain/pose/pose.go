// Package pose holds the keypoint and joint-angle primitives of the
// pipeline: frames of estimated body landmarks and the kinematic samples
// derived from them.
package pose

import "math"

// Coordinates with every |x|,|y| at or below this bound are treated as
// normalized to [0,1] and scaled to pixel space before use.
const normalizedCoordBound = 1.5

// Landmark names follow the usual 2D pose model vocabulary.
const (
	Nose          = "nose"
	LeftShoulder  = "left_shoulder"
	RightShoulder = "right_shoulder"
	LeftElbow     = "left_elbow"
	RightElbow    = "right_elbow"
	LeftWrist     = "left_wrist"
	RightWrist    = "right_wrist"
	LeftHip       = "left_hip"
	RightHip      = "right_hip"
	LeftKnee      = "left_knee"
	RightKnee     = "right_knee"
	LeftAnkle     = "left_ankle"
	RightAnkle    = "right_ankle"
)

// Keypoint is a single estimated body-landmark position. Confidence is
// clamped to [0,1] by the pose adapter before a Keypoint enters the domain.
type Keypoint struct {
	Name       string
	X          float64
	Y          float64
	Confidence float64
}

// Frame is one sampled instant of a clip. Frames form an ordered,
// append-only sequence; an empty keypoint list means the detector saw
// nothing, which is low information rather than an error.
type Frame struct {
	Index       int
	TimestampMs int64
	Keypoints   []Keypoint
}

// Keypoint returns the named keypoint and whether it is present.
func (f Frame) Keypoint(name string) (Keypoint, bool) {
	for _, kp := range f.Keypoints {
		if kp.Name == name {
			return kp, true
		}
	}
	return Keypoint{}, false
}

// normalized reports whether the frame's coordinates look normalized to
// the unit square rather than pixel space.
func (f Frame) normalized() bool {
	if len(f.Keypoints) == 0 {
		return false
	}
	maxCoord := 0.0
	for _, kp := range f.Keypoints {
		maxCoord = math.Max(maxCoord, math.Max(math.Abs(kp.X), math.Abs(kp.Y)))
	}
	return maxCoord <= normalizedCoordBound
}

// AngleSample is the per-frame kinematic view consumed by the segmenter.
// Angles holds only the joint angles that are defined for the frame; a
// joint whose keypoints are missing or below the confidence floor is
// simply absent, never zeroed or interpolated.
type AngleSample struct {
	FrameIndex  int
	TimestampMs int64
	Angles      map[string]float64

	// WristY is the shooting-side wrist height in pixel space (y grows
	// downward). WristOK is false when the wrist was below the
	// confidence floor for this frame.
	WristY  float64
	WristOK bool
}

// Angle returns the named joint angle and whether it is defined.
func (s AngleSample) Angle(name string) (float64, bool) {
	v, ok := s.Angles[name]
	return v, ok
}
