package pose

import "math"

// Default engine configuration constants.
const (
	defaultConfidenceFloor = 0.3
	defaultFrameWidth      = 1280
	defaultFrameHeight     = 720
)

// Side selects which arm is the shooting arm.
type Side string

// Shooting sides.
const (
	SideRight Side = "right"
	SideLeft  Side = "left"
)

// Joint angle identifiers emitted by the engine.
const (
	AngleElbow    = "elbow"
	AngleShoulder = "shoulder"
	AngleHip      = "hip"
	AngleKnee     = "knee"
)

// triplet defines a joint angle by its three keypoints; the angle is
// measured at the middle point.
type triplet struct {
	a, mid, b string
}

func tripletsForSide(side Side) map[string]triplet {
	if side == SideLeft {
		return map[string]triplet{
			AngleElbow:    {LeftShoulder, LeftElbow, LeftWrist},
			AngleShoulder: {LeftHip, LeftShoulder, LeftElbow},
			AngleHip:      {LeftShoulder, LeftHip, LeftKnee},
			AngleKnee:     {LeftHip, LeftKnee, LeftAnkle},
		}
	}
	return map[string]triplet{
		AngleElbow:    {RightShoulder, RightElbow, RightWrist},
		AngleShoulder: {RightHip, RightShoulder, RightElbow},
		AngleHip:      {RightShoulder, RightHip, RightKnee},
		AngleKnee:     {RightHip, RightKnee, RightAnkle},
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithConfidenceFloor sets the minimum keypoint confidence below which a
// joint angle is undefined.
func WithConfidenceFloor(floor float64) Option {
	return func(e *Engine) {
		if floor >= 0 && floor <= 1 {
			e.confidenceFloor = floor
		}
	}
}

// WithFrameSize sets the pixel dimensions used to scale normalized
// coordinates.
func WithFrameSize(width, height int) Option {
	return func(e *Engine) {
		if width > 0 && height > 0 {
			e.frameWidth = float64(width)
			e.frameHeight = float64(height)
		}
	}
}

// WithShootingSide sets which arm the joint triplets are built from.
func WithShootingSide(side Side) Option {
	return func(e *Engine) {
		if side == SideLeft || side == SideRight {
			e.side = side
		}
	}
}

// Engine computes joint angles and derived kinematic signals per frame.
// It is stateless across frames; interpolation over undefined angles, if
// wanted at all, is the caller's decision.
type Engine struct {
	confidenceFloor float64
	frameWidth      float64
	frameHeight     float64
	side            Side
	triplets        map[string]triplet
}

// NewEngine creates an angle engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		confidenceFloor: defaultConfidenceFloor,
		frameWidth:      defaultFrameWidth,
		frameHeight:     defaultFrameHeight,
		side:            SideRight,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.triplets = tripletsForSide(e.side)
	return e
}

// Compute derives one AngleSample per input frame, order-preserving.
func (e *Engine) Compute(frames []Frame) []AngleSample {
	samples := make([]AngleSample, len(frames))
	for i, f := range frames {
		samples[i] = e.computeOne(f)
	}
	return samples
}

func (e *Engine) computeOne(f Frame) AngleSample {
	s := AngleSample{
		FrameIndex:  f.Index,
		TimestampMs: f.TimestampMs,
		Angles:      make(map[string]float64, len(e.triplets)),
	}

	scaleX, scaleY := 1.0, 1.0
	if f.normalized() {
		scaleX, scaleY = e.frameWidth, e.frameHeight
	}

	at := func(name string) (x, y float64, ok bool) {
		kp, found := f.Keypoint(name)
		if !found || kp.Confidence < e.confidenceFloor {
			return 0, 0, false
		}
		return kp.X * scaleX, kp.Y * scaleY, true
	}

	for id, tr := range e.triplets {
		ax, ay, aok := at(tr.a)
		mx, my, mok := at(tr.mid)
		bx, by, bok := at(tr.b)
		if !aok || !mok || !bok {
			continue
		}
		if deg, ok := angleAt(ax, ay, mx, my, bx, by); ok {
			s.Angles[id] = deg
		}
	}

	wristName := RightWrist
	if e.side == SideLeft {
		wristName = LeftWrist
	}
	if _, wy, ok := at(wristName); ok {
		s.WristY = wy
		s.WristOK = true
	}

	return s
}

// angleAt returns the angle in degrees at (mx,my) between the vectors to
// (ax,ay) and (bx,by), in [0,180]. It is undefined when either vector is
// degenerate.
func angleAt(ax, ay, mx, my, bx, by float64) (float64, bool) {
	v1x, v1y := ax-mx, ay-my
	v2x, v2y := bx-mx, by-my
	n1 := math.Hypot(v1x, v1y)
	n2 := math.Hypot(v2x, v2y)
	if n1 == 0 || n2 == 0 {
		return 0, false
	}
	cos := (v1x*v2x + v1y*v2y) / (n1 * n2)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, true
}
