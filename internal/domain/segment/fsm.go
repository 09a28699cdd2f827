// Package segment turns a primary-angle kinematic time series into discrete
// shot attempts via an explicit phase state machine.
package segment

import (
	"github.com/hooplab/shotform/internal/domain/model"
	"github.com/hooplab/shotform/internal/domain/pose"
)

// State is one phase of the segmentation machine.
type State int

// Machine states. Each Idle->...->Landing cycle yields one attempt or is
// discarded as noise.
const (
	StateIdle State = iota
	StateLoad
	StateAscent
	StateRelease
	StateApex
	StateLanding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoad:
		return "load"
	case StateAscent:
		return "ascent"
	case StateRelease:
		return "release"
	case StateApex:
		return "apex"
	case StateLanding:
		return "landing"
	}
	return "unknown"
}

// Tunables are the empirically calibrated transition parameters.
// Velocities are in pixels per second (positive is upward), windows in
// frames.
type Tunables struct {
	MinMovementVelocity  float64
	QuietFrames          int
	DipConfirmFrames     int
	AscentMinVelocity    float64
	ReleaseVelocityFloor float64
	ApexDelayFrames      int
	LandingVelocityEps   float64
	LandingDebounce      int
	MaxAttemptFrames     int
}

// DefaultTunables returns the parameters calibrated for 30fps footage.
func DefaultTunables() Tunables {
	return Tunables{
		MinMovementVelocity:  40,
		QuietFrames:          5,
		DipConfirmFrames:     2,
		AscentMinVelocity:    120,
		ReleaseVelocityFloor: 0,
		ApexDelayFrames:      6,
		LandingVelocityEps:   30,
		LandingDebounce:      4,
		MaxAttemptFrames:     150,
	}
}

// How long the elbow angle may stay undefined during Load before the
// machine falls back to velocity-only ascent detection. Attempts taking
// this path have no ascent phase and come out incomplete.
const elbowFallbackFrames = 10

// candidate accumulates one in-flight attempt.
type candidate struct {
	startFrame int
	startTs    int64
	endFrame   int
	endTs      int64

	load    *int
	ascent  *int
	release *int
	apex    *int
	landing *int

	frames  int
	defined int

	ascentSamples int
	ascentUpward  int

	minElbow      float64
	minElbowFrame int
	haveElbow     bool
	riseStreak    int
	noElbowStreak int

	apexCountdown int
	landingStreak int
}

// Machine is the phase state machine. Step is deterministic: identical
// sample sequences under identical tunables always produce identical
// attempt boundaries. It never errors on degenerate input; an
// all-undefined series simply keeps it in Idle.
type Machine struct {
	cfg   Tunables
	state State

	quiet int

	prevWristY float64
	prevTs     int64
	hasPrev    bool
	prevVel    float64
	prevVelOK  bool

	cur       candidate
	discarded int
}

// NewMachine creates a machine with the given tunables.
func NewMachine(cfg Tunables) *Machine {
	return &Machine{cfg: cfg, state: StateIdle}
}

// State returns the current machine state.
func (m *Machine) State() State { return m.state }

// Discarded returns the number of candidates discarded as noise so far.
func (m *Machine) Discarded() int { return m.discarded }

// Step advances the machine by one sample and returns the attempt emitted
// by this transition, if any.
func (m *Machine) Step(s pose.AngleSample) *model.ShotAttempt {
	vel, velOK := m.velocity(s)

	var emitted *model.ShotAttempt

	switch m.state {
	case StateIdle:
		m.stepIdle(s, vel, velOK)
	case StateLoad:
		m.stepLoad(s, vel, velOK)
	case StateAscent:
		m.stepAscent(s, vel, velOK)
	case StateRelease:
		m.stepRelease(s)
	case StateApex:
		m.stepApex(s, vel, velOK)
	case StateLanding:
		emitted = m.close()
	}

	if m.state != StateIdle && m.state != StateLanding {
		m.track(s, vel, velOK)
	}

	m.prevVel, m.prevVelOK = vel, velOK
	return emitted
}

// Flush terminates the series. A candidate that already passed Release is
// closed as incomplete; anything earlier is discarded as a false start.
func (m *Machine) Flush() *model.ShotAttempt {
	switch m.state {
	case StateRelease, StateApex, StateLanding:
		return m.close()
	case StateLoad, StateAscent:
		m.discard()
	case StateIdle:
	}
	return nil
}

func (m *Machine) stepIdle(s pose.AngleSample, vel float64, velOK bool) {
	if !velOK {
		return
	}
	if abs(vel) < m.cfg.MinMovementVelocity {
		m.quiet++
		return
	}
	// Movement after a quiescent window opens a candidate; movement
	// without one is body adjustment noise.
	if m.quiet >= m.cfg.QuietFrames {
		m.begin(s)
	}
	m.quiet = 0
}

func (m *Machine) stepLoad(s pose.AngleSample, vel float64, velOK bool) {
	if m.expire() {
		return
	}

	elbow, elbowOK := s.Angle(pose.AngleElbow)
	if elbowOK {
		m.cur.noElbowStreak = 0
		switch {
		case !m.cur.haveElbow || elbow < m.cur.minElbow:
			m.cur.minElbow = elbow
			m.cur.minElbowFrame = s.FrameIndex
			m.cur.haveElbow = true
			m.cur.riseStreak = 0
		case elbow > m.cur.minElbow:
			m.cur.riseStreak++
		}
	} else {
		m.cur.noElbowStreak++
	}

	upward := velOK && vel >= m.cfg.AscentMinVelocity && m.prevVelOK && m.prevVel > 0

	if m.cur.haveElbow && m.cur.riseStreak >= m.cfg.DipConfirmFrames && upward {
		dip := m.cur.minElbowFrame
		m.cur.ascent = &dip
		m.state = StateAscent
		return
	}

	// Velocity-only fallback when the elbow cannot be resolved for long
	// enough; the resulting attempt has no ascent phase.
	if m.cur.noElbowStreak >= elbowFallbackFrames && upward {
		m.state = StateAscent
	}
}

func (m *Machine) stepAscent(s pose.AngleSample, vel float64, velOK bool) {
	if m.expire() {
		return
	}
	m.cur.ascentSamples++
	if velOK && vel > 0 {
		m.cur.ascentUpward++
	}

	// Set point passed: sharp deceleration through the floor after
	// sustained upward motion marks the release.
	if velOK && m.prevVelOK && m.prevVel > 0 && vel <= m.cfg.ReleaseVelocityFloor {
		f := s.FrameIndex
		m.cur.release = &f
		m.cur.apexCountdown = m.cfg.ApexDelayFrames
		m.state = StateRelease
	}
}

func (m *Machine) stepRelease(s pose.AngleSample) {
	// A fixed short window after release bounds the attempt without ball
	// tracking.
	m.cur.apexCountdown--
	if m.cur.apexCountdown <= 0 {
		f := s.FrameIndex
		m.cur.apex = &f
		m.cur.landingStreak = 0
		m.state = StateApex
	}
}

func (m *Machine) stepApex(s pose.AngleSample, vel float64, velOK bool) {
	if velOK && abs(vel) <= m.cfg.LandingVelocityEps {
		m.cur.landingStreak++
	} else {
		m.cur.landingStreak = 0
	}
	if m.cur.landingStreak >= m.cfg.LandingDebounce {
		f := s.FrameIndex
		m.cur.landing = &f
		m.cur.endFrame = s.FrameIndex
		m.cur.endTs = s.TimestampMs
		m.state = StateLanding
	}
}

// begin opens a new candidate at the given sample.
func (m *Machine) begin(s pose.AngleSample) {
	f := s.FrameIndex
	m.cur = candidate{
		startFrame: s.FrameIndex,
		startTs:    s.TimestampMs,
		load:       &f,
	}
	m.state = StateLoad
}

// expire discards the candidate as a false start when it fails to reach
// Release within the duration bound. Returns true when discarded.
func (m *Machine) expire() bool {
	if m.cur.frames <= m.cfg.MaxAttemptFrames {
		return false
	}
	m.discard()
	return true
}

func (m *Machine) discard() {
	m.discarded++
	m.cur = candidate{}
	m.state = StateIdle
	m.quiet = 0
}

// track updates per-candidate sample accounting.
func (m *Machine) track(s pose.AngleSample, _ float64, velOK bool) {
	m.cur.frames++
	if _, ok := s.Angle(pose.AngleElbow); ok && velOK {
		m.cur.defined++
	}
	m.cur.endFrame = s.FrameIndex
	m.cur.endTs = s.TimestampMs
}

// close emits the finished candidate and returns to Idle.
func (m *Machine) close() *model.ShotAttempt {
	c := m.cur
	attempt := &model.ShotAttempt{
		StartFrame:  c.startFrame,
		EndFrame:    c.endFrame,
		StartTimeMs: c.startTs,
		EndTimeMs:   c.endTs,
		Phases: map[model.Phase]*int{
			model.PhaseLoad:    c.load,
			model.PhaseAscent:  c.ascent,
			model.PhaseRelease: c.release,
			model.PhaseApex:    c.apex,
			model.PhaseLanding: c.landing,
		},
		Consistency: c.consistency(),
	}
	attempt.Incomplete = c.load == nil || c.ascent == nil || c.release == nil ||
		c.apex == nil || c.landing == nil

	m.cur = candidate{}
	m.state = StateIdle
	m.quiet = 0
	return attempt
}

// velocity returns the wrist vertical velocity in pixels per second,
// positive upward. Image y grows downward, hence the sign flip.
func (m *Machine) velocity(s pose.AngleSample) (float64, bool) {
	if !s.WristOK {
		return 0, false
	}
	defer func() {
		m.prevWristY = s.WristY
		m.prevTs = s.TimestampMs
		m.hasPrev = true
	}()
	if !m.hasPrev || s.TimestampMs <= m.prevTs {
		return 0, false
	}
	dt := float64(s.TimestampMs-m.prevTs) / 1000.0
	return (m.prevWristY - s.WristY) / dt, true
}

// consistency scores the internal coherence of the candidate window:
// the share of fully defined samples plus how monotonic the ascent was.
func (c candidate) consistency() float64 {
	if c.frames == 0 {
		return 0
	}
	definedRatio := float64(c.defined) / float64(c.frames)
	progression := 1.0
	if c.ascentSamples > 0 {
		progression = float64(c.ascentUpward) / float64(c.ascentSamples)
	}
	return 0.7*definedRatio + 0.3*progression
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
