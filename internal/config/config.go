// Package config defines service configuration structures and loading hooks.
//
// Every empirically tuned threshold of the pipeline lives here: phase
// transition parameters, confidence gates, sampling budgets and the
// concurrency model. Runs are reproducible given the same inputs and the
// same config snapshot; nothing reads ambient state at scoring time.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the metrics/health HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// RunQueueSize bounds the in-memory analysis job queue.
	RunQueueSize int `koanf:"run_queue_size"`

	// WorkerCount sets the number of concurrent analysis runs.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the duplicate-submission cache.
	DedupeSize int `koanf:"dedupe_size"`

	// RunTimeoutSeconds is the wall-clock ceiling for one analysis run.
	RunTimeoutSeconds int `koanf:"run_timeout_seconds"`

	// Frame sampling budgets. The primary angle is sampled denser than
	// secondary angles; the total cap bounds downstream pose-detection cost.
	PrimaryFrameRate    float64 `koanf:"primary_frame_rate"`
	SecondaryFrameRate  float64 `koanf:"secondary_frame_rate"`
	MinFrameRate        float64 `koanf:"min_frame_rate"`
	MaxClipDurationMs   int64   `koanf:"max_clip_duration_ms"`
	TotalFrameBudget    int     `koanf:"total_frame_budget"`
	FrameWidthPixels    int     `koanf:"frame_width_pixels"`
	FrameHeightPixels   int     `koanf:"frame_height_pixels"`
	PoseConfidenceFloor float64 `koanf:"pose_confidence_floor"`

	// Shot segmentation thresholds. Units are pixels per second for
	// velocities and frames for debounce windows.
	MinMovementVelocity  float64 `koanf:"min_movement_velocity"`
	QuietFrames          int     `koanf:"quiet_frames"`
	DipConfirmFrames     int     `koanf:"dip_confirm_frames"`
	AscentMinVelocity    float64 `koanf:"ascent_min_velocity"`
	ReleaseVelocityFloor float64 `koanf:"release_velocity_floor"`
	ApexDelayFrames      int     `koanf:"apex_delay_frames"`
	LandingVelocityEps   float64 `koanf:"landing_velocity_eps"`
	LandingDebounce      int     `koanf:"landing_debounce_frames"`
	MaxAttemptFrames     int     `koanf:"max_attempt_frames"`

	// Fallback policy confidence gates, all in [0,1].
	ContentValidityFloor float64 `koanf:"content_validity_floor"`
	EvaluationFloor      float64 `koanf:"evaluation_floor"`
}

// New creates a Config populated with defaults. The segmentation defaults
// are calibrated so a clean 30fps textbook shooting motion segments into
// exactly one attempt; deployments recalibrate against labeled footage.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9090",
		RunQueueSize:      1_000,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        100_000,
		RunTimeoutSeconds: 300,

		PrimaryFrameRate:    30,
		SecondaryFrameRate:  10,
		MinFrameRate:        5,
		MaxClipDurationMs:   15_000,
		TotalFrameBudget:    900,
		FrameWidthPixels:    1280,
		FrameHeightPixels:   720,
		PoseConfidenceFloor: 0.3,

		MinMovementVelocity:  40,
		QuietFrames:          5,
		DipConfirmFrames:     2,
		AscentMinVelocity:    120,
		ReleaseVelocityFloor: 0,
		ApexDelayFrames:      6,
		LandingVelocityEps:   30,
		LandingDebounce:      4,
		MaxAttemptFrames:     150,

		ContentValidityFloor: 0.4,
		EvaluationFloor:      0.35,
	}
}
