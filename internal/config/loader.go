package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SHOTFORM_CONFIG is set
//  3. env (prefix SHOTFORM_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SHOTFORM_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys like SHOTFORM_WORKER_COUNT map to worker_count; underscores
	// are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("SHOTFORM_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "shotform_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.RunTimeoutSeconds < 1:
		return fmt.Errorf("%w: run_timeout_seconds must be positive", ErrInvalidConfig)
	case c.PrimaryFrameRate <= 0 || c.SecondaryFrameRate <= 0:
		return fmt.Errorf("%w: frame rates must be positive", ErrInvalidConfig)
	case c.MinFrameRate > c.PrimaryFrameRate:
		return fmt.Errorf("%w: min_frame_rate exceeds primary_frame_rate", ErrInvalidConfig)
	case c.TotalFrameBudget < 1:
		return fmt.Errorf("%w: total_frame_budget must be positive", ErrInvalidConfig)
	case c.PoseConfidenceFloor < 0 || c.PoseConfidenceFloor > 1:
		return fmt.Errorf("%w: pose_confidence_floor must be in [0,1]", ErrInvalidConfig)
	case c.ContentValidityFloor < 0 || c.ContentValidityFloor > 1:
		return fmt.Errorf("%w: content_validity_floor must be in [0,1]", ErrInvalidConfig)
	case c.EvaluationFloor < 0 || c.EvaluationFloor > 1:
		return fmt.Errorf("%w: evaluation_floor must be in [0,1]", ErrInvalidConfig)
	case c.MaxAttemptFrames < 1:
		return fmt.Errorf("%w: max_attempt_frames must be positive", ErrInvalidConfig)
	}
	return nil
}
