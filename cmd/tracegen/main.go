// Command tracegen generates a synthetic keypoint trace, runs it through
// the angle engine and shot segmenter, and prints the attempts it finds.
// Useful for eyeballing segmentation behavior without real footage.
package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/hooplab/shotform/internal/domain/model"
	"github.com/hooplab/shotform/internal/domain/pose"
	"github.com/hooplab/shotform/internal/domain/segment"
	"github.com/hooplab/shotform/internal/synthetic"
)

// Default trace parameters.
const (
	defaultShots      = 1
	defaultFPS        = 30
	defaultConfidence = 0.95
)

type attemptView struct {
	ID          int            `json:"id"`
	StartFrame  int            `json:"start_frame"`
	EndFrame    int            `json:"end_frame"`
	StartTimeMs int64          `json:"start_time_ms"`
	EndTimeMs   int64          `json:"end_time_ms"`
	Phases      map[string]int `json:"phases"`
	Incomplete  bool           `json:"incomplete"`
	Consistency float64        `json:"consistency"`
}

type output struct {
	Frames    int           `json:"frames"`
	Attempts  []attemptView `json:"attempts"`
	Discarded int           `json:"discarded"`
}

func main() {
	var (
		shots      = flag.Int("shots", defaultShots, "Number of shot attempts in the trace")
		fps        = flag.Int("fps", defaultFPS, "Trace frame rate")
		confidence = flag.Float64("confidence", defaultConfidence, "Keypoint confidence (below 0.3 simulates undetectable pose)")
		flat       = flag.Bool("flatline", false, "Generate a no-motion trace instead of shots")
	)
	flag.Parse()

	var frames []pose.Frame
	switch {
	case *flat:
		frames = synthetic.Flatline(300, synthetic.WithFPS(*fps))
	case *shots > 1:
		frames = synthetic.MultiShot(*shots, synthetic.WithFPS(*fps), synthetic.WithConfidence(*confidence))
	default:
		frames = synthetic.TextbookShot(synthetic.WithFPS(*fps), synthetic.WithConfidence(*confidence))
	}

	samples := pose.NewEngine().Compute(frames)
	attempts, stats := segment.NewSegmenter().Segment(samples)

	out := output{Frames: len(frames), Discarded: stats.Discarded}
	for _, a := range attempts {
		out.Attempts = append(out.Attempts, viewOf(a))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		os.Stderr.WriteString("encode failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func viewOf(a model.ShotAttempt) attemptView {
	phases := make(map[string]int, len(a.Phases))
	for _, p := range model.PhaseOrder {
		if f := a.PhaseFrame(p); f >= 0 {
			phases[string(p)] = f
		}
	}
	return attemptView{
		ID:          a.ID,
		StartFrame:  a.StartFrame,
		EndFrame:    a.EndFrame,
		StartTimeMs: a.StartTimeMs,
		EndTimeMs:   a.EndTimeMs,
		Phases:      phases,
		Incomplete:  a.Incomplete,
		Consistency: a.Consistency,
	}
}
