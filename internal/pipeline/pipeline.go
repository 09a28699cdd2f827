// Package pipeline orchestrates one analysis run: fetch angle buffers,
// plan sampling, detect poses, compute angles, segment attempts, judge
// the checklist, score and gate the outcome.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hooplab/shotform/internal/adapters/judgment"
	"github.com/hooplab/shotform/internal/adapters/posedetect"
	"github.com/hooplab/shotform/internal/adapters/sampler"
	"github.com/hooplab/shotform/internal/adapters/videostore"
	"github.com/hooplab/shotform/internal/domain/checklist"
	"github.com/hooplab/shotform/internal/domain/fallback"
	"github.com/hooplab/shotform/internal/domain/model"
	"github.com/hooplab/shotform/internal/domain/pose"
	"github.com/hooplab/shotform/internal/domain/scoring"
	"github.com/hooplab/shotform/internal/domain/segment"
	"github.com/hooplab/shotform/pkg/logger"
	"github.com/hooplab/shotform/pkg/metrics"
)

// Default runner configuration constants.
const (
	defaultRunTimeout     = 5 * time.Minute
	defaultClipDurationMs = 15_000
)

// Stage names used in latency metrics.
const (
	stageFetch   = "fetch"
	stagePose    = "pose"
	stageAngles  = "angles"
	stageSegment = "segment"
	stageJudge   = "judge"
	stageScore   = "score"
)

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithTimeout bounds the wall time of one run.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithClipDurationMs sets the assumed recording length handed to the
// sampling planner. Real duration probing belongs to the decoder.
func WithClipDurationMs(ms int64) Option {
	return func(r *Runner) {
		if ms > 0 {
			r.clipDurationMs = ms
		}
	}
}

// WithPlanner overrides the sampling planner.
func WithPlanner(p *sampler.Planner) Option {
	return func(r *Runner) {
		if p != nil {
			r.planner = p
		}
	}
}

// WithAngleEngine overrides the joint-angle engine.
func WithAngleEngine(e *pose.Engine) Option {
	return func(r *Runner) {
		if e != nil {
			r.angles = e
		}
	}
}

// WithSegmenter overrides the shot segmenter.
func WithSegmenter(s *segment.Segmenter) Option {
	return func(r *Runner) {
		if s != nil {
			r.segmenter = s
		}
	}
}

// WithScorer overrides the scoring engine.
func WithScorer(e *scoring.Engine) Option {
	return func(r *Runner) {
		if e != nil {
			r.scorer = e
		}
	}
}

// WithPolicy overrides the fallback policy.
func WithPolicy(p *fallback.Policy) Option {
	return func(r *Runner) {
		if p != nil {
			r.policy = p
		}
	}
}

// WithLogger overrides the runner's logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// Runner executes analysis jobs. Safe for concurrent use: each run owns
// its working set; only the read-only checklist library is shared.
type Runner struct {
	store     videostore.Store
	extractor posedetect.Extractor
	detector  posedetect.Detector
	evaluator judgment.Evaluator
	library   *checklist.Library

	planner   *sampler.Planner
	angles    *pose.Engine
	segmenter *segment.Segmenter
	scorer    *scoring.Engine
	policy    *fallback.Policy

	timeout        time.Duration
	clipDurationMs int64
	logger         logger.Logger
}

// NewRunner creates a runner with configuration options. The evaluator
// and detector collaborators are wrapped so one transient failure is
// retried with the same inputs before becoming terminal for the run.
func NewRunner(
	store videostore.Store,
	extractor posedetect.Extractor,
	detector posedetect.Detector,
	evaluator judgment.Evaluator,
	library *checklist.Library,
	opts ...Option,
) *Runner {
	r := &Runner{
		store:          store,
		extractor:      extractor,
		detector:       posedetect.WithRetry(detector, "pose"),
		evaluator:      judgment.WithRetry(evaluator, "judgment"),
		library:        library,
		planner:        sampler.NewPlanner(),
		angles:         pose.NewEngine(),
		segmenter:      segment.NewSegmenter(),
		scorer:         scoring.NewEngine(),
		policy:         fallback.NewPolicy(),
		timeout:        defaultRunTimeout,
		clipDurationMs: defaultClipDurationMs,
		logger:         logger.Get().Named("pipeline"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one analysis job end to end.
func (r *Runner) Run(ctx context.Context, job model.AnalysisJob) (model.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	version, err := r.library.ForShotType(job.ShotType)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("checklist lookup: %w", err)
	}

	buffers, videoByRole := r.fetchBuffers(ctx, job)
	plan := r.planner.Plan(buffers)
	if err := ctx.Err(); err != nil {
		return model.AnalysisResult{}, err
	}

	framesByRole, err := r.detectPoses(ctx, job, videoByRole, plan)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	samples := r.computeAngles(framesByRole[model.AnglePrimary])
	if err := ctx.Err(); err != nil {
		return model.AnalysisResult{}, err
	}

	attempts, stats := r.segmentAttempts(samples)
	if err := ctx.Err(); err != nil {
		return model.AnalysisResult{}, err
	}

	evaluation, err := r.judge(ctx, job, attempts, samples)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	items := judgment.Merge(version, evaluation.Items, job.Overrides)
	signals := fallback.Signals{
		ContentValidity: evaluation.ContentConfidence,
		ShotCount:       stats.MeanConsistency,
		Evaluation:      evaluatedFraction(items),
	}
	decision := r.policy.Decide(attempts, signals)

	return r.assemble(job, version, attempts, items, evaluation.Items, signals, decision)
}

// fetchBuffers pulls each referenced angle from the video store. A
// missing object drops the angle from the plan, it never aborts the run.
func (r *Runner) fetchBuffers(ctx context.Context, job model.AnalysisJob) ([]sampler.Buffer, map[model.AngleRole][]byte) {
	defer stageTimer(stageFetch)()

	var buffers []sampler.Buffer
	videoByRole := make(map[model.AngleRole][]byte, len(job.AngleRefs))
	for _, role := range []model.AngleRole{model.AnglePrimary, model.AngleSecondary, model.AngleTertiary} {
		ref, ok := job.AngleRefs[role]
		if !ok {
			continue
		}
		data, err := r.store.Fetch(ctx, ref)
		if err != nil {
			r.logger.Warn(ctx, "angle buffer unavailable",
				logger.String("run_id", job.RunID.String()),
				logger.String("role", string(role)),
				logger.Error(err),
			)
			continue
		}
		videoByRole[role] = data
		buffers = append(buffers, sampler.Buffer{
			Role:       role,
			Ref:        ref,
			SizeBytes:  int64(len(data)),
			DurationMs: r.clipDurationMs,
		})
	}
	return buffers, videoByRole
}

// detectPoses extracts and pose-detects every planned angle. Angles are
// independent and processed concurrently. A collaborator error on any
// angle fails the run: an absent buffer degrades coverage, but a pose
// service that errors must never masquerade as undetectable footage.
func (r *Runner) detectPoses(
	ctx context.Context,
	job model.AnalysisJob,
	videoByRole map[model.AngleRole][]byte,
	plan sampler.Plan,
) (map[model.AngleRole][]pose.Frame, error) {
	defer stageTimer(stagePose)()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		frames   = make(map[model.AngleRole][]pose.Frame, len(plan))
		firstErr error
	)
	for role, anglePlan := range plan {
		video, ok := videoByRole[role]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(role model.AngleRole, anglePlan sampler.AnglePlan, video []byte) {
			defer wg.Done()
			out, err := posedetect.Run(ctx, r.extractor, r.detector, video, anglePlan)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("pose detection on %s angle: %w", role, err)
				}
				return
			}
			frames[role] = out
		}(role, anglePlan, video)
	}
	wg.Wait()

	if firstErr != nil {
		r.logger.Error(ctx, "pose detection failed",
			logger.String("run_id", job.RunID.String()),
			logger.Error(firstErr),
		)
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	total := 0
	for _, f := range frames {
		total += len(f)
	}
	metrics.RecordFramesSampled(total)
	return frames, nil
}

func (r *Runner) computeAngles(primary []pose.Frame) []pose.AngleSample {
	defer stageTimer(stageAngles)()
	return r.angles.Compute(primary)
}

func (r *Runner) segmentAttempts(samples []pose.AngleSample) ([]model.ShotAttempt, segment.Stats) {
	defer stageTimer(stageSegment)()

	attempts, stats := r.segmenter.Segment(samples)
	for range attempts {
		metrics.RecordAttemptSegmented()
	}
	for i := 0; i < stats.Discarded; i++ {
		metrics.RecordAttemptDiscarded()
	}
	return attempts, stats
}

// judge evaluates the most consistent attempt. With no attempts there is
// nothing to judge and the zero evaluation flows to the fallback policy.
func (r *Runner) judge(
	ctx context.Context,
	job model.AnalysisJob,
	attempts []model.ShotAttempt,
	samples []pose.AngleSample,
) (judgment.Evaluation, error) {
	defer stageTimer(stageJudge)()

	if len(attempts) == 0 {
		return judgment.Evaluation{}, nil
	}

	best := attempts[0]
	for _, a := range attempts[1:] {
		if a.Consistency > best.Consistency {
			best = a
		}
	}

	evaluation, err := r.evaluator.Evaluate(ctx, judgment.Request{
		ShotType: job.ShotType,
		Attempt:  best,
		Samples:  windowSamples(samples, best),
	})
	if err != nil {
		return judgment.Evaluation{}, fmt.Errorf("judgment: %w", err)
	}
	return evaluation, nil
}

// assemble scores (for full outcomes) and builds the validated result.
func (r *Runner) assemble(
	job model.AnalysisJob,
	version checklist.Version,
	attempts []model.ShotAttempt,
	items []model.ItemResult,
	automated []model.ItemResult,
	signals fallback.Signals,
	decision fallback.Decision,
) (model.AnalysisResult, error) {
	defer stageTimer(stageScore)()

	meta := model.Meta{
		FallbackReason: decision.Reason,
		AutomatedItems: automated,
	}
	var (
		perCategory map[string]float64
		global      *float64
	)

	if decision.Outcome == model.OutcomeFull {
		breakdown, err := r.scorer.Score(items, version)
		if err != nil {
			return model.AnalysisResult{}, fmt.Errorf("scoring: %w", err)
		}
		perCategory = breakdown.PerCategory
		global = breakdown.Global
		meta.Redistributions = breakdown.Redistributions
		meta.StarvedCategories = breakdown.Starved
		if global != nil {
			metrics.RecordGlobalScore(*global)
		}
	} else {
		reason := decision.Reason
		if reason == "" {
			reason = string(decision.Outcome)
		}
		items = model.ForceNotApplicable(items, reason)
	}

	for _, issue := range version.Validate(items) {
		meta.ChecklistIssues = append(meta.ChecklistIssues, issue.String())
	}

	confidence := minSignal(signals)
	return model.NewResult(job.RunID, job.ShotType, attempts, items,
		perCategory, global, confidence, decision.Outcome, meta)
}

// windowSamples returns the angle samples inside the attempt's frame
// window.
func windowSamples(samples []pose.AngleSample, a model.ShotAttempt) []pose.AngleSample {
	var out []pose.AngleSample
	for _, s := range samples {
		if s.FrameIndex >= a.StartFrame && s.FrameIndex <= a.EndFrame {
			out = append(out, s)
		}
	}
	return out
}

func evaluatedFraction(items []model.ItemResult) float64 {
	if len(items) == 0 {
		return 0
	}
	evaluated := 0
	for _, it := range items {
		if it.Status == model.StatusEvaluated {
			evaluated++
		}
	}
	return float64(evaluated) / float64(len(items))
}

func minSignal(s fallback.Signals) float64 {
	min := s.ContentValidity
	if s.ShotCount < min {
		min = s.ShotCount
	}
	if s.Evaluation < min {
		min = s.Evaluation
	}
	return min
}

func stageTimer(stage string) func() {
	start := time.Now()
	return func() {
		metrics.RecordStageLatency(stage, float64(time.Since(start).Milliseconds()))
	}
}
