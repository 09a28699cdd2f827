// Package app wires the analysis service together: run queue, worker
// pool, deduper, pipeline runner and result repository.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/hooplab/shotform/internal/adapters/judgment"
	runqueue "github.com/hooplab/shotform/internal/adapters/mq/queue"
	workerpool "github.com/hooplab/shotform/internal/adapters/mq/worker"
	"github.com/hooplab/shotform/internal/adapters/posedetect"
	"github.com/hooplab/shotform/internal/adapters/repository"
	"github.com/hooplab/shotform/internal/adapters/videostore"
	"github.com/hooplab/shotform/internal/domain/checklist"
	"github.com/hooplab/shotform/internal/domain/dedupe"
	"github.com/hooplab/shotform/internal/domain/model"
	"github.com/hooplab/shotform/internal/pipeline"
	"github.com/hooplab/shotform/pkg/logger"
	"github.com/hooplab/shotform/pkg/metrics"
)

// Service runs the shot-form analysis system end to end. Construct with
// New, then Start before submitting jobs.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     videostore.Store
	repo      repository.ResultRepository
	deduper   dedupe.Deduper
	queue     runqueue.Queue
	pool      *workerpool.Pool
	library   *checklist.Library
	extractor posedetect.Extractor
	detector  posedetect.Detector
	evaluator judgment.Evaluator

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	runnerOpts  []pipeline.Option

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of concurrent analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the run queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the duplicate-run cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithVideoStore sets the video storage collaborator.
func WithVideoStore(store videostore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRepository sets the result repository.
func WithRepository(repo repository.ResultRepository) Option {
	return func(s *Service) {
		if repo != nil {
			s.repo = repo
		}
	}
}

// WithExtractor sets the frame extraction collaborator.
func WithExtractor(ex posedetect.Extractor) Option {
	return func(s *Service) {
		if ex != nil {
			s.extractor = ex
		}
	}
}

// WithDetector sets the pose-detection collaborator.
func WithDetector(det posedetect.Detector) Option {
	return func(s *Service) {
		if det != nil {
			s.detector = det
		}
	}
}

// WithEvaluator sets the checklist-judgment collaborator.
func WithEvaluator(ev judgment.Evaluator) Option {
	return func(s *Service) {
		if ev != nil {
			s.evaluator = ev
		}
	}
}

// WithRunnerOptions forwards options to the pipeline runner.
func WithRunnerOptions(opts ...pipeline.Option) Option {
	return func(s *Service) {
		s.runnerOpts = append(s.runnerOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration. Collaborators
// default to the in-memory and stub implementations, which is what tests
// and local runs want; production wiring injects real ones.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1000,
		dedupeSize:  100_000,
		library:     checklist.NewLibrary(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}
	if s.store == nil {
		s.store = videostore.NewInMemoryStore()
	}
	if s.repo == nil {
		s.repo = repository.NewInMemoryRepository()
	}
	if s.extractor == nil {
		s.extractor = posedetect.StubExtractor{}
	}
	if s.detector == nil {
		s.detector = posedetect.NewTraceDetector(nil)
	}
	if s.evaluator == nil {
		s.evaluator = judgment.NewStubEvaluator(s.library)
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = runqueue.NewInMemoryQueue(runqueue.WithCapacity(s.queueSize))

	runner := pipeline.NewRunner(s.store, s.extractor, s.detector, s.evaluator, s.library, s.runnerOpts...)
	s.pool = workerpool.NewPool(s.workerCount, s.queue, runner, s.repo,
		workerpool.WithForgetter(s.deduper))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop drains the queue and shuts the worker pool down.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping analysis service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("pool shutdown: %w", err)
	}
	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
	return nil
}

// Submit enqueues one analysis job. Duplicate run ids are rejected; a
// full queue rejects and forgets the id so the caller can retry.
func (s *Service) Submit(ctx context.Context, job model.AnalysisJob) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	if s.deduper.SeenAndRecord(ctx, job.RunID.String()) {
		metrics.RecordRunDuplicate()
		return fmt.Errorf("%w: %s", ErrDuplicateRun, job.RunID)
	}
	if !s.queue.Enqueue(ctx, job) {
		s.deduper.Unrecord(ctx, job.RunID.String())
		return fmt.Errorf("%w: %s", ErrQueueFull, job.RunID)
	}

	s.logger.Debug(ctx, "run submitted",
		logger.String("run_id", job.RunID.String()),
		logger.String("shot_type", string(job.ShotType)),
	)
	return nil
}

// Result returns the stored result for a run.
func (s *Service) Result(ctx context.Context, runID uuid.UUID) (model.AnalysisResult, error) {
	return s.repo.Get(ctx, runID)
}

// ResultsByOutcome lists stored results with the given outcome.
func (s *Service) ResultsByOutcome(ctx context.Context, outcome model.Outcome) ([]model.AnalysisResult, error) {
	return s.repo.ListByOutcome(ctx, outcome)
}

// Stats is a point-in-time view of the service's internals.
type Stats struct {
	QueueDepth  int
	Workers     int
	TrackedRuns int64
}

// Stats returns current queue and worker occupancy.
func (s *Service) Stats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return Stats{}
	}
	return Stats{
		QueueDepth:  s.queue.Len(ctx),
		Workers:     s.pool.Size(),
		TrackedRuns: s.deduper.Size(),
	}
}
