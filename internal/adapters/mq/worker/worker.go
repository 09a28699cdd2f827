// Package worker drains the run queue through the analysis pipeline and
// hands finished results to the repository.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/hooplab/shotform/internal/domain/model"
	"github.com/hooplab/shotform/pkg/logger"
	"github.com/hooplab/shotform/pkg/metrics"
)

// Default worker configuration constants.
const poolShutdownTimeout = 30 * time.Second

// Job is what workers read off the queue.
type Job = model.AnalysisJob

// Runner executes one analysis job end to end.
type Runner interface {
	Run(ctx context.Context, job Job) (model.AnalysisResult, error)
}

// Saver persists a finished result.
type Saver interface {
	Save(ctx context.Context, result model.AnalysisResult) error
}

// Forgetter releases a run id from duplicate tracking so a terminally
// failed run can be resubmitted.
type Forgetter interface {
	Unrecord(ctx context.Context, id string)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes analysis jobs until stopped.
type Worker struct {
	queue  Queue
	runner Runner
	saver  Saver
	forget Forgetter
	name   string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker's name for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger overrides the worker's logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithForgetter wires the duplicate tracker so failed runs can be
// resubmitted.
func WithForgetter(f Forgetter) Option {
	return func(w *Worker) {
		if f != nil {
			w.forget = f
		}
	}
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, runner Runner, saver Saver, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		runner:   runner,
		saver:    saver,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop until ctx is cancelled, the queue closes,
// or Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "run failed",
					logger.String("run_id", job.RunID.String()),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker, waiting for the in-flight job.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("worker shutdown: %w", ctx.Err())
	}
}

func (w *Worker) process(ctx context.Context, job Job) error {
	metrics.RecordRunStarted()

	result, err := w.runner.Run(ctx, job)
	if err != nil {
		w.fail(ctx, job)
		return fmt.Errorf("run %s: %w", job.RunID, err)
	}
	if err := w.saver.Save(ctx, result); err != nil {
		w.fail(ctx, job)
		return fmt.Errorf("save %s: %w", job.RunID, err)
	}

	metrics.RecordRunCompleted(string(result.Outcome))
	w.logger.Info(ctx, "run completed",
		logger.String("run_id", job.RunID.String()),
		logger.String("outcome", string(result.Outcome)),
	)
	return nil
}

// fail records the failure and forgets the run id so the submitter can
// retry it.
func (w *Worker) fail(ctx context.Context, job Job) {
	metrics.RecordRunFailed()
	if w.forget != nil {
		w.forget.Unrecord(ctx, job.RunID.String())
	}
}

// Pool manages a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	queue   Queue
	started bool

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers, passing opts to each.
// A non-positive count defaults to the number of CPUs.
func NewPool(workerCount int, q Queue, runner Runner, saver Saver, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewWorker(q, runner, saver, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	p.started = true
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Shutdown closes the queue and waits for every worker to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	if p.started {
		shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
		defer cancel()

		for i, w := range p.workers {
			select {
			case <-w.done:
			case <-shutdownCtx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			}
		}
	}

	metrics.UpdateWorkerCount(0)
	return nil
}
