// Package metrics provides Prometheus metrics for the shot-form analysis
// pipeline. All metrics live on a custom registry so the default Go
// collectors do not leak into scrapes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline metrics
	runsStarted    prometheus.Counter
	runsCompleted  *prometheus.CounterVec
	runsFailed     prometheus.Counter
	stageLatency   *prometheus.HistogramVec
	framesSampled  prometheus.Counter
	attemptsFound  prometheus.Counter
	attemptsNoisy  prometheus.Counter
	runsDuplicate  prometheus.Counter
	scoreHistogram prometheus.Histogram

	// Collaborator metrics
	collaboratorRetries *prometheus.CounterVec
	collaboratorErrors  *prometheus.CounterVec

	// Queue and worker metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueRejects     prometheus.Counter
	workerCount      prometheus.Gauge
	resultsStored    prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // dedicated registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "shotform",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_started_total",
		Help:      "Total number of analysis runs started",
	})

	m.runsCompleted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "runs_completed_total",
			Help:      "Total number of analysis runs completed, by outcome",
		},
		[]string{"outcome"},
	)

	m.runsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_failed_total",
		Help:      "Total number of analysis runs that ended in a terminal error",
	})

	m.runsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_duplicate_total",
		Help:      "Total number of duplicate run submissions rejected",
	})

	m.stageLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_latency_milliseconds",
			Help:      "Latency of individual pipeline stages in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)

	m.framesSampled = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_sampled_total",
		Help:      "Total number of frames sampled across all angles",
	})

	m.attemptsFound = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attempts_segmented_total",
		Help:      "Total number of shot attempts segmented",
	})

	m.attemptsNoisy = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attempts_discarded_total",
		Help:      "Total number of candidate attempts discarded as noise",
	})

	m.scoreHistogram = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "global_score",
		Help:      "Distribution of global scores for full-outcome runs",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	m.collaboratorRetries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "collaborator_retries_total",
			Help:      "Total number of collaborator call retries, by collaborator",
		},
		[]string{"collaborator"},
	)

	m.collaboratorErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "collaborator_errors_total",
			Help:      "Total number of terminal collaborator failures, by collaborator",
		},
		[]string{"collaborator"},
	)

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued analysis jobs",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum run queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Run queue utilization ratio (size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of jobs enqueued",
	})

	m.queueRejects = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_reject_total",
		Help:      "Total number of jobs rejected by the queue",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of analysis workers",
	})

	m.resultsStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "results_stored",
		Help:      "Number of analysis results held by the repository",
	})
}

// RecordRunStarted increments the started-runs counter.
func RecordRunStarted() {
	globalManager.runsStarted.Inc()
}

// RecordRunCompleted increments the completed-runs counter for an outcome.
func RecordRunCompleted(outcome string) {
	globalManager.runsCompleted.WithLabelValues(outcome).Inc()
}

// RecordRunFailed increments the failed-runs counter.
func RecordRunFailed() {
	globalManager.runsFailed.Inc()
}

// RecordRunDuplicate increments the duplicate-submission counter.
func RecordRunDuplicate() {
	globalManager.runsDuplicate.Inc()
}

// RecordStageLatency records the latency of one pipeline stage.
func RecordStageLatency(stage string, latencyMs float64) {
	globalManager.stageLatency.WithLabelValues(stage).Observe(latencyMs)
}

// RecordFramesSampled adds to the sampled-frames counter.
func RecordFramesSampled(n int) {
	globalManager.framesSampled.Add(float64(n))
}

// RecordAttemptSegmented increments the segmented-attempts counter.
func RecordAttemptSegmented() {
	globalManager.attemptsFound.Inc()
}

// RecordAttemptDiscarded increments the discarded-candidates counter.
func RecordAttemptDiscarded() {
	globalManager.attemptsNoisy.Inc()
}

// RecordGlobalScore records a global score for a full-outcome run.
func RecordGlobalScore(score float64) {
	globalManager.scoreHistogram.Observe(score)
}

// RecordCollaboratorRetry increments the retry counter for a collaborator.
func RecordCollaboratorRetry(name string) {
	globalManager.collaboratorRetries.WithLabelValues(name).Inc()
}

// RecordCollaboratorError increments the terminal-failure counter for a collaborator.
func RecordCollaboratorError(name string) {
	globalManager.collaboratorErrors.WithLabelValues(name).Inc()
}

// UpdateQueueSize sets the current queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization gauge.
func UpdateQueueUtilization(ratio float64) {
	globalManager.queueUtilization.Set(ratio)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueReject increments the reject counter.
func RecordQueueReject() {
	globalManager.queueRejects.Inc()
}

// UpdateWorkerCount sets the worker count gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateResultsStored sets the stored-results gauge.
func UpdateResultsStored(count int) {
	globalManager.resultsStored.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by this package.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
