// Command shotform runs the shot-form analysis service with its
// operational HTTP surface (metrics and health).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hooplab/shotform/internal/adapters/sampler"
	"github.com/hooplab/shotform/internal/app"
	"github.com/hooplab/shotform/internal/config"
	"github.com/hooplab/shotform/internal/domain/fallback"
	"github.com/hooplab/shotform/internal/domain/pose"
	"github.com/hooplab/shotform/internal/domain/segment"
	"github.com/hooplab/shotform/internal/pipeline"
	"github.com/hooplab/shotform/pkg/logger"
	"github.com/hooplab/shotform/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.RunQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithRunnerOptions(runnerOptions(cfg)...),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}

	// Operational HTTP surface: Prometheus metrics and liveness.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "stopped")
}

// runnerOptions maps the configuration onto the pipeline's components.
func runnerOptions(cfg *config.Config) []pipeline.Option {
	return []pipeline.Option{
		pipeline.WithTimeout(time.Duration(cfg.RunTimeoutSeconds) * time.Second),
		pipeline.WithClipDurationMs(cfg.MaxClipDurationMs),
		pipeline.WithPlanner(sampler.NewPlanner(
			sampler.WithPrimaryRate(int(cfg.PrimaryFrameRate)),
			sampler.WithSecondaryRate(int(cfg.SecondaryFrameRate)),
			sampler.WithMinRate(int(cfg.MinFrameRate)),
			sampler.WithMaxDurationMs(cfg.MaxClipDurationMs),
			sampler.WithFrameBudget(cfg.TotalFrameBudget),
		)),
		pipeline.WithAngleEngine(pose.NewEngine(
			pose.WithConfidenceFloor(cfg.PoseConfidenceFloor),
			pose.WithFrameSize(cfg.FrameWidthPixels, cfg.FrameHeightPixels),
		)),
		pipeline.WithSegmenter(segment.NewSegmenter(
			segment.WithTunables(segment.Tunables{
				MinMovementVelocity:  cfg.MinMovementVelocity,
				QuietFrames:          cfg.QuietFrames,
				DipConfirmFrames:     cfg.DipConfirmFrames,
				AscentMinVelocity:    cfg.AscentMinVelocity,
				ReleaseVelocityFloor: cfg.ReleaseVelocityFloor,
				ApexDelayFrames:      cfg.ApexDelayFrames,
				LandingVelocityEps:   cfg.LandingVelocityEps,
				LandingDebounce:      cfg.LandingDebounce,
				MaxAttemptFrames:     cfg.MaxAttemptFrames,
			}),
		)),
		pipeline.WithPolicy(fallback.NewPolicy(
			fallback.WithContentValidityFloor(cfg.ContentValidityFloor),
			fallback.WithEvaluationFloor(cfg.EvaluationFloor),
		)),
	}
}
