// Package worker runs periodic background jobs.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/loja1/projectohibrido/internal/telemetry"
)

// Job is a unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Config holds worker configuration
type Config struct {
	// WorkerID uniquely identifies this worker instance in logs
	WorkerID string

	// PollInterval is how often every job runs
	PollInterval time.Duration

	// Timeout bounds a single job run
	Timeout time.Duration
}

// Worker runs its jobs on a fixed interval until stopped
type Worker struct {
	config  Config
	jobs    []Job
	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger
}

// NewWorker creates a new background job worker
func NewWorker(config Config, logger *slog.Logger, metrics *telemetry.BusinessMetrics, jobs ...Job) *Worker {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if config.PollInterval == 0 {
		config.PollInterval = time.Hour
	}
	if config.Timeout == 0 {
		config.Timeout = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		config:  config,
		jobs:    jobs,
		metrics: metrics,
		logger:  logger,
	}
}

// Start runs every job once, then again on each tick, until ctx is
// cancelled. It returns nil on cancellation.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting",
		"worker_id", w.config.WorkerID,
		"poll_interval", w.config.PollInterval,
		"jobs", len(w.jobs),
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down", "worker_id", w.config.WorkerID)
			return nil
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce runs every job concurrently and waits for all of them.
func (w *Worker) RunOnce(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range w.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			w.process(ctx, job)
		}(job)
	}
	wg.Wait()
}

func (w *Worker) process(ctx context.Context, job Job) {
	jobCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	start := time.Now()
	err := job.Run(jobCtx)
	w.metrics.JobRun(job.Name(), err)

	if err != nil {
		w.logger.Error("job failed",
			"worker_id", w.config.WorkerID,
			"job_type", job.Name(),
			"error", err,
		)
		return
	}
	w.logger.Debug("job completed",
		"worker_id", w.config.WorkerID,
		"job_type", job.Name(),
		"duration", time.Since(start),
	)
}
