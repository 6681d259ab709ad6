package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ytqueue/yt-queue/internal/config"
	"github.com/ytqueue/yt-queue/internal/domain"
	errpkg "github.com/ytqueue/yt-queue/internal/errors"
	"github.com/ytqueue/yt-queue/internal/metrics"
	"github.com/ytqueue/yt-queue/internal/progress"
	"github.com/ytqueue/yt-queue/internal/queue"
	"github.com/ytqueue/yt-queue/internal/store"
	"github.com/ytqueue/yt-queue/internal/ytdlp"
)

// Worker drains the queue one job at a time: it claims the job, runs the
// external downloader, translates its output into progress updates, and
// finalizes the job on every exit path. Exactly one Worker runs per process.
type Worker struct {
	store  *store.JobStore
	queue  *queue.Queue
	runner ytdlp.Runner
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Worker. It does not start the loop; call Run.
func New(s *store.JobStore, q *queue.Queue, runner ytdlp.Runner, cfg *config.Config, logger *slog.Logger) *Worker {
	return &Worker{
		store:  s,
		queue:  q,
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes the sequential loop until ctx is cancelled. A job failure
// never aborts the loop; a broken store invariant does, and the returned
// error is fatal to the process.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("download worker started")

	for {
		id, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				w.logger.Info("download worker stopped")
				return nil
			}
			return err
		}
		metrics.QueueLength.Set(float64(w.queue.Len()))

		if err := w.process(ctx, id); err != nil {
			return fmt.Errorf("worker invariant broken on job %s: %w", id, err)
		}
	}
}

// process runs one job from claim to terminal state. It returns an error
// only when the store contradicts the single-worker invariants.
func (w *Worker) process(ctx context.Context, id string) error {
	job, err := w.store.Get(id)
	if err != nil {
		// Dequeued ids always outlive the queue entry: eviction skips
		// non-terminal jobs.
		return err
	}

	if err := w.store.Update(id, func(j *domain.Job) {
		now := time.Now()
		j.Status = domain.StatusDownloading
		j.StartedAt = &now
		j.Progress = &domain.Progress{}
	}); err != nil {
		return err
	}

	w.logger.Info("starting download", "job_id", id, "url", job.URL)
	started := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, w.cfg.DownloadTimeout)
	defer cancel()

	var lastDestination string
	var lastDiagnostic string

	runErr := w.runner.Run(runCtx, job.URL, w.cfg.DownloadDir, func(line string) {
		ev := progress.Parse(line)
		switch ev.Kind {
		case progress.Update:
			w.applyProgress(id, ev)
			if ev.Message != "" {
				lastDestination = ev.Message
			}
		case progress.Success:
			if ev.Filename != "" && lastDestination == "" {
				lastDestination = filepath.Join(w.cfg.DownloadDir, ev.Filename)
			}
		case progress.Failure:
			lastDiagnostic = ev.Message
			w.logger.Warn("downloader reported error", "job_id", id, "error", ev.Message)
		case progress.Ignored:
		}
	})

	metrics.DownloadDuration.Observe(time.Since(started).Seconds())

	if runErr != nil {
		return w.finalizeFailed(id, runErr, lastDiagnostic)
	}
	return w.finalizeCompleted(id, lastDestination)
}

// applyProgress merges a parsed update into the job. Percent is kept
// monotonic; stale lower readings (e.g. a second format starting at 0%)
// update speed and ETA only.
func (w *Worker) applyProgress(id string, ev progress.Event) {
	err := w.store.Update(id, func(j *domain.Job) {
		if j.Progress == nil {
			j.Progress = &domain.Progress{}
		}
		if ev.Percent >= j.Progress.Percent {
			j.Progress.Percent = ev.Percent
		}
		if ev.TotalSize != "" {
			j.Progress.TotalSize = ev.TotalSize
		}
		if ev.Speed != "" {
			j.Progress.Speed = ev.Speed
		}
		if ev.ETA != "" {
			j.Progress.ETA = ev.ETA
		}
		if ev.Filename != "" {
			j.Progress.Filename = ev.Filename
		}
	})
	if err != nil {
		w.logger.Error("progress update lost", "job_id", id, "error", err)
	}
}

func (w *Worker) finalizeCompleted(id, outputPath string) error {
	metrics.JobsCompleted.Inc()
	w.logger.Info("download completed", "job_id", id, "output_path", outputPath)

	return w.store.Update(id, func(j *domain.Job) {
		now := time.Now()
		j.Status = domain.StatusCompleted
		j.CompletedAt = &now
		j.OutputPath = outputPath
		// Progress is exposed only while downloading.
		j.Progress = nil
	})
}

func (w *Worker) finalizeFailed(id string, runErr error, diagnostic string) error {
	msg := diagnostic
	switch {
	case errors.Is(runErr, context.DeadlineExceeded):
		msg = fmt.Sprintf("%s (limit %s)", errpkg.ErrDownloadTimeout, w.cfg.DownloadTimeout)
		metrics.JobsTimedOut.Inc()
	case msg == "":
		msg = runErr.Error()
	}

	metrics.JobsFailed.Inc()
	w.logger.Error("download failed", "job_id", id, "error", msg)

	return w.store.Update(id, func(j *domain.Job) {
		now := time.Now()
		j.Status = domain.StatusFailed
		j.CompletedAt = &now
		j.Error = msg
		j.Progress = nil
	})
}
