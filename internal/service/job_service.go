package service

import (
	"log/slog"

	"github.com/ytqueue/yt-queue/internal/domain"
	"github.com/ytqueue/yt-queue/internal/metrics"
	"github.com/ytqueue/yt-queue/internal/queue"
	"github.com/ytqueue/yt-queue/internal/store"
)

// JobService accepts validated submissions into the store and queue, and
// composes read-only status snapshots for the API.
type JobService struct {
	store  *store.JobStore
	queue  *queue.Queue
	logger *slog.Logger
}

// NewJobService creates a JobService over the given store and queue.
func NewJobService(s *store.JobStore, q *queue.Queue, logger *slog.Logger) *JobService {
	return &JobService{
		store:  s,
		queue:  q,
		logger: logger,
	}
}

// Submit creates a job for the already-validated URL and enqueues it.
// The returned position counts the jobs queued or downloading ahead of it.
func (s *JobService) Submit(url string) (*domain.Job, int) {
	job := s.store.Create(url)

	// The length after the atomic append counts this job itself, so the
	// jobs queued ahead are one fewer; a claimed job has left the queue
	// but still runs ahead of it.
	position := s.queue.Enqueue(job.ID) - 1
	if s.store.Current() != nil {
		position++
	}

	metrics.JobsEnqueued.Inc()
	metrics.QueueLength.Set(float64(s.queue.Len()))
	s.logger.Info("job enqueued", "job_id", job.ID, "url", url, "queue_position", position)

	return job, position
}

// Get returns a copy of the job with the given id.
func (s *JobService) Get(id string) (*domain.Job, error) {
	return s.store.Get(id)
}

// Status composes the externally visible snapshot: queue length, the
// currently downloading job with live progress, and bounded recent history.
func (s *JobService) Status(recentLimit int) *domain.StatusResponse {
	current, recent := s.store.Snapshot(recentLimit)
	return &domain.StatusResponse{
		QueueSize:       s.queue.Len(),
		CurrentDownload: current,
		RecentJobs:      recent,
	}
}
