package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytqueue/yt-queue/internal/domain"
	errpkg "github.com/ytqueue/yt-queue/internal/errors"
)

// JobStore is the single source of truth for job state. It keeps jobs in
// insertion order and bounds history by evicting the oldest terminal jobs
// once the cap is exceeded. History is volatile: nothing survives a restart.
type JobStore struct {
	mu      sync.RWMutex
	jobs    map[string]*domain.Job
	order   []string
	maxJobs int
}

// NewJobStore creates a JobStore retaining at most maxJobs entries.
func NewJobStore(maxJobs int) *JobStore {
	return &JobStore{
		jobs:    make(map[string]*domain.Job),
		maxJobs: maxJobs,
	}
}

// Create allocates a new queued job for the given URL. The store never
// rejects; URL validation happens upstream at the API boundary.
func (s *JobStore) Create(url string) *domain.Job {
	job := &domain.Job{
		ID:        uuid.New().String(),
		URL:       url,
		Status:    domain.StatusQueued,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.evictLocked()
	s.mu.Unlock()

	return job.Clone()
}

// evictLocked drops the oldest terminal jobs while over the cap. Queued and
// downloading jobs are never evicted, so the queue never references a
// missing id.
func (s *JobStore) evictLocked() {
	if len(s.order) <= s.maxJobs {
		return
	}

	kept := s.order[:0]
	excess := len(s.order) - s.maxJobs
	for _, id := range s.order {
		if excess > 0 {
			if job, ok := s.jobs[id]; ok && job.Status.IsTerminal() {
				delete(s.jobs, id)
				excess--
				continue
			}
		}
		kept = append(kept, id)
	}
	s.order = kept
}

// Get returns a copy of the job with the given id.
func (s *JobStore) Get(id string) (*domain.Job, error) {
	s.mu.RLock()
	job, exists := s.jobs[id]
	s.mu.RUnlock()

	if !exists {
		return nil, errpkg.ErrJobNotFound
	}
	return job.Clone(), nil
}

// Update applies the mutation atomically under the store lock. Concurrent
// readers never observe a partially applied mutation.
func (s *JobStore) Update(id string, mutate func(*domain.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return errpkg.ErrJobNotFound
	}
	mutate(job)
	return nil
}

// Recent returns up to limit jobs, most recent first.
func (s *JobStore) Recent(limit int) []*domain.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recentLocked(limit)
}

func (s *JobStore) recentLocked(limit int) []*domain.Job {
	n := len(s.order)
	if limit > n {
		limit = n
	}

	recent := make([]*domain.Job, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		if job, ok := s.jobs[s.order[i]]; ok {
			recent = append(recent, job.Clone())
		}
	}
	return recent
}

// Current returns a copy of the at-most-one downloading job, or nil.
func (s *JobStore) Current() *domain.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentLocked()
}

func (s *JobStore) currentLocked() *domain.Job {
	for i := len(s.order) - 1; i >= 0; i-- {
		if job, ok := s.jobs[s.order[i]]; ok && job.Status == domain.StatusDownloading {
			return job.Clone()
		}
	}
	return nil
}

// Snapshot returns the current download and recent history from a single
// point-in-time view under one lock acquisition.
func (s *JobStore) Snapshot(limit int) (current *domain.Job, recent []*domain.Job) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentLocked(), s.recentLocked(limit)
}

// Len returns the number of retained jobs.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
