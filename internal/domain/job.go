package domain

import (
	"time"
)

// JobStatus represents the current state of a download Job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusDownloading JobStatus = "downloading"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// IsTerminal reports whether the status allows no further transitions.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Progress holds the parsed state of an in-flight download. Percent is
// monotonically non-decreasing for the lifetime of a job.
type Progress struct {
	Percent   float64 `json:"percent"`
	TotalSize string  `json:"total_size,omitempty"`
	Speed     string  `json:"speed,omitempty"`
	ETA       string  `json:"eta,omitempty"`
	Filename  string  `json:"filename,omitempty"`
}

// Job is one submitted download request and its tracked lifecycle state.
type Job struct {
	ID          string     `json:"job_id"`
	URL         string     `json:"url"`
	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Progress    *Progress  `json:"progress,omitempty"`
	Error       string     `json:"error,omitempty"`
	OutputPath  string     `json:"output_path,omitempty"`
}

// Clone returns a deep copy so concurrent readers never observe a job
// the worker is mutating.
func (j *Job) Clone() *Job {
	c := *j
	if j.Progress != nil {
		p := *j.Progress
		c.Progress = &p
	}
	return &c
}
