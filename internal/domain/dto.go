package domain

import (
	"time"
)

// DownloadRequest represents the request body for submitting a new download.
type DownloadRequest struct {
	URL string `json:"url" validate:"required,youtube_url"`
}

// DownloadAccepted is the response returned when a job has been enqueued.
type DownloadAccepted struct {
	JobID         string    `json:"job_id"`
	Status        JobStatus `json:"status"`
	URL           string    `json:"url"`
	QueuePosition int       `json:"queue_position"`
}

// StatusResponse is the overall queue status snapshot.
type StatusResponse struct {
	QueueSize       int    `json:"queue_size"`
	CurrentDownload *Job   `json:"current_download"`
	RecentJobs      []*Job `json:"recent_jobs"`
}

// HealthResponse is the liveness payload served on /health.
type HealthResponse struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	QueueSize       int       `json:"queue_size"`
	CurrentDownload string    `json:"current_download,omitempty"`
}
