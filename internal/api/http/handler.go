package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ytqueue/yt-queue/internal/domain"
	errpkg "github.com/ytqueue/yt-queue/internal/errors"
	"github.com/ytqueue/yt-queue/internal/validation"
)

// JobServiceI defines the interface for job-related business logic.
type JobServiceI interface {
	Submit(url string) (*domain.Job, int)
	Get(id string) (*domain.Job, error)
	Status(recentLimit int) *domain.StatusResponse
}

// JobHandler handles HTTP requests for download jobs.
type JobHandler struct {
	jobService  JobServiceI
	validator   *validator.Validate
	recentLimit int
	logger      *slog.Logger
}

// NewJobHandler creates a new JobHandler with the provided service and logger.
func NewJobHandler(jobService JobServiceI, recentLimit int, logger *slog.Logger) *JobHandler {
	v := validator.New()
	if err := validation.Register(v); err != nil {
		logger.Error("failed to register URL validation rule", "error", err)
	}

	return &JobHandler{
		jobService:  jobService,
		validator:   v,
		recentLimit: recentLimit,
		logger:      logger,
	}
}

// SubmitDownload handles the HTTP POST /download request to enqueue a new job.
func (h *JobHandler) SubmitDownload(w http.ResponseWriter, r *http.Request) {
	var req domain.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "url", req.URL, "error", err)
		writeError(w, http.StatusBadRequest, "invalid YouTube URL")
		return
	}

	job, position := h.jobService.Submit(req.URL)

	writeJSON(w, http.StatusCreated, domain.DownloadAccepted{
		JobID:         job.ID,
		Status:        job.Status,
		URL:           job.URL,
		QueuePosition: position,
	})
}

// GetDownload handles the HTTP GET /download/{jobID} request.
func (h *JobHandler) GetDownload(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.jobService.Get(jobID)
	if err != nil {
		if errors.Is(err, errpkg.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error("failed to get job", "job_id", jobID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// GetStatus handles the HTTP GET /status request.
func (h *JobHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.jobService.Status(h.recentLimit))
}

// GetHealth handles the HTTP GET /health liveness request.
func (h *JobHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := h.jobService.Status(0)

	resp := domain.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		QueueSize: status.QueueSize,
	}
	if status.CurrentDownload != nil {
		resp.CurrentDownload = status.CurrentDownload.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
