package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yt_queue_jobs_enqueued_total",
		Help: "Total number of jobs accepted into the queue",
	})

	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yt_queue_jobs_completed_total",
		Help: "Total number of jobs completed successfully",
	})

	JobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yt_queue_jobs_failed_total",
		Help: "Total number of jobs that ended in failure",
	})

	JobsTimedOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yt_queue_jobs_timed_out_total",
		Help: "Total number of jobs killed by the execution timeout",
	})

	DownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yt_queue_download_duration_seconds",
		Help:    "Wall-clock duration of download executions in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	QueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "yt_queue_pending_jobs",
		Help: "Number of jobs currently waiting in the queue",
	})
)
