package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ytqueue/yt-queue/internal/config"
	"github.com/ytqueue/yt-queue/internal/domain"
	"github.com/ytqueue/yt-queue/internal/queue"
	"github.com/ytqueue/yt-queue/internal/store"
	"github.com/ytqueue/yt-queue/internal/ytdlp"
)

// fakeRunner scripts the external downloader: it replays canned output
// lines, optionally waits on gate or hangs until the context expires,
// then returns err.
type fakeRunner struct {
	mu    sync.Mutex
	lines []string
	err   error
	hang  bool
	gate  chan struct{}
	urls  []string
}

func (f *fakeRunner) Run(ctx context.Context, url, dir string, onLine ytdlp.LineFunc) error {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()

	for _, line := range f.lines {
		onLine(line)
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *fakeRunner) calledWith() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DownloadDir:     t.TempDir(),
		DownloadTimeout: time.Second,
	}
}

func startWorker(t *testing.T, s *store.JobStore, q *queue.Queue, runner ytdlp.Runner, cfg *config.Config) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(s, q, runner, cfg, newTestLogger()).Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("worker did not stop after cancellation")
		}
	})
}

func waitTerminal(t *testing.T, s *store.JobStore, id string) *domain.Job {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := s.Get(id)
		if err != nil {
			t.Fatalf("job disappeared: %v", err)
		}
		if job.Status.IsTerminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return nil
}

func TestWorker_CompletesJob(t *testing.T) {
	s := store.NewJobStore(10)
	q := queue.New()
	runner := &fakeRunner{lines: []string{
		"[youtube] Extracting URL: https://youtu.be/dQw4w9WgXcQ",
		"[download] Destination: My Video [dQw4w9WgXcQ].mp4",
		"[download]  45.2% of 1.23GiB at 2.34MiB/s ETA 00:05:23",
		"[download] 100% of 1.23GiB at 3.00MiB/s",
	}}
	startWorker(t, s, q, runner, testConfig(t))

	job := s.Create("https://youtu.be/dQw4w9WgXcQ")
	q.Enqueue(job.ID)

	final := waitTerminal(t, s, job.ID)
	assert.Equal(t, domain.StatusCompleted, final.Status)
	assert.Equal(t, "My Video [dQw4w9WgXcQ].mp4", final.OutputPath)
	assert.NotNil(t, final.StartedAt)
	assert.NotNil(t, final.CompletedAt)
	assert.Empty(t, final.Error)
	assert.Nil(t, final.Progress)
}

func TestWorker_FailsJobWithDiagnostic(t *testing.T) {
	s := store.NewJobStore(10)
	q := queue.New()
	runner := &fakeRunner{
		lines: []string{"ERROR: [youtube] dQw4w9WgXcQ: Video unavailable"},
		err:   errors.New("exit status 1"),
	}
	startWorker(t, s, q, runner, testConfig(t))

	job := s.Create("https://youtu.be/dQw4w9WgXcQ")
	q.Enqueue(job.ID)

	final := waitTerminal(t, s, job.ID)
	assert.Equal(t, domain.StatusFailed, final.Status)
	assert.Equal(t, "[youtube] dQw4w9WgXcQ: Video unavailable", final.Error)
	assert.Empty(t, final.OutputPath)
	assert.NotNil(t, final.CompletedAt)
	assert.Nil(t, final.Progress)
}

func TestWorker_TimeoutKillsJob(t *testing.T) {
	s := store.NewJobStore(10)
	q := queue.New()
	runner := &fakeRunner{hang: true}

	cfg := testConfig(t)
	cfg.DownloadTimeout = 50 * time.Millisecond
	startWorker(t, s, q, runner, cfg)

	job := s.Create("https://youtu.be/dQw4w9WgXcQ")
	q.Enqueue(job.ID)

	final := waitTerminal(t, s, job.ID)
	assert.Equal(t, domain.StatusFailed, final.Status)
	assert.Contains(t, final.Error, "timeout")
}

func TestWorker_ContinuesAfterFailure(t *testing.T) {
	s := store.NewJobStore(10)
	q := queue.New()
	runner := &fakeRunner{err: errors.New("exit status 1")}
	startWorker(t, s, q, runner, testConfig(t))

	first := s.Create("https://youtu.be/aaaaaaaaaaa")
	second := s.Create("https://youtu.be/bbbbbbbbbbb")
	q.Enqueue(first.ID)
	q.Enqueue(second.ID)

	f1 := waitTerminal(t, s, first.ID)
	f2 := waitTerminal(t, s, second.ID)
	assert.Equal(t, domain.StatusFailed, f1.Status)
	assert.Equal(t, domain.StatusFailed, f2.Status)
	assert.Equal(t, []string{first.URL, second.URL}, runner.calledWith())
}

func TestWorker_ServicesJobsInSubmissionOrder(t *testing.T) {
	s := store.NewJobStore(20)
	q := queue.New()
	runner := &fakeRunner{}
	startWorker(t, s, q, runner, testConfig(t))

	var ids, urls []string
	for _, u := range []string{
		"https://youtu.be/aaaaaaaaaaa",
		"https://youtu.be/bbbbbbbbbbb",
		"https://youtu.be/ccccccccccc",
		"https://youtu.be/ddddddddddd",
	} {
		job := s.Create(u)
		q.Enqueue(job.ID)
		ids = append(ids, job.ID)
		urls = append(urls, u)
	}

	for _, id := range ids {
		waitTerminal(t, s, id)
	}
	assert.Equal(t, urls, runner.calledWith())
}

func TestWorker_ProgressPercentNeverDecreases(t *testing.T) {
	s := store.NewJobStore(10)
	q := queue.New()
	// A second format restarting at a lower percentage must not regress
	// the job's percent.
	runner := &fakeRunner{
		lines: []string{
			"[download]  80.0% of 100.00MiB at 2.00MiB/s ETA 00:10",
			"[download]   5.0% of 20.00MiB at 1.00MiB/s ETA 00:20",
		},
		gate: make(chan struct{}),
	}
	startWorker(t, s, q, runner, testConfig(t))

	job := s.Create("https://youtu.be/dQw4w9WgXcQ")
	q.Enqueue(job.ID)

	live := waitProgress(t, s, job.ID, "1.00MiB/s")
	assert.Equal(t, domain.StatusDownloading, live.Status)
	assert.Equal(t, 80.0, live.Progress.Percent)

	close(runner.gate)
	final := waitTerminal(t, s, job.ID)
	assert.Equal(t, domain.StatusCompleted, final.Status)
	assert.Nil(t, final.Progress)
}

// waitProgress polls until the job reports live progress with the given
// speed reading.
func waitProgress(t *testing.T, s *store.JobStore, id, speed string) *domain.Job {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := s.Get(id)
		if err != nil {
			t.Fatalf("job disappeared: %v", err)
		}
		if job.Progress != nil && job.Progress.Speed == speed {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reported speed %s", id, speed)
	return nil
}

func TestWorker_AtMostOneDownloading(t *testing.T) {
	s := store.NewJobStore(10)
	q := queue.New()
	runner := &fakeRunner{hang: true}

	cfg := testConfig(t)
	cfg.DownloadTimeout = 150 * time.Millisecond
	startWorker(t, s, q, runner, cfg)

	for _, u := range []string{"https://youtu.be/aaaaaaaaaaa", "https://youtu.be/bbbbbbbbbbb"} {
		job := s.Create(u)
		q.Enqueue(job.ID)
	}

	deadline := time.Now().Add(400 * time.Millisecond)
	for time.Now().Before(deadline) {
		downloading := 0
		for _, j := range s.Recent(10) {
			if j.Status == domain.StatusDownloading {
				downloading++
			}
		}
		assert.LessOrEqual(t, downloading, 1)
		time.Sleep(5 * time.Millisecond)
	}
}
