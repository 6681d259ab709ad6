package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	h "github.com/ytqueue/yt-queue/internal/api/http"
	cfgpkg "github.com/ytqueue/yt-queue/internal/config"
	"github.com/ytqueue/yt-queue/internal/queue"
	svc "github.com/ytqueue/yt-queue/internal/service"
	"github.com/ytqueue/yt-queue/internal/store"
	"github.com/ytqueue/yt-queue/internal/worker"
	"github.com/ytqueue/yt-queue/internal/ytdlp"
)

func main() {
	_ = godotenv.Load()

	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfgpkg.SetupLogger(cfg)
	slog.Info("configuration loaded successfully")

	jobStore := store.NewJobStore(cfg.MaxStoredJobs)
	jobQueue := queue.New()
	runner := ytdlp.NewClient(cfg.YtdlpPath, cfg.YtdlpConfig)

	jobService := svc.NewJobService(jobStore, jobQueue, slog.Default())
	downloadWorker := worker.New(jobStore, jobQueue, runner, cfg, slog.Default())

	router := h.NewRouter(jobService, cfg.RecentJobsLimit, slog.Default())
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// A worker error means a broken invariant; let the process die
		// and the supervisor restart it.
		return downloadWorker.Run(gctx)
	})

	g.Go(func() error {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("service terminated", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}
