package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/white-jotter/white-jotter/internal/app"
	"github.com/white-jotter/white-jotter/internal/auth"
	"github.com/white-jotter/white-jotter/internal/platform/db"
	"github.com/white-jotter/white-jotter/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	authRepo := auth.NewRepository(pool)

	purgeTask, err := jobs.NewSessionPurgeTask(jobs.SessionPurgePayload{})
	if err != nil {
		logger.Error("build purge task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSessionPurge, Handler: jobs.NewSessionPurgeHandler(authRepo, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "@every 1h", Task: purgeTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
}
