package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/white-jotter/white-jotter/internal/app"
	"github.com/white-jotter/white-jotter/internal/auth"
	"github.com/white-jotter/white-jotter/internal/observability"
	"github.com/white-jotter/white-jotter/internal/platform/db"
	"github.com/white-jotter/white-jotter/internal/rbac"
	"github.com/white-jotter/white-jotter/internal/roles"
	"github.com/white-jotter/white-jotter/internal/shared"
	"github.com/white-jotter/white-jotter/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "wj_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, metrics)

	graph := rbac.NewRepository(pool)
	resolver := rbac.NewResolver(graph)
	rbacMiddleware := rbac.Middleware{Resolver: resolver, Logger: logger}
	menusHandler := rbac.NewMenusHandler(logger, resolver)

	rolesService := roles.NewService(graph)
	rolesHandler := roles.NewHandler(logger, rolesService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, graph)
	usersHandler := users.NewHandler(logger, usersService)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		AuthHandler:    authHandler,
		RolesHandler:   rolesHandler,
		UsersHandler:   usersHandler,
		MenusHandler:   menusHandler,
		RBACMiddleware: rbacMiddleware,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
