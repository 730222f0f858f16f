package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Dan9191/auth-service/internal/auth"
	"github.com/Dan9191/auth-service/internal/config"
	"github.com/Dan9191/auth-service/internal/handler"
	"github.com/Dan9191/auth-service/internal/health"
	"github.com/Dan9191/auth-service/internal/middleware"
	"github.com/Dan9191/auth-service/internal/notify"
	"github.com/Dan9191/auth-service/internal/ratelimit"
	"github.com/Dan9191/auth-service/internal/repository"
	"github.com/Dan9191/auth-service/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	app := &cli.App{
		Name:  "auth-service",
		Usage: "user registration and login API",
		Action: func(c *cli.Context) error {
			return serve(c.Context, logger)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "apply migrations and start the HTTP server",
				Action: func(c *cli.Context) error {
					return serve(c.Context, logger)
				},
			},
			{
				Name:  "migrate",
				Usage: "apply database migrations and exit",
				Action: func(c *cli.Context) error {
					return migrate(c.Context, logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatalf("auth-service: %v", err)
	}
}

func loadConfig(logger *logrus.Logger) (*config.Config, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return cfg, nil
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func migrate(ctx context.Context, logger *logrus.Logger) error {
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return fmt.Errorf("migrate requires STORE_DRIVER=%s", config.StoreDriverPostgres)
	}
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return repository.Migrate(ctx, db, logger)
}

func serve(ctx context.Context, logger *logrus.Logger) error {
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := health.NewChecker(logger, 2*time.Second)

	// Initialize store
	var repo repository.UserRepository
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := repository.Migrate(ctx, db, logger); err != nil {
			return err
		}
		pg := repository.NewPostgresRepository(db)
		checker.Add("database", pg)
		repo = pg
	default:
		logger.Warn("Using in-memory user store, data is lost on restart")
		mem := repository.NewMemoryRepository()
		checker.Add("memory", mem)
		repo = mem
	}

	// Initialize layers
	var opts []service.Option
	if cfg.LimiterEnabled() {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(redisOpts)
		defer client.Close()
		limiter := ratelimit.NewRedisLimiter(client, cfg.LoginMaxAttempts, cfg.LoginWindow)
		checker.Add("redis", limiter)
		opts = append(opts, service.WithLimiter(limiter))
	}
	if cfg.MailEnabled() {
		opts = append(opts, service.WithNotifier(notify.NewEmailNotifier(cfg, logger)))
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	svc := service.NewService(repo, hasher, tokens, logger, opts...)
	h := handler.NewHandler(svc, checker, logger)

	if err := checker.Start(cfg.HealthSchedule); err != nil {
		return err
	}
	defer checker.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           middleware.Wrap(h.Routes(), logger, cfg.ClientURL),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
