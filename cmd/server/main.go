// Command server runs the participation request HTTP API.
//
//	@title			Event Participation API
//	@version		1.0
//	@description	Admission control for event participation requests.
//	@BasePath		/
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"eventparticipation/config"
	_ "eventparticipation/docs"
	"eventparticipation/internal/adapters/directory"
	"eventparticipation/internal/adapters/email"
	httpdelivery "eventparticipation/internal/delivery/http"
	"eventparticipation/internal/delivery/http/controllers"
	"eventparticipation/internal/delivery/http/middleware"
	"eventparticipation/internal/domain"
	"eventparticipation/internal/repository/memory"
	"eventparticipation/internal/repository/postgres"
	"eventparticipation/internal/services"
)

const (
	notifySendTimeout = 10 * time.Second
	limiterIdleTTL    = 10 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var db *sql.DB
	if cfg.NeedsDB() {
		var err error
		db, err = postgres.Open(ctx, cfg.DBUrl, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, db, cfg.DirectoryDriver == config.DriverPostgres); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("database schema up to date")
		}
	}

	var requests domain.ParticipationRequestRepository
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory request store, data is lost on restart")
		requests = memory.NewParticipationRequestRepository()
	default:
		requests = postgres.NewParticipationRequestRepository(db, cfg.DBLockTimeout)
	}

	events, users, closeDirectory, err := newDirectories(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	defer closeDirectory()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	notifier := services.NewDecisionNotifier(users, mailer, email.NewTemplateRenderer(), notifySendTimeout, logger)

	admission := services.NewAdmissionService(requests, events, users, notifier, cfg.ServiceTimeout, logger)
	requestController := controllers.NewRequestController(logger, admission)

	var health httpdelivery.HealthCheck
	if db != nil {
		health = db.PingContext
	}
	router := httpdelivery.NewRouter(requestController, health)

	var limiter *middleware.LimiterStore
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewLimiterStore(cfg.RateLimitRPS, cfg.RateLimitBurst, limiterIdleTTL)
		limiter.StartJanitor(ctx, time.Minute)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpdelivery.Wrap(router, logger, limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "store", cfg.StoreDriver, "directory", cfg.DirectoryDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newDirectories builds the event and user directories, cached in Redis when
// REDIS_ADDR is set. The returned func releases the cache connection.
func newDirectories(ctx context.Context, cfg *config.Config, db *sql.DB, logger *slog.Logger) (domain.EventDirectory, domain.UserDirectory, func(), error) {
	var (
		events domain.EventDirectory
		users  domain.UserDirectory
	)
	switch cfg.DirectoryDriver {
	case config.DriverHTTP:
		client := directory.NewClient(directory.Config{
			EventServiceURL: cfg.EventServiceURL,
			UserServiceURL:  cfg.UserServiceURL,
			Timeout:         cfg.DirectoryTimeout,
			}, nil, logger)
		events, users = client, client
	default:
		events, users = postgres.NewEventDirectory(db), postgres.NewUserDirectory(db)
	}

	if cfg.RedisAddr == "" {
		return events, users, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("directory cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.DirectoryCacheTTL)

	cached := directory.NewCached(events, users, directory.NewRedisCache(rdb), logger, directory.WithCacheTTL(cfg.DirectoryCacheTTL))
	return cached, cached, func() { _ = rdb.Close() }, nil
}
