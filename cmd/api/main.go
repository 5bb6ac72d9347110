// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Contactbook HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Run database migrations (idempotent).
//  5. Connect to Redis.
//  6. Start the mail queue and the avatar storage client.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/taibuivan/contactbook/internal/api"
	"github.com/taibuivan/contactbook/internal/contacts"
	"github.com/taibuivan/contactbook/internal/platform/config"
	"github.com/taibuivan/contactbook/internal/platform/constants"
	"github.com/taibuivan/contactbook/internal/platform/mail"
	"github.com/taibuivan/contactbook/internal/platform/middleware"
	"github.com/taibuivan/contactbook/internal/platform/migration"
	pgstore "github.com/taibuivan/contactbook/internal/platform/postgres"
	"github.com/taibuivan/contactbook/internal/platform/ratelimit"
	redisstore "github.com/taibuivan/contactbook/internal/platform/redis"
	"github.com/taibuivan/contactbook/internal/platform/sec"
	"github.com/taibuivan/contactbook/internal/platform/storage"
	"github.com/taibuivan/contactbook/internal/users/account"
	"github.com/taibuivan/contactbook/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("avatar_storage", cfg.StorageEnabled()),
		slog.Bool("trust_proxy", cfg.TrustProxy),
	)

	// Root context for startup. Misconfiguration fails within 30s instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, pgstore.PoolOptions{
		MaxConns: cfg.DatabaseMaxConns,
		MinConns: cfg.DatabaseMinConns,
	}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 6. Background Services ────────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	var sender mail.Sender = mail.LogSender{Logger: log}
	if cfg.MailServer != "" {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.MailServer,
			Port:     cfg.MailPort,
			Username: cfg.MailUsername,
			Password: cfg.MailPassword,
			From:     cfg.MailFrom,
			FromName: cfg.MailFromName,
		})
	} else {
		log.Warn("mail_server_not_configured", slog.String("sender", "log"))
	}

	mailQueue := mail.NewQueue(sender, cfg.MailQueueSize, cfg.MailWorkers, log)
	mailQueue.Start(rootCtx)

	var uploader storage.Uploader = storage.Disabled{}
	if cfg.StorageEnabled() {
		uploader, err = storage.NewS3Uploader(startupCtx, storage.Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:       cfg.S3PublicURL,
		})
		must(log, err, "initialize avatar storage")
	}

	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Secret:     []byte(cfg.JWTSecret),
		Algorithm:  cfg.JWTAlgorithm,
		Issuer:     constants.AuthIssuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		EmailTTL:   cfg.EmailTokenTTL,
	})
	must(log, err, "initialize jwt service")

	routeLimiter, err := ratelimit.NewWindow(rdb, cfg.RateLimitTimes, cfg.RateLimitWindow)
	must(log, err, "initialize route limiter")

	ipLimiter := middleware.NewIPRateLimiter(constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst)
	go ipLimiter.Cleanup(rootCtx)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	sessionCache := auth.NewSessionCache(rdb, constants.SessionCacheTTL)

	authService := auth.NewService(userRepository, sessionCache, tokens, mailQueue)
	accountService := account.NewService(userRepository, uploader, sessionCache)
	contactService := contacts.NewService(contacts.NewRepository(pool))

	handlers := api.Handlers{
		Health: api.NewHealthHandlers(api.HealthDependencies{
			CheckDatabase: func(ctx context.Context) error {
				return pgstore.Ping(ctx, pool)
			},
			CheckCache: func(ctx context.Context) error {
				return redisstore.Ping(ctx, rdb)
			},
		}),
		Auth:         auth.NewHandler(authService, cfg.PublicBaseURL),
		Account:      account.NewHandler(accountService, routeLimiter),
		Contacts:     contacts.NewHandler(contactService, routeLimiter),
		Authenticate: middleware.Authenticate(tokens, sessionCache, userRepository),
		IPLimiter:    ipLimiter,
	}

	// ── 8. HTTP Server & Graceful Shutdown ────────────────────────────────
	server := api.NewServer(cfg, log, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
	}

	// Drain confirmation emails accepted before the listener closed.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer drainCancel()
	if err := mailQueue.Shutdown(drainCtx); err != nil {
		log.Warn("mail queue not drained", slog.Any("error", err))
	}

	log.Info("server stopped cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, errors are returned and handled.
func must(log *slog.Logger, err error, stage string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("stage", stage),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
