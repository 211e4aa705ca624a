// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Contactbook HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to the identity cache (Redis or in-process).
//  5. Run database migrations (idempotent).
//  6. Wire services and HTTP handlers.
//  7. Run the HTTP server, mail workers and rate limiter sweeper until a signal arrives.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/contactbook/internal/api"
	"github.com/taibuivan/contactbook/internal/contacts"
	"github.com/taibuivan/contactbook/internal/platform/config"
	"github.com/taibuivan/contactbook/internal/platform/constants"
	"github.com/taibuivan/contactbook/internal/platform/mailer"
	"github.com/taibuivan/contactbook/internal/platform/metrics"
	"github.com/taibuivan/contactbook/internal/platform/middleware"
	"github.com/taibuivan/contactbook/internal/platform/migration"
	"github.com/taibuivan/contactbook/internal/platform/objectstore"
	pgstore "github.com/taibuivan/contactbook/internal/platform/postgres"
	redisstore "github.com/taibuivan/contactbook/internal/platform/redis"
	"github.com/taibuivan/contactbook/internal/platform/sec"
	"github.com/taibuivan/contactbook/internal/users/account"
	"github.com/taibuivan/contactbook/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(false, false)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	log = newLogger(cfg.Debug, cfg.IsDevelopment())
	slog.SetDefault(log)
	log.Debug("debug_logging_enabled")

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("cache_backend", cfg.CacheBackend),
		slog.String("mail_provider", cfg.Mail.Provider),
	)

	// Startup deadline so misconfiguration is caught quickly rather than hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Identity cache ─────────────────────────────────────────────────
	healthDeps := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		QueryDatabase: func(ctx context.Context) error { return pgstore.SelectOne(ctx, pool) },
	}

	var identityCache auth.IdentityCache
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()
		identityCache = auth.NewRedisIdentityCache(rdb, constants.IdentityCacheTTL)
		healthDeps.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	default:
		identityCache = auth.NewMemoryIdentityCache(constants.IdentityCacheSize, constants.IdentityCacheTTL)
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Wiring ─────────────────────────────────────────────────────────
	appMetrics := metrics.New()

	if cfg.EmailTokenSecret == "" {
		log.Warn("email_token_secret_unset", slog.String("fallback", "JWT_SECRET_KEY"))
	}

	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Algorithm:     cfg.JWT.Algorithm,
		AccessSecret:  cfg.JWT.SecretKey,
		RefreshSecret: cfg.JWT.RefreshSecretKey,
		EmailSecret:   cfg.EmailSecret(),
		AccessTTL:     cfg.JWT.AccessTokenTTL,
		RefreshTTL:    cfg.JWT.RefreshTokenTTL,
		EmailTTL:      cfg.EmailTokenTTL,
	})
	must(log, err, "initialize token service")

	mailQueue := mailer.NewQueue(newMailSender(cfg, log), cfg.Mail.QueueSize, log, appMetrics)
	limiter := middleware.NewRateLimiter()

	identityStore := auth.NewPostgresIdentityStore(pool)
	authService := auth.NewService(identityStore, sec.NewHasher(bcrypt.DefaultCost), tokens, mailQueue, appMetrics)

	accountService := account.NewService(identityStore, newAvatarStore(startupCtx, cfg, log), identityCache)
	contactService := contacts.NewService(contacts.NewPostgresStore(pool), nil)

	server := api.NewServer(cfg, log, appMetrics, api.Handlers{
		Health:   api.NewHealthHandlers(healthDeps, log),
		Resolver: auth.NewResolver(tokens, identityStore, identityCache, appMetrics),
		Auth:     auth.NewHandler(authService, limiter, cfg.PublicBaseURL),
		Account:  account.NewHandler(accountService),
		Contacts: contacts.NewHandler(contactService, limiter),
	})

	// ── 7. Run until signalled ────────────────────────────────────────────
	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)
	group.Go(func() error { return server.Run(groupCtx) })
	group.Go(func() error { return mailQueue.Run(groupCtx, cfg.Mail.Workers) })
	group.Go(func() error {
		limiter.Run(groupCtx)
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Error("server_stopped_with_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// # Startup Helpers

// newLogger builds the process logger: text output in development, JSON otherwise.
func newLogger(debug, development bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		options.Level = slog.LevelDebug
	}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, options)
	if development {
		handler = slog.NewTextHandler(os.Stdout, options)
	}

	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// newMailSender selects the configured provider behind a circuit breaker.
func newMailSender(cfg *config.Config, log *slog.Logger) mailer.Sender {
	from := mailer.Address{Email: cfg.Mail.From, Name: cfg.Mail.FromName}

	var sender mailer.Sender
	switch cfg.Mail.Provider {
	case config.MailProviderMailgun:
		sender = mailer.NewMailgunSender(cfg.Mail.MailgunDomain, cfg.Mail.MailgunAPIKey, from)
	case config.MailProviderSendgrid:
		sender = mailer.NewSendgridSender(cfg.Mail.SendgridAPIKey, from)
	default:
		return mailer.NewLogSender(log)
	}

	return mailer.NewBreakerSender(sender, mailer.DefaultBreakerSettings, log)
}

// newAvatarStore returns nil when no bucket is configured, which disables avatar uploads.
func newAvatarStore(ctx context.Context, cfg *config.Config, log *slog.Logger) account.AvatarStore {
	store, err := objectstore.New(ctx, objectstore.Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PathStyle: cfg.S3PathStyle,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		log.Warn("avatar_storage_disabled", slog.Any("reason", err))
		return nil
	}
	return store
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// Only startup wiring uses it. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
