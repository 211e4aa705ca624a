// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components through their
constructors. No package keeps it in a global.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported identity cache backends.
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// Supported outbound mail providers.
const (
	MailProviderLog      = "log"
	MailProviderMailgun  = "mailgun"
	MailProviderSendgrid = "sendgrid"
)

// # Configuration Schema

// Config holds all runtime configuration for the contacts API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"PORT"     envDefault:"8000"`
	Environment string `env:"APP_ENV"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"    envDefault:"false"`

	// TrustProxyHeaders takes the client address from X-Real-IP / X-Forwarded-For.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// PublicBaseURL overrides the request host when building links sent by email.
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Identity cache
	CacheBackend string `env:"CACHE_BACKEND" envDefault:"redis"`
	RedisURL     string `env:"REDIS_URL"     envDefault:"redis://localhost:6379/0"`

	// Token signing. Access and refresh tokens never share a secret.
	JWT JWTConfig `envPrefix:"JWT_"`

	// EmailTokenSecret signs email-confirmation tokens. Empty means the access secret is reused.
	EmailTokenSecret string        `env:"EMAIL_TOKEN_SECRET"`
	EmailTokenTTL    time.Duration `env:"EMAIL_TOKEN_TTL" envDefault:"24h"`

	// Outbound mail
	Mail MailConfig

	// Object Storage (S3-compatible) for avatars
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"     envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PathStyle bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// JWTConfig groups the token signing settings.
type JWTConfig struct {
	SecretKey        string        `env:"SECRET_KEY,required,notEmpty"`
	RefreshSecretKey string        `env:"REFRESH_SECRET_KEY,required,notEmpty"`
	Algorithm        string        `env:"ALGORITHM"         envDefault:"HS256"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL"  envDefault:"15m"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
}

// MailConfig groups the outbound mail settings.
type MailConfig struct {
	Provider       string `env:"MAIL_PROVIDER"   envDefault:"log"`
	From           string `env:"MAIL_FROM"       envDefault:"no-reply@contactbook.local"`
	FromName       string `env:"MAIL_FROM_NAME"  envDefault:"Contactbook"`
	MailgunDomain  string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey  string `env:"MAILGUN_API_KEY"`
	SendgridAPIKey string `env:"SENDGRID_API_KEY"`
	Workers        int    `env:"MAIL_WORKERS"    envDefault:"2"`
	QueueSize      int    `env:"MAIL_QUEUE_SIZE" envDefault:"256"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// validate checks cross-field constraints that struct tags cannot express.
func (c *Config) validate() error {
	switch strings.ToUpper(c.JWT.Algorithm) {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWT.Algorithm)
	}

	if c.JWT.SecretKey == c.JWT.RefreshSecretKey {
		return fmt.Errorf("JWT_SECRET_KEY and JWT_REFRESH_SECRET_KEY must differ")
	}

	switch c.CacheBackend {
	case CacheBackendRedis, CacheBackendMemory:
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.CacheBackend)
	}

	switch c.Mail.Provider {
	case MailProviderLog:
	case MailProviderMailgun:
		if c.Mail.MailgunDomain == "" || c.Mail.MailgunAPIKey == "" {
			return fmt.Errorf("MAIL_PROVIDER=mailgun requires MAILGUN_DOMAIN and MAILGUN_API_KEY")
		}
	case MailProviderSendgrid:
		if c.Mail.SendgridAPIKey == "" {
			return fmt.Errorf("MAIL_PROVIDER=sendgrid requires SENDGRID_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported MAIL_PROVIDER %q", c.Mail.Provider)
	}

	if c.Mail.Workers < 1 || c.Mail.QueueSize < 1 {
		return fmt.Errorf("MAIL_WORKERS and MAIL_QUEUE_SIZE must be positive")
	}

	return nil
}

// EmailSecret returns the secret for email-confirmation tokens.
func (c *Config) EmailSecret() string {
	if c.EmailTokenSecret != "" {
		return c.EmailTokenSecret
	}
	return c.JWT.SecretKey
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the extra CORS origins accepted outside development.
func (c *Config) AllowedOrigins() []string {
	return c.ExtraOrigins
}
