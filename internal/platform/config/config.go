// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file
is honoured for development through 'joho/godotenv'; real environment variables
always win over the file.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, TokenService) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the Contactbook API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// PublicBaseURL prefixes links sent by email, e.g. "https://contacts.example.com/".
	// Empty falls back to the Host header of the request.
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	// TrustProxy honours X-Forwarded-* and X-Real-IP. Enable only behind a reverse proxy.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL      string `env:"DATABASE_URL,required"`
	DatabaseMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DatabaseMinConns int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Token signing
	JWTSecret       string        `env:"SECRET_KEY_JWT,required"`
	JWTAlgorithm    string        `env:"ALGORITHM"          envDefault:"HS256"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL"   envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL"  envDefault:"168h"`
	EmailTokenTTL   time.Duration `env:"EMAIL_TOKEN_TTL"    envDefault:"168h"`

	// Outgoing mail. An empty MailServer switches to the log-only sender.
	MailServer    string `env:"MAIL_SERVER"`
	MailPort      int    `env:"MAIL_PORT"        envDefault:"465"`
	MailUsername  string `env:"MAIL_USERNAME"`
	MailPassword  string `env:"MAIL_PASSWORD"`
	MailFrom      string `env:"MAIL_FROM"        envDefault:"noreply@contactbook.local"`
	MailFromName  string `env:"MAIL_FROM_NAME"   envDefault:"Contactbook"`
	MailWorkers   int    `env:"MAIL_WORKERS"     envDefault:"2"`
	MailQueueSize int    `env:"MAIL_QUEUE_SIZE"  envDefault:"100"`

	// Object Storage (S3-compatible) for avatars
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION"   envDefault:"auto"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3PublicURL       string `env:"S3_PUBLIC_URL"`

	// Per-route limiter backed by Redis
	RateLimitTimes  int           `env:"RATE_LIMIT_TIMES"  envDefault:"1"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"20s"`

	// Cross-Origin Resource Sharing. "*" allows every origin.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env file is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	return Parse()
}

// Parse maps the current process environment onto a [Config] and validates it.
func Parse() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.JWTAlgorithm {
	case "HS256", "HS512":
	default:
		return fmt.Errorf("config: ALGORITHM must be HS256 or HS512, got %q", c.JWTAlgorithm)
	}

	if c.RateLimitTimes < 1 || c.RateLimitWindow <= 0 {
		return errors.New("config: RATE_LIMIT_TIMES and RATE_LIMIT_WINDOW must be positive")
	}

	if c.DatabaseMaxConns < 1 || c.DatabaseMinConns < 0 || c.DatabaseMinConns > c.DatabaseMaxConns {
		return errors.New("config: DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
	}

	if c.PublicBaseURL != "" {
		parsed, err := url.Parse(c.PublicBaseURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("config: PUBLIC_BASE_URL must be an absolute http(s) URL, got %q", c.PublicBaseURL)
		}
	}

	if c.MailWorkers < 1 || c.MailQueueSize < 1 {
		return errors.New("config: MAIL_WORKERS and MAIL_QUEUE_SIZE must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowsOrigin reports whether the CORS policy accepts the given Origin header.
func (c *Config) AllowsOrigin(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// StorageEnabled reports whether an avatar bucket has been configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}
