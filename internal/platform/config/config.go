// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Engine) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Encre API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// AuthorCacheTTL bounds how long a user -> author mapping stays cached.
	AuthorCacheTTL time.Duration `env:"AUTHOR_CACHE_TTL" envDefault:"10m"`

	// Public key of the identity provider that signs access tokens
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`

	// Resource ceilings, counted among live siblings of the same parent
	MaxSeriesPerAuthor int `env:"MAX_SERIES_PER_AUTHOR" envDefault:"20"`
	MaxBooksPerSerie   int `env:"MAX_BOOKS_PER_SERIE"   envDefault:"50"`
	MaxChaptersPerBook int `env:"MAX_CHAPTERS_PER_BOOK" envDefault:"200"`

	// TitleBlocklistPath optionally points at a YAML file extending the built-in title blocklist.
	TitleBlocklistPath string `env:"TITLE_BLOCKLIST_PATH"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects ceilings that would make resource creation impossible.
func (c *Config) validate() error {
	limits := map[string]int{
		"MAX_SERIES_PER_AUTHOR": c.MaxSeriesPerAuthor,
		"MAX_BOOKS_PER_SERIE":   c.MaxBooksPerSerie,
		"MAX_CHAPTERS_PER_BOOK": c.MaxChaptersPerBook,
	}
	for name, value := range limits {
		if value <= 0 {
			return fmt.Errorf("config: %s must be positive, got %d", name, value)
		}
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

// Port returns the TCP port the HTTP server listens on.
func (c *Config) Port() string {
	return c.ServerPort
}

// AllowedOrigins returns the comma-separated EXTRA_ORIGINS as a trimmed slice.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
