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

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, MangaDex client) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Rate limit policies understood by [Config.RateLimitPolicy].
const (
	PolicyCooldown = "cooldown"
	PolicyAbort    = "abort"
	PolicyIgnore   = "ignore"
)

// # Configuration Schema

// Config holds all runtime configuration for the Yomira crawler.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8081"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Cross-Origin Resource Sharing (comma separated origin suffixes)
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// Upstream (MangaDex)
	MangaDexAPIURL     string `env:"MANGADEX_API_URL"     envDefault:"https://api.mangadex.org"`
	MangaDexUploadsURL string `env:"MANGADEX_UPLOADS_URL" envDefault:"https://uploads.mangadex.org"`
	MangaDexAPIKey     string `env:"MANGADEX_API_KEY"`
	UserAgent          string `env:"USER_AGENT"           envDefault:"yomira-crawler/0.1"`

	// FetchParallelism overrides the "available parallelism + 4" pool term. 0 means automatic.
	FetchParallelism int `env:"FETCH_PARALLELISM" envDefault:"0"`

	// PageTimeout bounds a single page download.
	PageTimeout time.Duration `env:"PAGE_TIMEOUT" envDefault:"30s"`

	// MetadataTimeout bounds the at-home, search, manga and chapter-list calls.
	MetadataTimeout time.Duration `env:"METADATA_TIMEOUT" envDefault:"15s"`

	// Outbound token bucket for the MangaDex API host.
	OutboundRPS   float64 `env:"OUTBOUND_RPS"   envDefault:"5"`
	OutboundBurst int     `env:"OUTBOUND_BURST" envDefault:"5"`

	// RateLimitPolicy decides what happens when the upstream reports an exhausted budget.
	RateLimitPolicy string `env:"RATE_LIMIT_POLICY" envDefault:"cooldown"`

	// ChapterLockTTL caps how long a single chapter fetch may hold its lock.
	ChapterLockTTL time.Duration `env:"CHAPTER_LOCK_TTL" envDefault:"5m"`

	// SearchCacheTTL is the lifetime of cached search results.
	SearchCacheTTL time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"10m"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

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
	switch c.RateLimitPolicy {
	case PolicyCooldown, PolicyAbort, PolicyIgnore:
	default:
		return fmt.Errorf("config: unknown RATE_LIMIT_POLICY %q", c.RateLimitPolicy)
	}

	if c.FetchParallelism < 0 {
		return fmt.Errorf("config: FETCH_PARALLELISM must not be negative")
	}

	if c.PageTimeout <= 0 || c.MetadataTimeout <= 0 {
		return fmt.Errorf("config: PAGE_TIMEOUT and METADATA_TIMEOUT must be positive")
	}

	if c.OutboundRPS <= 0 || c.OutboundBurst < 1 {
		return fmt.Errorf("config: OUTBOUND_RPS must be positive and OUTBOUND_BURST at least 1")
	}

	return nil
}

// IsDevelopment reports whether the crawler is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the crawler is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the trimmed, non-empty entries of ExtraOrigins.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
