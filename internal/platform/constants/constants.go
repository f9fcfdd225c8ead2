// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire crawler.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Inbound burst capacities and IP tracking TTLs.
  - Upstream: MangaDex header names and request defaults.
  - Cache: Redis key prefixes.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "yomira-crawler"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is long enough for a full chapter fetch to stream its response.
	DefaultWriteTimeout = 5 * time.Minute

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for ordinary (non-fetch) requests.
	GlobalRequestTimeout = 30 * time.Second

	// FetchRequestTimeout is the deadline for a chapter fetch request.
	FetchRequestTimeout = 4 * time.Minute

	// StatementTimeout is applied to every pooled PostgreSQL connection.
	StatementTimeout = 60 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Upstream

const (
	// HeaderRateLimitRemaining carries the remaining request budget.
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"

	// HeaderRateLimitRetryAfter carries the advised wait, in seconds.
	HeaderRateLimitRetryAfter = "X-RateLimit-Retry-After"

	// ChapterListPageSize is the MangaDex maximum for /chapter listings.
	ChapterListPageSize = 100

	// SearchLimit is the number of results requested from /manga.
	SearchLimit = 20

	// ThumbnailWidth and ThumbnailHeight size the small cover stored next to the original.
	ThumbnailWidth  = 51
	ThumbnailHeight = 80
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderRetryAfter    = "Retry-After"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaCrawler = "crawler"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixChapterLock = "crawler:lock:chapter:"
	RedisKeyCooldown       = "crawler:cooldown:mangadex"
	RedisPrefixSearch      = "crawler:search:"
)
