// Copyright (c) 2026 Medibank. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and cookie configuration.
  - Cache Taxonomy: Redis key prefixes for the OTP and user-cache namespaces.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "medibank-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	// OTP dispatch makes two outbound provider calls, so this must comfortably
	// exceed the sum of the email and SMS provider timeouts.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "medibank.health"

	// AuthTokenCookieName is the name of the cookie that carries the access token
	// for browser clients. Mobile clients use the Authorization header instead.
	AuthTokenCookieName = "token"

	// AuthTokenCookiePath scopes the token cookie to the whole API.
	AuthTokenCookiePath = "/"

	// DefaultCountryCode is prefixed onto bare 10-digit mobile numbers.
	DefaultCountryCode = "+91"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
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
	SchemaUsers   = "users"
	SchemaRecords = "records"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixOTP holds one 6-digit code per channel-scoped contact address.
	RedisPrefixOTP = "otp:"

	// RedisPrefixPendingUser holds the unverified registration payload keyed by email.
	RedisPrefixPendingUser = "user:temp:"

	// RedisPrefixPendingDoctor holds role-specific professional data keyed by email.
	RedisPrefixPendingDoctor = "doctor:temp:"

	// RedisPrefixUserCache is the canonical read-through cache keyed by numeric user ID.
	RedisPrefixUserCache = "user:"
)
