// Copyright (c) 2026 Medibank. All rights reserved.

package auth

import "time"

// # Registration Protocol Constraints

const (
	// OTPCodeTTL is how long an issued one-time code stays verifiable.
	OTPCodeTTL = 300 * time.Second

	// PendingRegistrationTTL bounds the whole initiation-to-verification
	// window. Past it the registrant must start over.
	PendingRegistrationTTL = 600 * time.Second

	// UserCacheTTL is the freshness window of the by-ID user cache.
	// Best effort only; the database remains the source of truth.
	UserCacheTTL = 3600 * time.Second

	// OTPCodeLength is the exact digit count of every one-time code.
	OTPCodeLength = 6

	// MemberIDPrefix starts every human-friendly member identifier.
	MemberIDPrefix = "MB"

	// MemberIDDigits is the random digit count following the prefix.
	MemberIDDigits = 8

	// MemberIDMaxAttempts caps the regenerate-on-collision loop. The code
	// space holds 100 million IDs, so hitting this cap means something is
	// wrong beyond bad luck.
	MemberIDMaxAttempts = 5
)
