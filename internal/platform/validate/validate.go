// Copyright (c) 2026 Medibank. All rights reserved.

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used at the HTTP boundary and in the service layer. It
// ensures that business logic only operates on semantically valid data. In
// particular, the registration state machine must reject malformed input
// before any cache write or OTP dispatch happens.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/the-capital-hub/medibank-backend/internal/platform/apperr"
	"github.com/the-capital-hub/medibank-backend/internal/platform/constants"
)

var (
	// bareMobileRegex matches a national 10-digit mobile number without country code.
	bareMobileRegex = regexp.MustCompile(`^\d{10}$`)
	// fullMobileRegex matches the normalized +91-prefixed form.
	fullMobileRegex = regexp.MustCompile(`^\+91\d{10}$`)
	// otpCodeRegex matches exactly six ASCII digits.
	otpCodeRegex = regexp.MustCompile(`^\d{6}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails if the value is not a valid RFC 5322 email address.
func (v *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Mobile fails unless the value is a national 10-digit mobile number, bare or
// +91-prefixed, that also passes the placeholder guards.
//
// # Placeholder Guards
//
// Repeated-digit sequences (9999999999) and strictly consecutive ascending
// sequences (1234567890) are rejected: they are overwhelmingly test input,
// and every rejected number is an SMS we do not pay for.
func (v *Validator) Mobile(field, value string) *Validator {
	normalized, ok := NormalizeMobile(value)
	if !ok {
		v.add(field, "Must be a valid 10-digit mobile number")
		return v
	}

	digits := strings.TrimPrefix(normalized, constants.DefaultCountryCode)
	if isRepeatedDigits(digits) || isConsecutiveAscending(digits) {
		v.add(field, "Mobile number looks like placeholder input")
	}
	return v
}

// OTPCode fails unless the value is exactly six ASCII digits.
func (v *Validator) OTPCode(field, value string) *Validator {
	if !IsOTPCode(value) {
		v.add(field, "Must be a 6-digit code")
	}
	return v
}

// IsOTPCode reports whether the value is exactly six ASCII digits.
func IsOTPCode(value string) bool {
	return otpCodeRegex.MatchString(value)
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Match fails with a confirmation-mismatch message when two values differ.
func (v *Validator) Match(field, value, other string) *Validator {
	if value != other {
		v.add(field, "Values do not match")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("year", year < 1950, "Must be 1950 or later")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method; call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}

// # Mobile Number Helpers

// NormalizeMobile converts a bare 10-digit number into its +91-prefixed
// canonical form. Already-normalized numbers pass through unchanged.
//
// The canonical form is the only form that ever reaches storage or the
// OTP key namespace, so email and mobile codes can never collide on keys.
func NormalizeMobile(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)

	if fullMobileRegex.MatchString(trimmed) {
		return trimmed, true
	}
	if bareMobileRegex.MatchString(trimmed) {
		return constants.DefaultCountryCode + trimmed, true
	}
	return "", false
}

// IsBareMobile reports whether the value is a bare 10-digit number.
// Login uses this to auto-detect mobile-vs-email identifiers.
func IsBareMobile(value string) bool {
	return bareMobileRegex.MatchString(strings.TrimSpace(value))
}

// isRepeatedDigits reports whether every digit equals the first one.
func isRepeatedDigits(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return len(digits) > 0
}

// isConsecutiveAscending reports whether the digits form a strictly
// consecutive ascending run, treating 0 as the successor of 9 so that
// 1234567890 is caught too.
func isConsecutiveAscending(digits string) bool {
	if len(digits) < 2 {
		return false
	}
	for i := 1; i < len(digits); i++ {
		expected := byte('0') + (digits[i-1]-'0'+1)%10
		if digits[i] != expected {
			return false
		}
	}
	return true
}
