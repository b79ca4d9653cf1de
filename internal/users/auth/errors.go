// Copyright (c) 2026 Medibank. All rights reserved.

package auth

import (
	"net/http"

	"github.com/the-capital-hub/medibank-backend/internal/platform/apperr"
)

// # Error Taxonomy
//
// The registration protocol distinguishes failures that mean "start over"
// (410 Gone: the ephemeral state no longer exists) from failures that mean
// "retry entry" (400: the state exists, the input was wrong). Clients branch
// on the machine code, so the codes here are part of the external contract.

const (
	CodeInvalidCode              = "INVALID_CODE"
	CodeCodeExpired              = "CODE_EXPIRED"
	CodeRegistrationExpired      = "REGISTRATION_EXPIRED"
	CodeSupplementaryDataExpired = "SUPPLEMENTARY_DATA_EXPIRED"
	CodeDuplicateAccount         = "DUPLICATE_ACCOUNT"
	CodeDeliveryFailed           = "DELIVERY_FAILED"
	CodeTokenGenerationFailed    = "TOKEN_GENERATION_FAILED"
)

// ErrInvalidCode signals a malformed or mismatched one-time code. The stored
// code is not consumed; the user should retry entry.
func ErrInvalidCode() *apperr.AppError {
	return apperr.New(CodeInvalidCode, http.StatusBadRequest, "The code you entered is incorrect")
}

// ErrCodeExpired signals an absent one-time code: never issued, past TTL, or
// already consumed. The wording deliberately avoids confirming which.
func ErrCodeExpired() *apperr.AppError {
	return apperr.Gone(CodeCodeExpired, "This code is no longer valid. Please request a new one")
}

// ErrRegistrationExpired signals that the pending registration payload was
// evicted before verification completed.
func ErrRegistrationExpired() *apperr.AppError {
	return apperr.Gone(CodeRegistrationExpired, "Your registration session has expired. Please register again")
}

// ErrSupplementaryDataExpired signals that the role-specific ephemeral record
// vanished before account creation could attach it.
func ErrSupplementaryDataExpired() *apperr.AppError {
	return apperr.Gone(CodeSupplementaryDataExpired, "Your professional details have expired. Please register again")
}

// ErrDuplicateAccount signals that the email or mobile already belongs to an
// account. The message names the field but never which account.
func ErrDuplicateAccount(field string) *apperr.AppError {
	message := "An account with this email already exists"
	if field == FieldMobile {
		message = "An account with this mobile number already exists"
	}
	return apperr.New(CodeDuplicateAccount, http.StatusConflict, message)
}

// ErrDeliveryFailed signals that one or both code-delivery channels could not
// send. The cause is kept server-side.
func ErrDeliveryFailed(cause error) *apperr.AppError {
	return apperr.BadGateway(CodeDeliveryFailed, "We could not deliver your verification code. Please try again", cause)
}

// ErrTokenGenerationFailed wraps a signing failure. Fatal and unexpected.
func ErrTokenGenerationFailed(cause error) *apperr.AppError {
	err := apperr.New(CodeTokenGenerationFailed, http.StatusInternalServerError, "An unexpected error occurred")
	err.Cause = cause
	return err
}

// ErrInvalidCredentials is the single answer for both unknown identifier and
// wrong password, preventing account enumeration through login.
func ErrInvalidCredentials() *apperr.AppError {
	return apperr.Unauthorized("Invalid login credentials")
}
