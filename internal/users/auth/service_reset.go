// Copyright (c) 2026 Medibank. All rights reserved.

package auth

import (
	"context"
	"fmt"

	"github.com/the-capital-hub/medibank-backend/internal/platform/sec"
	"github.com/the-capital-hub/medibank-backend/internal/platform/validate"
)

// # Password Recovery
//
// Password reset reuses the OTP primitive: initiate sends a code to whichever
// channel the identifier resolves to, verify consumes it, and the new hash
// overwrites the old one. No separate token scheme exists for reset.

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Resolves the identifier (mobile or email, same auto-detection as
login) and dispatches a one-time code to that single channel.

NOTE: An unknown identifier returns success without sending anything, so the
endpoint cannot be used to enumerate accounts.

Returns:
  - error: Delivery or storage failures only
*/
func (service *Service) RequestPasswordReset(context context.Context, identifier string) error {
	_, address, viaMobile, err := service.resolveIdentifier(context, identifier)
	if err != nil {
		return nil
	}

	if viaMobile {
		return service.otp.IssueMobile(context, address)
	}
	return service.otp.IssueEmail(context, address)
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies (and consumes) the one-time code sent to the
identifier's channel, hashes the replacement password, overwrites the stored
hash, and invalidates the by-ID cache entry so the stale hash cannot be
served.

Returns:
  - error: Code failures, validation failures, or storage failures
*/
func (service *Service) ResetPassword(context context.Context, identifier, code, newPassword string) error {
	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, identifier).
		Required(FieldPassword, newPassword)
	if err := validator.Err(); err != nil {
		return err
	}

	// A malformed code can never match a stored value, so it fails the same
	// way a mismatched one does.
	if !validate.IsOTPCode(code) {
		return ErrInvalidCode()
	}

	user, address, _, err := service.resolveIdentifier(context, identifier)
	if err != nil {
		// The code check below would fail anyway for an address that never
		// received one; answer with the same error to stay uninformative.
		return ErrCodeExpired()
	}

	if err := service.otp.Verify(context, address, code); err != nil {
		return err
	}

	passwordHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(context, user.ID, passwordHash); err != nil {
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	_ = service.cache.Delete(context, user.ID)

	return nil
}

// resolveIdentifier looks up a user by mobile-or-email identifier and returns
// the channel address the identifier denotes.
func (service *Service) resolveIdentifier(context context.Context, identifier string) (user *User, address string, viaMobile bool, err error) {
	if normalized, ok := validate.NormalizeMobile(identifier); ok {
		user, err = service.users.FindByMobile(context, normalized)
		return user, normalized, true, err
	}

	user, err = service.users.FindByEmail(context, identifier)
	return user, identifier, false, err
}
