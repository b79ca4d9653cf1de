// Copyright (c) 2026 Medibank. All rights reserved.

package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"
)

// # Delivery Channels

// EmailSender delivers a single HTML email. Implemented by notify.Mailer.
type EmailSender interface {
	Send(context context.Context, to, subject, htmlBody string) error
}

// SMSSender delivers a single text message. Implemented by notify.SMSSender.
type SMSSender interface {
	Send(context context.Context, to, body string) error
}

// # OTP Lifecycle

// OTPManager generates, delivers, stores, and single-use-consumes 6-digit
// codes, independently per contact address.
//
// Email addresses and normalized +91 mobile numbers can never collide as
// keys, so one flat address-keyed namespace covers both channels.
type OTPManager struct {
	codes CodeRepository
	email EmailSender
	sms   SMSSender
}

// NewOTPManager constructs an [OTPManager] with its channel dependencies.
func NewOTPManager(codes CodeRepository, email EmailSender, sms SMSSender) *OTPManager {
	return &OTPManager{
		codes: codes,
		email: email,
		sms:   sms,
	}
}

/*
IssueEmail generates a fresh code for the address, stores it with
[OTPCodeTTL], and dispatches it over email.

Store-then-send ordering: the caller must never be told "code sent" unless
dispatch was actually attempted. If dispatch fails the stored code is deleted
before returning, so a reachable-but-undelivered code cannot linger.

Returns:
  - error: ErrDeliveryFailed on dispatch failure, or storage failures
*/
func (manager *OTPManager) IssueEmail(context context.Context, address string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	if err := manager.codes.Set(context, address, code, OTPCodeTTL); err != nil {
		return fmt.Errorf("auth_otp_store_failed: %w", err)
	}

	subject := "Your Medibank verification code"
	body := fmt.Sprintf(
		"<p>Your Medibank verification code is <strong>%s</strong>.</p><p>It expires in 5 minutes. If you did not request this, ignore this email.</p>",
		code,
	)

	if err := manager.email.Send(context, address, subject, body); err != nil {
		_ = manager.codes.Delete(context, address)
		return ErrDeliveryFailed(err)
	}

	return nil
}

/*
IssueMobile generates a fresh code for the normalized mobile number, stores
it with [OTPCodeTTL], and dispatches it over SMS.

Same store-then-send contract as [OTPManager.IssueEmail].
*/
func (manager *OTPManager) IssueMobile(context context.Context, address string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	if err := manager.codes.Set(context, address, code, OTPCodeTTL); err != nil {
		return fmt.Errorf("auth_otp_store_failed: %w", err)
	}

	body := fmt.Sprintf("Your Medibank verification code is %s. It expires in 5 minutes.", code)

	if err := manager.sms.Send(context, address, body); err != nil {
		_ = manager.codes.Delete(context, address)
		return ErrDeliveryFailed(err)
	}

	return nil
}

/*
IssueBoth dispatches independent codes to both channels concurrently.

The channels are independent providers with independent failure modes, so the
two dispatches run in parallel. If either fails the whole issuance fails, but
a successfully delivered code on the other channel is NOT rolled back: the
user already holds it, and a retry of the failed channel can still complete
the registration.
*/
func (manager *OTPManager) IssueBoth(context context.Context, emailAddress, mobileAddress string) error {
	group, groupCtx := errgroup.WithContext(context)

	group.Go(func() error {
		return manager.IssueEmail(groupCtx, emailAddress)
	})
	group.Go(func() error {
		return manager.IssueMobile(groupCtx, mobileAddress)
	})

	return group.Wait()
}

/*
Verify checks a supplied code against the stored one for the address.

Semantics:
  - Absent key: ErrCodeExpired (expired or already consumed; the two are
    indistinguishable on purpose).
  - Mismatch: ErrInvalidCode. The stored code is untouched, its TTL is
    neither extended nor shortened, and a later retry with the correct
    value still succeeds.
  - Match: the code is deleted (single use) and nil is returned. A second
    Verify with the same code fails with ErrCodeExpired.
*/
func (manager *OTPManager) Verify(context context.Context, address, suppliedCode string) error {
	storedCode, err := manager.codes.Get(context, address)
	if err != nil {
		return err
	}

	if storedCode != suppliedCode {
		return ErrInvalidCode()
	}

	if err := manager.codes.Delete(context, address); err != nil {
		return fmt.Errorf("auth_otp_consume_failed: %w", err)
	}

	return nil
}

// generateCode returns a uniform random 6-digit code in [100000, 999999].
func generateCode() (string, error) {
	const codeSpace = 900000
	const codeFloor = 100000

	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", fmt.Errorf("auth_otp_generation_failed: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()+codeFloor), nil
}
