// Copyright (c) 2026 Medibank. All rights reserved.

/*
Package auth implements the OTP-gated registration and authentication core.

It drives an unverified registrant from "submitted data" to "created account"
through a two-phase protocol: initiation parks the registration payload in the
cache and dispatches one-time codes over email and SMS; verification consumes
the codes and creates the account. Login validates credentials and mints JWTs.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity. The
cache is never a source of truth: a missing key always means "expired", and
the database's unique constraints are the final word on duplicates.
*/
package auth

import (
	"time"

	"github.com/the-capital-hub/medibank-backend/internal/platform/sec"
	"github.com/the-capital-hub/medibank-backend/pkg/convert"
)

// # Domain Entities

// User represents a registered member of the Medibank platform.
type User struct {
	ID            int64        `json:"-"`
	MemberID      string       `json:"member_id"`
	Email         string       `json:"email"`
	Mobile        string       `json:"mobile"` // Always the normalized +91 form.
	PasswordHash  string       `json:"-"`      // Explicitly omitted from JSON for security.
	FullName      string       `json:"full_name"`
	Gender        string       `json:"gender,omitempty"`
	DateOfBirth   string       `json:"date_of_birth,omitempty"`
	City          string       `json:"city,omitempty"`
	Role          sec.UserRole `json:"role"`
	ProfilePicKey string       `json:"-"` // Object-storage key; URL is derived per request.
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// PublicID renders the immutable numeric identifier as a string for clients.
func (u *User) PublicID() string {
	return convert.FromInt64(u.ID)
}

// View is the sanitized, transport-ready projection of a [User].
//
// The numeric identifier is rendered as a string and the password hash never
// appears, matching the external contract for all account-bearing responses.
type View struct {
	ID          string       `json:"id"`
	MemberID    string       `json:"member_id"`
	Email       string       `json:"email"`
	Mobile      string       `json:"mobile"`
	FullName    string       `json:"full_name"`
	Gender      string       `json:"gender,omitempty"`
	DateOfBirth string       `json:"date_of_birth,omitempty"`
	City        string       `json:"city,omitempty"`
	Role        sec.UserRole `json:"role"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewView builds the sanitized projection of a user.
func NewView(user *User) *View {
	return &View{
		ID:          user.PublicID(),
		MemberID:    user.MemberID,
		Email:       user.Email,
		Mobile:      user.Mobile,
		FullName:    user.FullName,
		Gender:      user.Gender,
		DateOfBirth: user.DateOfBirth,
		City:        user.City,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
	}
}

// DoctorDetails holds the professional credentials a doctor-role account
// carries. Created in the same transaction as the account row.
type DoctorDetails struct {
	UserID         int64  `json:"-"`
	LicenseNumber  string `json:"license_number"`
	Qualification  string `json:"qualification"`
	Institution    string `json:"institution"`
	GraduationYear int    `json:"graduation_year"`
}

// PendingRegistration is the ephemeral, cache-resident registration payload.
//
// It exists only between initiation and completion (or TTL eviction). The
// password is hashed before the payload ever reaches the cache, so plaintext
// never leaves the initiating request.
type PendingRegistration struct {
	Email        string       `json:"email"`
	Mobile       string       `json:"mobile"`
	PasswordHash string       `json:"password_hash"`
	FullName     string       `json:"full_name"`
	Gender       string       `json:"gender,omitempty"`
	DateOfBirth  string       `json:"date_of_birth,omitempty"`
	City         string       `json:"city,omitempty"`
	Role         sec.UserRole `json:"role"`
	InitiatedAt  time.Time    `json:"initiated_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the auth domain.
const (
	FieldEmail           = "email"
	FieldMobile          = "mobile_number"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
	FieldFullName        = "full_name"
	FieldRole            = "role"
	FieldIdentifier      = "identifier"
	FieldEmailCode       = "email_code"
	FieldMobileCode      = "mobile_code"
	FieldCode            = "code"
	FieldLicenseNumber   = "license_number"
	FieldQualification   = "qualification"
	FieldInstitution     = "institution"
	FieldGraduationYear  = "graduation_year"
	FieldToken           = "token"
	FieldUser            = "user"
	FieldMessage         = "message"
)
