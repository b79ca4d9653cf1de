// Copyright (c) 2026 Medibank. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/the-capital-hub/medibank-backend/internal/platform/sec"
	"github.com/the-capital-hub/medibank-backend/internal/platform/validate"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string bound to a user.
	//
	// # Parameters
	//   - userID: The numeric account ID rendered as a string.
	//   - role: The declared account role.
	//   - timeToLive: The duration before the token expires.
	GenerateAccessToken(userID, role string, timeToLive time.Duration) (string, error)
}

// Service implements the registration state machine and authentication flow.
//
// # Review Process
//
// This service is critical for security. Any changes to the OTP lifecycle,
// registration, or login logic must be reviewed by the security team.
type Service struct {
	users   UserRepository
	pending PendingRepository
	cache   UserCache
	otp     *OTPManager
	tokens  TokenProvider
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	users UserRepository,
	pending PendingRepository,
	cache UserCache,
	otp *OTPManager,
	tokens TokenProvider,
) *Service {
	return &Service{
		users:   users,
		pending: pending,
		cache:   cache,
		otp:     otp,
		tokens:  tokens,
	}
}

// AuthResult carries a freshly minted token and the sanitized account view.
type AuthResult struct {
	Token string `json:"token"`
	User  *View  `json:"user"`
}

// # Registration Flow

// RegisterInput holds the data submitted to initiate a registration.
type RegisterInput struct {
	Email       string
	Mobile      string
	Password    string
	FullName    string
	Gender      string
	DateOfBirth string
	City        string
	Role        sec.UserRole

	// Doctor-role professional credentials. Required when Role is doctor.
	LicenseNumber  string
	Qualification  string
	Institution    string
	GraduationYear int
}

/*
InitiateRegistration starts the two-phase registration protocol.

Description: Validates the payload, rejects known duplicates, parks the
registration (password already hashed) in the cache for
[PendingRegistrationTTL], and dispatches one code per contact channel.

Ordering: validation happens before ANY side effect; the duplicate fast-path
check happens before any cache write or dispatch; the acknowledgement is only
returned after both dispatches were attempted and succeeded.

Returns:
  - string: Normalized mobile number the SMS code went to
  - error: Validation, duplicate, delivery, or storage failures
*/
func (service *Service) InitiateRegistration(context context.Context, input RegisterInput) (string, error) {
	if err := validateRegisterInput(&input); err != nil {
		return "", err
	}

	// The Mobile rule in validateRegisterInput accepted the number, so
	// normalization cannot fail.
	normalizedMobile, _ := validate.NormalizeMobile(input.Mobile)

	// Fast-path duplicate check for a friendly error. The database unique
	// constraints remain the authoritative guard at creation time.
	if _, err := service.users.FindByEmail(context, input.Email); err == nil {
		return "", ErrDuplicateAccount(FieldEmail)
	}
	if _, err := service.users.FindByMobile(context, normalizedMobile); err == nil {
		return "", ErrDuplicateAccount(FieldMobile)
	}

	// Hash at initiation so plaintext never reaches the cache. The hashing
	// cost is paid even for registrations that never complete.
	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return "", fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	pending := &PendingRegistration{
		Email:        input.Email,
		Mobile:       normalizedMobile,
		PasswordHash: passwordHash,
		FullName:     input.FullName,
		Gender:       input.Gender,
		DateOfBirth:  input.DateOfBirth,
		City:         input.City,
		Role:         input.Role,
		InitiatedAt:  time.Now(),
	}

	if err := service.pending.SavePending(context, pending, PendingRegistrationTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_pending_failed: %w", err)
	}

	if input.Role.RequiresSupplementaryData() {
		details := &DoctorDetails{
			LicenseNumber:  input.LicenseNumber,
			Qualification:  input.Qualification,
			Institution:    input.Institution,
			GraduationYear: input.GraduationYear,
		}
		if err := service.pending.SaveDoctorData(context, input.Email, details, PendingRegistrationTTL); err != nil {
			return "", fmt.Errorf("auth_service_save_doctor_data_failed: %w", err)
		}
	}

	// Both channels are dispatched concurrently; either failure fails the
	// initiation as a whole. A code already delivered on the surviving
	// channel stays valid, so a retried initiation can still complete.
	if err := service.otp.IssueBoth(context, input.Email, normalizedMobile); err != nil {
		return "", err
	}

	return normalizedMobile, nil
}

// validateRegisterInput applies every precondition before any side effect.
func validateRegisterInput(input *RegisterInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldMobile, input.Mobile).
		Mobile(FieldMobile, input.Mobile).
		Required(FieldPassword, input.Password).
		Required(FieldFullName, input.FullName).
		MaxLen(FieldFullName, input.FullName, 120).
		OneOf(FieldRole, string(input.Role), string(sec.RolePatient), string(sec.RoleDoctor))

	if input.Role.RequiresSupplementaryData() {
		validator.Required(FieldLicenseNumber, input.LicenseNumber).
			Required(FieldQualification, input.Qualification).
			Required(FieldInstitution, input.Institution).
			Custom(FieldGraduationYear, input.GraduationYear < 1950 || input.GraduationYear > time.Now().Year(), "Must be a plausible graduation year")
	}

	return validator.Err()
}

// VerifyInput holds the identifiers and codes completing a registration.
type VerifyInput struct {
	Email      string
	Mobile     string
	EmailCode  string
	MobileCode string
}

/*
VerifyAndCreate completes the registration protocol.

Description: Consumes the one-time codes (mobile first, fail-fast; each
channel independently), retrieves the parked payload, and creates the account
atomically with a freshly generated member ID. Doctor credentials are written
in the same database transaction, so no partial doctor accounts can exist.

Concurrency: two racing calls for the same pending registration can both pass
the code checks; the account table's unique constraints make exactly one
INSERT win, and the loser sees a duplicate-account error.

Returns:
  - *AuthResult: Token bound to the new numeric ID plus sanitized view
  - error: Code, expiry, duplicate, or storage failures
*/
func (service *Service) VerifyAndCreate(context context.Context, input VerifyInput) (*AuthResult, error) {
	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldMobile, input.Mobile).
		Mobile(FieldMobile, input.Mobile)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// A malformed code can never match a stored value, so it fails the same
	// way a mismatched one does. Nothing is consumed here.
	if !validate.IsOTPCode(input.MobileCode) || !validate.IsOTPCode(input.EmailCode) {
		return nil, ErrInvalidCode()
	}

	// The Mobile rule above accepted the number, so normalization cannot fail.
	normalizedMobile, _ := validate.NormalizeMobile(input.Mobile)

	// Mobile before email, fail-fast. Verifying one channel never consumes
	// the other channel's code.
	if err := service.otp.Verify(context, normalizedMobile, input.MobileCode); err != nil {
		return nil, err
	}
	if err := service.otp.Verify(context, input.Email, input.EmailCode); err != nil {
		return nil, err
	}

	pending, err := service.pending.GetPending(context, input.Email)
	if err != nil {
		return nil, err
	}

	// Doctor credentials are fetched BEFORE the account insert so both rows
	// land in one transaction or neither does.
	var doctor *DoctorDetails
	if pending.Role.RequiresSupplementaryData() {
		doctor, err = service.pending.GetDoctorData(context, input.Email)
		if err != nil {
			return nil, err
		}
	}

	user, err := service.createAccount(context, pending, doctor)
	if err != nil {
		return nil, err
	}

	// Ephemeral state is cleaned only after the account exists. Redis-side
	// TTL covers these keys anyway, so failures here are logged-and-ignored
	// territory, not user-facing ones.
	_ = service.pending.DeletePending(context, input.Email)
	if doctor != nil {
		_ = service.pending.DeleteDoctorData(context, input.Email)
	}

	token, err := service.tokens.GenerateAccessToken(user.PublicID(), string(user.Role), sec.AccessTokenTTL)
	if err != nil {
		return nil, ErrTokenGenerationFailed(err)
	}

	_ = service.cache.Set(context, user, UserCacheTTL)

	return &AuthResult{Token: token, User: NewView(user)}, nil
}

// createAccount inserts the account, regenerating the member ID on collision.
func (service *Service) createAccount(context context.Context, pending *PendingRegistration, doctor *DoctorDetails) (*User, error) {
	for attempt := 0; attempt < MemberIDMaxAttempts; attempt++ {
		memberID, err := NewMemberID()
		if err != nil {
			return nil, err
		}

		user := &User{
			MemberID:     memberID,
			Email:        pending.Email,
			Mobile:       pending.Mobile,
			PasswordHash: pending.PasswordHash,
			FullName:     pending.FullName,
			Gender:       pending.Gender,
			DateOfBirth:  pending.DateOfBirth,
			City:         pending.City,
			Role:         pending.Role,
		}

		err = service.users.Create(context, user, doctor)
		if errors.Is(err, errMemberIDTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return user, nil
	}

	return nil, fmt.Errorf("auth_service_member_id_exhausted: no unique member id after %d attempts", MemberIDMaxAttempts)
}

// # Authentication Flow

/*
Login validates an identifier/password pair and mints a bound token.

Description: A 10-digit identifier is treated as a national mobile number and
normalized to its +91 form before lookup; anything else is treated as an
email. The login path always reads the database (the identifier-ambiguous
lookup is not cached); on success the canonical by-ID cache is populated.

Returns:
  - *AuthResult: Token plus sanitized view
  - error: ErrInvalidCredentials for unknown identifier AND wrong password
    alike (no account enumeration), or internal failures
*/
func (service *Service) Login(context context.Context, identifier, password string) (*AuthResult, error) {
	var user *User
	var err error

	if normalized, ok := validate.NormalizeMobile(identifier); ok {
		user, err = service.users.FindByMobile(context, normalized)
	} else {
		user, err = service.users.FindByEmail(context, identifier)
	}

	if err != nil {
		return nil, ErrInvalidCredentials()
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials()
	}

	token, err := service.tokens.GenerateAccessToken(user.PublicID(), string(user.Role), sec.AccessTokenTTL)
	if err != nil {
		return nil, ErrTokenGenerationFailed(err)
	}

	_ = service.cache.Set(context, user, UserCacheTTL)

	return &AuthResult{Token: token, User: NewView(user)}, nil
}

/*
FetchByID resolves the current user through the by-ID read-through cache.

Description: Cache hit returns immediately; a miss reads the database and
repopulates the cache with [UserCacheTTL]. No credential checks happen here;
the ID is trusted because it came out of a verified token.

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or retrieval failures
*/
func (service *Service) FetchByID(context context.Context, id int64) (*User, error) {
	if cached, err := service.cache.Get(context, id); err == nil && cached != nil {
		return cached, nil
	}

	user, err := service.users.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	_ = service.cache.Set(context, user, UserCacheTTL)

	return user, nil
}
