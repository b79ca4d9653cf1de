// Copyright (c) 2026 Medibank. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Implementations MUST enforce uniqueness of email, mobile, and member ID at
// the storage layer. The service's pre-checks are a fast path for friendly
// errors; the constraints here are the actual concurrency safety net.
type UserRepository interface {

	/*
		FindByID returns the account with the given numeric ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id int64) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByMobile returns the account with the given normalized mobile number.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByMobile(context context.Context, mobile string) (*User, error)

	/*
		Create persists a brand-new account, assigning its numeric ID.

		When doctor is non-nil both rows are written in one transaction, so
		a doctor account can never exist without its credentials row.

		Returns:
		  - error: ErrDuplicateAccount on email/mobile collision,
		    errMemberIDTaken on member-ID collision, or persistence failures
	*/
	Create(context context.Context, user *User, doctor *DoctorDetails) error

	/*
		UpdatePassword replaces only the user's password hash.

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID int64, newHash string) error
}

// # Ephemeral Registration State

// PendingRepository stores the cache-resident two-phase registration state.
//
// All entries are TTL-bound; Get on an absent key reports expiry, never a
// distinct "missing" condition.
type PendingRepository interface {

	/*
		SavePending parks an unverified registration payload keyed by email.

		A re-initiation for the same email overwrites the previous payload
		(last writer wins; no locking).
	*/
	SavePending(context context.Context, pending *PendingRegistration, ttl time.Duration) error

	/*
		GetPending returns the parked payload for the email.

		Returns:
		  - error: ErrRegistrationExpired when the key is absent
	*/
	GetPending(context context.Context, email string) (*PendingRegistration, error)

	// DeletePending removes the payload after successful account creation.
	DeletePending(context context.Context, email string) error

	// SaveDoctorData parks role-specific professional credentials keyed by email.
	SaveDoctorData(context context.Context, email string, details *DoctorDetails, ttl time.Duration) error

	/*
		GetDoctorData returns the parked professional credentials.

		Returns:
		  - error: ErrSupplementaryDataExpired when the key is absent
	*/
	GetDoctorData(context context.Context, email string) (*DoctorDetails, error)

	// DeleteDoctorData removes the credentials after successful account creation.
	DeleteDoctorData(context context.Context, email string) error
}

// # One-Time Codes

// CodeRepository stores one code per contact address with TTL expiry.
type CodeRepository interface {

	/*
		Set stores a code under the address, overwriting any prior code.

		At-most-one valid code per address: re-issuance replaces, never stacks.
	*/
	Set(context context.Context, address, code string, ttl time.Duration) error

	/*
		Get returns the stored code for the address.

		Returns:
		  - error: ErrCodeExpired when absent (never issued, expired, or consumed)
	*/
	Get(context context.Context, address string) (string, error)

	// Delete consumes the code. Deleting an absent key is not an error.
	Delete(context context.Context, address string) error
}

// # User Cache

// UserCache is the canonical by-ID read-through cache for user records.
//
// Best-effort freshness only. Writers that mutate a user row must invalidate
// the entry; readers must fall back to the repository on any miss or error.
type UserCache interface {
	Set(context context.Context, user *User, ttl time.Duration) error
	Get(context context.Context, id int64) (*User, error)
	Delete(context context.Context, id int64) error
}
