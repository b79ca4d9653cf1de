// Copyright (c) 2026 Medibank. All rights reserved.

/*
Package account implements the authenticated self-service profile surface.

It exposes the current user's profile (including doctor credentials and a
short-lived download URL for the profile picture), partial profile updates,
and the presigned-upload flow for profile pictures. All operations act on the
account identified by the verified token; there is no cross-account access.
*/
package account

import (
	"context"

	"github.com/the-capital-hub/medibank-backend/internal/users/auth"
)

// # Contracts

// UserReader resolves users through the canonical by-ID cache.
// Implemented by auth.Service.
type UserReader interface {
	FetchByID(ctx context.Context, id int64) (*auth.User, error)
}

// Repository persists profile mutations. The read path goes through
// [UserReader]; this interface only covers writes and the doctor lookup.
type Repository interface {
	// UpdateProfile applies the non-nil fields of changes to the account row.
	UpdateProfile(ctx context.Context, userID int64, changes *ProfileChanges) error

	// UpdateProfilePicKey replaces the stored object key.
	UpdateProfilePicKey(ctx context.Context, userID int64, key string) error

	// GetDoctorDetails returns the credentials row for a doctor-role account,
	// or (nil, nil) when none exists.
	GetDoctorDetails(ctx context.Context, userID int64) (*auth.DoctorDetails, error)
}

// CacheInvalidator drops the by-ID cache entry after a mutation.
// Implemented by auth.RedisUserCache.
type CacheInvalidator interface {
	Delete(ctx context.Context, id int64) error
}

// ObjectStore grants presigned access to the media bucket.
// Implemented by objectstore.Store.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// # Types

// ProfileChanges carries a partial profile update. Nil fields are left
// untouched; empty strings clear the optional fields.
type ProfileChanges struct {
	FullName    *string
	Gender      *string
	DateOfBirth *string
	City        *string
}

// IsEmpty reports whether the update would touch nothing.
func (changes *ProfileChanges) IsEmpty() bool {
	return changes.FullName == nil &&
		changes.Gender == nil &&
		changes.DateOfBirth == nil &&
		changes.City == nil
}

// Profile is the transport-ready self view of an account.
type Profile struct {
	*auth.View
	ProfilePicURL string              `json:"profile_pic_url,omitempty"`
	DoctorDetails *auth.DoctorDetails `json:"doctor_details,omitempty"`
}

// UploadGrant is the response to a profile-picture upload request. The client
// PUTs the image bytes directly to UploadURL before the grant expires.
type UploadGrant struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
}
