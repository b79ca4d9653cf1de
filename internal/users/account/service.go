// Copyright (c) 2026 Medibank. All rights reserved.

package account

import (
	"context"
	"fmt"

	"github.com/the-capital-hub/medibank-backend/internal/platform/apperr"
	"github.com/the-capital-hub/medibank-backend/internal/platform/objectstore"
	"github.com/the-capital-hub/medibank-backend/internal/platform/validate"
	"github.com/the-capital-hub/medibank-backend/internal/users/auth"
	"github.com/the-capital-hub/medibank-backend/pkg/pointer"
)

// profilePicPrefix partitions profile pictures inside the media bucket.
const profilePicPrefix = "profile-pics"

// allowedPictureTypes lists the media types accepted for profile pictures.
// The declared type is pinned into the presigned URL's signature.
var allowedPictureTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Service implements the self-service profile operations.
type Service struct {
	reader UserReader
	repo   Repository
	cache  CacheInvalidator
	store  ObjectStore
}

// NewService constructs a new [Service] with its dependencies.
func NewService(reader UserReader, repo Repository, cache CacheInvalidator, store ObjectStore) *Service {
	return &Service{
		reader: reader,
		repo:   repo,
		cache:  cache,
		store:  store,
	}
}

/*
Profile assembles the full self view of the authenticated account.

Description: Resolves the user through the read-through cache, attaches the
credentials row for doctor-role accounts, and derives a short-lived download
URL when a profile picture exists. The object key itself never reaches the
client.

Returns:
  - *Profile: Transport-ready view
  - error: apperr.NotFound or retrieval failures
*/
func (service *Service) Profile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := service.reader.FetchByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{View: auth.NewView(user)}

	if user.Role.RequiresSupplementaryData() {
		details, err := service.repo.GetDoctorDetails(ctx, userID)
		if err != nil {
			return nil, err
		}
		profile.DoctorDetails = details
	}

	if user.ProfilePicKey != "" {
		url, err := service.store.PresignGet(ctx, user.ProfilePicKey)
		if err != nil {
			return nil, fmt.Errorf("account_service_presign_get_failed: %w", err)
		}
		profile.ProfilePicURL = url
	}

	return profile, nil
}

/*
UpdateProfile applies a partial update to the authenticated account.

Description: Only the non-nil fields of changes are written. The by-ID cache
entry is invalidated after the write so the next read reflects the change.

Returns:
  - *Profile: Fresh view after the update
  - error: Validation or persistence failures
*/
func (service *Service) UpdateProfile(ctx context.Context, userID int64, changes *ProfileChanges) (*Profile, error) {
	if changes.IsEmpty() {
		return nil, apperr.ValidationError("No updatable fields provided")
	}

	validator := &validate.Validator{}
	if changes.FullName != nil {
		validator.Required(auth.FieldFullName, pointer.Val(changes.FullName)).
			MaxLen(auth.FieldFullName, pointer.Val(changes.FullName), 120)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.UpdateProfile(ctx, userID, changes); err != nil {
		return nil, err
	}

	_ = service.cache.Delete(ctx, userID)

	return service.Profile(ctx, userID)
}

/*
RequestPictureUpload grants a presigned upload for a new profile picture.

Description: Generates a fresh object key, persists it as the account's
picture key, invalidates the cache entry, and returns a presigned PUT URL the
client uploads the bytes to. The declared content type is pinned into the
signature, so the client cannot upload a different media type.

Returns:
  - *UploadGrant: Presigned URL and the object key it targets
  - error: Validation or persistence failures
*/
func (service *Service) RequestPictureUpload(ctx context.Context, userID int64, contentType string) (*UploadGrant, error) {
	validator := &validate.Validator{}
	validator.OneOf("content_type", contentType, allowedPictureTypes...)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	key := objectstore.NewKey(profilePicPrefix)

	url, err := service.store.PresignPut(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("account_service_presign_put_failed: %w", err)
	}

	if err := service.repo.UpdateProfilePicKey(ctx, userID, key); err != nil {
		return nil, err
	}

	_ = service.cache.Delete(ctx, userID)

	return &UploadGrant{UploadURL: url, Key: key}, nil
}
