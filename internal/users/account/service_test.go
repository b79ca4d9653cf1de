// Copyright (c) 2026 Medibank. All rights reserved.

package account

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-capital-hub/medibank-backend/internal/platform/apperr"
	"github.com/the-capital-hub/medibank-backend/internal/platform/sec"
	"github.com/the-capital-hub/medibank-backend/internal/users/auth"
	"github.com/the-capital-hub/medibank-backend/pkg/pointer"
)

// # Test Doubles

type fakeReader struct {
	user *auth.User
}

func (reader *fakeReader) FetchByID(_ context.Context, id int64) (*auth.User, error) {
	if reader.user == nil || reader.user.ID != id {
		return nil, apperr.NotFound("User")
	}
	userCopy := *reader.user
	return &userCopy, nil
}

type fakeRepo struct {
	user    *auth.User
	doctor  *auth.DoctorDetails
	updates []*ProfileChanges
}

func (repo *fakeRepo) UpdateProfile(_ context.Context, userID int64, changes *ProfileChanges) error {
	if repo.user == nil || repo.user.ID != userID {
		return apperr.NotFound("User")
	}
	repo.updates = append(repo.updates, changes)
	if changes.FullName != nil {
		repo.user.FullName = *changes.FullName
	}
	if changes.City != nil {
		repo.user.City = *changes.City
	}
	return nil
}

func (repo *fakeRepo) UpdateProfilePicKey(_ context.Context, userID int64, key string) error {
	if repo.user == nil || repo.user.ID != userID {
		return apperr.NotFound("User")
	}
	repo.user.ProfilePicKey = key
	return nil
}

func (repo *fakeRepo) GetDoctorDetails(_ context.Context, userID int64) (*auth.DoctorDetails, error) {
	if repo.doctor != nil && repo.doctor.UserID == userID {
		return repo.doctor, nil
	}
	return nil, nil
}

type fakeInvalidator struct {
	deleted []int64
}

func (inv *fakeInvalidator) Delete(_ context.Context, id int64) error {
	inv.deleted = append(inv.deleted, id)
	return nil
}

type fakeObjectStore struct {
	putKeys []string
	getKeys []string
}

func (store *fakeObjectStore) PresignPut(_ context.Context, key, contentType string) (string, error) {
	store.putKeys = append(store.putKeys, key)
	return "https://bucket.test/put/" + key + "?ct=" + contentType, nil
}

func (store *fakeObjectStore) PresignGet(_ context.Context, key string) (string, error) {
	store.getKeys = append(store.getKeys, key)
	return "https://bucket.test/get/" + key, nil
}

func newFixture() (*Service, *fakeReader, *fakeRepo, *fakeInvalidator, *fakeObjectStore) {
	user := &auth.User{
		ID:       7,
		MemberID: "MB10000007",
		Email:    "a@x.com",
		Mobile:   "+919876543211",
		FullName: "Asha Rao",
		Role:     sec.RolePatient,
	}

	reader := &fakeReader{user: user}
	repo := &fakeRepo{user: user}
	inv := &fakeInvalidator{}
	store := &fakeObjectStore{}

	return NewService(reader, repo, inv, store), reader, repo, inv, store
}

// # Tests

func TestProfile_PlainPatient(t *testing.T) {
	service, _, _, _, store := newFixture()

	profile, err := service.Profile(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "MB10000007", profile.MemberID)
	assert.Nil(t, profile.DoctorDetails)
	assert.Empty(t, profile.ProfilePicURL)
	assert.Empty(t, store.getKeys, "no picture key, no presign call")
}

func TestProfile_DoctorWithPicture(t *testing.T) {
	service, reader, repo, _, _ := newFixture()

	reader.user.Role = sec.RoleDoctor
	reader.user.ProfilePicKey = "profile-pics/2026/8/30/abc"
	repo.doctor = &auth.DoctorDetails{
		UserID:        7,
		LicenseNumber: "MCI-2210-4431",
	}

	profile, err := service.Profile(context.Background(), 7)
	require.NoError(t, err)

	require.NotNil(t, profile.DoctorDetails)
	assert.Equal(t, "MCI-2210-4431", profile.DoctorDetails.LicenseNumber)
	assert.Equal(t, "https://bucket.test/get/profile-pics/2026/8/30/abc", profile.ProfilePicURL)
}

func TestUpdateProfile_PartialAndInvalidation(t *testing.T) {
	service, _, repo, inv, _ := newFixture()

	profile, err := service.UpdateProfile(context.Background(), 7, &ProfileChanges{
		City: pointer.To("Pune"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Pune", profile.City)
	assert.Equal(t, "Asha Rao", profile.FullName, "untouched field survives")
	require.Len(t, repo.updates, 1)
	assert.Nil(t, repo.updates[0].FullName)
	assert.Equal(t, []int64{7}, inv.deleted)
}

func TestUpdateProfile_EmptyChangeSetRejected(t *testing.T) {
	service, _, repo, inv, _ := newFixture()

	_, err := service.UpdateProfile(context.Background(), 7, &ProfileChanges{})
	require.Error(t, err)
	require.NotNil(t, apperr.As(err))

	assert.Empty(t, repo.updates)
	assert.Empty(t, inv.deleted)
}

func TestUpdateProfile_BlankFullNameRejected(t *testing.T) {
	service, _, repo, _, _ := newFixture()

	_, err := service.UpdateProfile(context.Background(), 7, &ProfileChanges{
		FullName: pointer.To("  "),
	})
	require.Error(t, err)
	assert.Empty(t, repo.updates)
}

func TestRequestPictureUpload_GrantsAndPersistsKey(t *testing.T) {
	service, reader, _, inv, store := newFixture()

	grant, err := service.RequestPictureUpload(context.Background(), 7, "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(grant.Key, "profile-pics/"))
	assert.Contains(t, grant.UploadURL, grant.Key)
	assert.Equal(t, []string{grant.Key}, store.putKeys)
	assert.Equal(t, grant.Key, reader.user.ProfilePicKey)
	assert.Equal(t, []int64{7}, inv.deleted)
}

func TestRequestPictureUpload_RejectsUnsupportedType(t *testing.T) {
	service, _, _, _, store := newFixture()

	_, err := service.RequestPictureUpload(context.Background(), 7, "application/pdf")
	require.Error(t, err)
	assert.Empty(t, store.putKeys)
}
