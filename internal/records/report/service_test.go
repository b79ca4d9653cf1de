// Copyright (c) 2026 Medibank. All rights reserved.

package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-capital-hub/medibank-backend/internal/platform/apperr"
	"github.com/the-capital-hub/medibank-backend/internal/platform/sec"
	"github.com/the-capital-hub/medibank-backend/internal/users/auth"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
	"github.com/the-capital-hub/medibank-backend/pkg/pointer"
)

type fakeReader struct {
	user *auth.User
}

func (reader *fakeReader) FetchByID(_ context.Context, id int64) (*auth.User, error) {
	userCopy := *reader.user
	userCopy.ID = id
	return &userCopy, nil
}

type fakeRepo struct {
	records []*Report
	nextID  int64

	// collisions forces the next N creates to report a taken business ID.
	collisions int
}

func (repo *fakeRepo) Create(_ context.Context, record *Report) error {
	if repo.collisions > 0 {
		repo.collisions--
		return ErrBusinessIDTaken
	}
	repo.nextID++
	record.ID = repo.nextID
	stored := *record
	repo.records = append(repo.records, &stored)
	return nil
}

func (repo *fakeRepo) NextSequence(_ context.Context, userID int64, kind Kind) (int, error) {
	count := 0
	for _, record := range repo.records {
		if record.UserID == userID && record.Kind == kind {
			count++
		}
	}
	return count + 1, nil
}

func (repo *fakeRepo) ListByUser(_ context.Context, userID int64, kind Kind, params pagination.Params) ([]*Report, int, error) {
	matched := make([]*Report, 0)
	for _, record := range repo.records {
		if record.UserID == userID && record.Kind == kind {
			matched = append(matched, record)
		}
	}
	return matched, len(matched), nil
}

func (repo *fakeRepo) FindByBusinessID(_ context.Context, userID int64, businessID string) (*Report, error) {
	for _, record := range repo.records {
		if record.UserID == userID && record.BusinessID == businessID {
			return record, nil
		}
	}
	return nil, apperr.NotFound("Report")
}

type fakeObjectStore struct {
	putKeys []string
}

func (store *fakeObjectStore) PresignPut(_ context.Context, key, contentType string) (string, error) {
	store.putKeys = append(store.putKeys, key)
	return "https://bucket.test/put/" + key, nil
}

func (store *fakeObjectStore) PresignGet(_ context.Context, key string) (string, error) {
	return "https://bucket.test/get/" + key, nil
}

func newFixture() (*Service, *fakeRepo, *fakeObjectStore) {
	reader := &fakeReader{user: &auth.User{
		MemberID: "MB12345678",
		Role:     sec.RolePatient,
	}}
	repo := &fakeRepo{}
	store := &fakeObjectStore{}
	return NewService(reader, repo, store), repo, store
}

func TestCreate_BusinessIDPerKindSequence(t *testing.T) {
	service, _, _ := newFixture()
	ctx := context.Background()

	lab1, err := service.Create(ctx, 7, CreateInput{Kind: KindLab, Title: "CBC Panel"})
	require.NoError(t, err)
	lab2, err := service.Create(ctx, 7, CreateInput{Kind: KindLab, Title: "Lipid Profile"})
	require.NoError(t, err)
	hospital1, err := service.Create(ctx, 7, CreateInput{Kind: KindHospital, Title: "Discharge Summary"})
	require.NoError(t, err)

	assert.Equal(t, "MB12345678LR0001", lab1.BusinessID)
	assert.Equal(t, "MB12345678LR0002", lab2.BusinessID)

	// Each kind runs its own sequence: the first hospital report is 0001 even
	// though two lab reports already exist.
	assert.Equal(t, "MB12345678HR0001", hospital1.BusinessID)
}

func TestCreate_RejectsUnknownKind(t *testing.T) {
	service, repo, _ := newFixture()

	_, err := service.Create(context.Background(), 7, CreateInput{Kind: "xray", Title: "T"})
	require.Error(t, err)
	assert.Empty(t, repo.records)
}

func TestCreate_FileDeclarationGrantsUpload(t *testing.T) {
	service, _, store := newFixture()

	result, err := service.Create(context.Background(), 7, CreateInput{
		Kind:            KindLab,
		Title:           "CBC Panel",
		FileContentType: pointer.To("application/pdf"),
	})
	require.NoError(t, err)

	require.Len(t, store.putKeys, 1)
	assert.Contains(t, result.FileUploadURL, store.putKeys[0])
	assert.Contains(t, result.FileURL, store.putKeys[0])
}

func TestCreate_CollisionRedrawsSequence(t *testing.T) {
	service, repo, _ := newFixture()
	repo.collisions = 2

	result, err := service.Create(context.Background(), 7, CreateInput{Kind: KindLab, Title: "CBC Panel"})
	require.NoError(t, err)
	assert.Equal(t, "MB12345678LR0001", result.BusinessID)
	assert.Len(t, repo.records, 1)
}

func TestList_RequiresValidKind(t *testing.T) {
	service, _, _ := newFixture()

	_, _, err := service.List(context.Background(), 7, Kind(""), pagination.Params{Page: 1, Limit: 20})
	require.Error(t, err)
}
