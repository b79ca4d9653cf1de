// Copyright (c) 2026 Medibank. All rights reserved.

package appointment

import (
	"context"
	"fmt"
	"testing"
	"time"

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
	userCopy.MemberID = fmt.Sprintf("MB%08d", 10000000+id)
	return &userCopy, nil
}

type fakeRepo struct {
	records []*Appointment
	nextID  int64
}

func (repo *fakeRepo) Create(_ context.Context, record *Appointment) error {
	for _, existing := range repo.records {
		if existing.BusinessID == record.BusinessID {
			return ErrBusinessIDTaken
		}
	}
	repo.nextID++
	record.ID = repo.nextID
	stored := *record
	repo.records = append(repo.records, &stored)
	return nil
}

func (repo *fakeRepo) NextSequence(_ context.Context, userID int64) (int, error) {
	count := 0
	for _, record := range repo.records {
		if record.UserID == userID {
			count++
		}
	}
	return count + 1, nil
}

func (repo *fakeRepo) ListByUser(_ context.Context, userID int64, params pagination.Params) ([]*Appointment, int, error) {
	matched := make([]*Appointment, 0)
	for _, record := range repo.records {
		if record.UserID == userID {
			matched = append(matched, record)
		}
	}
	return matched, len(matched), nil
}

func (repo *fakeRepo) FindByBusinessID(_ context.Context, userID int64, businessID string) (*Appointment, error) {
	for _, record := range repo.records {
		if record.UserID == userID && record.BusinessID == businessID {
			return record, nil
		}
	}
	return nil, apperr.NotFound("Appointment")
}

type fakeObjectStore struct {
	putKeys []string
	getKeys []string
}

func (store *fakeObjectStore) PresignPut(_ context.Context, key, contentType string) (string, error) {
	store.putKeys = append(store.putKeys, key)
	return "https://bucket.test/put/" + key, nil
}

func (store *fakeObjectStore) PresignGet(_ context.Context, key string) (string, error) {
	store.getKeys = append(store.getKeys, key)
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

func validInput() CreateInput {
	return CreateInput{
		DoctorName:  "Dr. Mehta",
		Specialty:   "Cardiology",
		ScheduledAt: time.Date(2026, 9, 15, 10, 30, 0, 0, time.UTC),
		Location:    "Fortis Hospital, Pune",
		Vitals:      Vitals{BloodPressure: "120/80", PulseRate: 72},
	}
}

func TestCreate_SequentialBusinessIDs(t *testing.T) {
	service, _, _ := newFixture()
	ctx := context.Background()

	first, err := service.Create(ctx, 7, validInput())
	require.NoError(t, err)
	second, err := service.Create(ctx, 7, validInput())
	require.NoError(t, err)

	assert.Equal(t, "MB10000007AP0001", first.BusinessID)
	assert.Equal(t, "MB10000007AP0002", second.BusinessID)
	assert.Equal(t, StatusScheduled, first.Status)

	// Another user's sequence starts at 0001 independently.
	other, err := service.Create(ctx, 8, validInput())
	require.NoError(t, err)
	assert.Equal(t, "MB10000008AP0001", other.BusinessID)
}

func TestCreate_AttachmentsGrantUploads(t *testing.T) {
	service, _, store := newFixture()

	input := validInput()
	input.PrescriptionContentType = pointer.To("application/pdf")
	input.ReportContentType = pointer.To("image/jpeg")

	result, err := service.Create(context.Background(), 7, input)
	require.NoError(t, err)

	require.Len(t, store.putKeys, 2)
	assert.NotEmpty(t, result.PrescriptionUploadURL)
	assert.NotEmpty(t, result.ReportUploadURL)
	assert.NotEmpty(t, result.PrescriptionURL)
	assert.NotEmpty(t, result.ReportURL)
}

func TestCreate_RequiresDoctorAndSchedule(t *testing.T) {
	service, repo, _ := newFixture()
	ctx := context.Background()

	_, err := service.Create(ctx, 7, CreateInput{ScheduledAt: time.Now()})
	require.Error(t, err)

	_, err = service.Create(ctx, 7, CreateInput{DoctorName: "Dr. Mehta"})
	require.Error(t, err)

	assert.Empty(t, repo.records)
}

func TestGet_ScopedToOwner(t *testing.T) {
	service, _, _ := newFixture()
	ctx := context.Background()

	created, err := service.Create(ctx, 7, validInput())
	require.NoError(t, err)

	found, err := service.Get(ctx, 7, created.BusinessID)
	require.NoError(t, err)
	assert.Equal(t, created.BusinessID, found.BusinessID)

	// A different account cannot reach the record.
	_, err = service.Get(ctx, 8, created.BusinessID)
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestList_ResolvesAttachmentURLs(t *testing.T) {
	service, _, store := newFixture()
	ctx := context.Background()

	input := validInput()
	input.ReportContentType = pointer.To("application/pdf")
	_, err := service.Create(ctx, 7, input)
	require.NoError(t, err)

	views, meta, err := service.List(ctx, 7, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)

	require.Len(t, views, 1)
	assert.NotEmpty(t, views[0].ReportURL)
	assert.Equal(t, 1, meta.Total)
	assert.NotEmpty(t, store.getKeys)
}
