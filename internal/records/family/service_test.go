// Copyright (c) 2026 Medibank. All rights reserved.

package family

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-capital-hub/medibank-backend/internal/platform/sec"
	"github.com/the-capital-hub/medibank-backend/internal/users/auth"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
)

type fakeReader struct{}

func (fakeReader) FetchByID(_ context.Context, id int64) (*auth.User, error) {
	return &auth.User{ID: id, MemberID: "MB12345678", Role: sec.RolePatient}, nil
}

type fakeRepo struct {
	records []*Member
	nextID  int64
}

func (repo *fakeRepo) Create(_ context.Context, record *Member) error {
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

func (repo *fakeRepo) ListByUser(_ context.Context, userID int64, params pagination.Params) ([]*Member, int, error) {
	matched := make([]*Member, 0)
	for _, record := range repo.records {
		if record.UserID == userID {
			matched = append(matched, record)
		}
	}
	return matched, len(matched), nil
}

func TestCreate_SequentialBusinessIDs(t *testing.T) {
	service := NewService(fakeReader{}, &fakeRepo{})
	ctx := context.Background()

	first, err := service.Create(ctx, 7, CreateInput{FullName: "Ravi Rao", Relationship: "spouse"})
	require.NoError(t, err)
	second, err := service.Create(ctx, 7, CreateInput{FullName: "Meera Rao", Relationship: "child"})
	require.NoError(t, err)

	assert.Equal(t, "MB12345678FM0001", first.BusinessID)
	assert.Equal(t, "MB12345678FM0002", second.BusinessID)
}

func TestCreate_RejectsUnknownRelationship(t *testing.T) {
	repo := &fakeRepo{}
	service := NewService(fakeReader{}, repo)

	_, err := service.Create(context.Background(), 7, CreateInput{FullName: "Ravi Rao", Relationship: "cousin-twice-removed"})
	require.Error(t, err)
	assert.Empty(t, repo.records)
}

func TestList_ScopedToOwner(t *testing.T) {
	service := NewService(fakeReader{}, &fakeRepo{})
	ctx := context.Background()

	_, err := service.Create(ctx, 7, CreateInput{FullName: "Ravi Rao", Relationship: "spouse"})
	require.NoError(t, err)

	mine, meta, err := service.List(ctx, 7, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, 1, meta.Total)

	theirs, _, err := service.List(ctx, 8, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, theirs)
}
