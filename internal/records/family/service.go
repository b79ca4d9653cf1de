// Copyright (c) 2026 Medibank. All rights reserved.

package family

import (
	"context"
	"errors"
	"fmt"

	"github.com/the-capital-hub/medibank-backend/internal/platform/validate"
	"github.com/the-capital-hub/medibank-backend/internal/records/recordid"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
)

const createMaxAttempts = 3

// Service implements family-member record operations.
type Service struct {
	reader UserReader
	repo   Repository
}

// NewService constructs a new [Service] with its dependencies.
func NewService(reader UserReader, repo Repository) *Service {
	return &Service{reader: reader, repo: repo}
}

// CreateInput holds the data for a new family-member record.
type CreateInput struct {
	FullName     string
	Relationship string
	Gender       string
	DateOfBirth  string
	BloodGroup   string
}

// Create records a new family member for the authenticated account.
func (service *Service) Create(ctx context.Context, userID int64, input CreateInput) (*Member, error) {
	validator := &validate.Validator{}
	validator.Required("full_name", input.FullName).
		MaxLen("full_name", input.FullName, 120).
		OneOf("relationship", input.Relationship, relationships...)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.reader.FetchByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	record := &Member{
		UserID:       userID,
		FullName:     input.FullName,
		Relationship: input.Relationship,
		Gender:       input.Gender,
		DateOfBirth:  input.DateOfBirth,
		BloodGroup:   input.BloodGroup,
	}

	for attempt := 0; attempt < createMaxAttempts; attempt++ {
		sequence, err := service.repo.NextSequence(ctx, userID)
		if err != nil {
			return nil, err
		}

		record.BusinessID = recordid.Format(user.MemberID, recordid.TypeFamilyMember, sequence)

		err = service.repo.Create(ctx, record)
		if errors.Is(err, ErrBusinessIDTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return record, nil
	}

	return nil, fmt.Errorf("family_service_sequence_exhausted: no free business id after %d attempts", createMaxAttempts)
}

// List returns one page of the account's family members.
func (service *Service) List(ctx context.Context, userID int64, params pagination.Params) ([]*Member, pagination.Meta, error) {
	records, total, err := service.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return records, pagination.NewMeta(params.Page, params.Limit, total), nil
}
