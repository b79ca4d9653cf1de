// Copyright (c) 2026 Medibank. All rights reserved.

package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/the-capital-hub/medibank-backend/internal/platform/objectstore"
	"github.com/the-capital-hub/medibank-backend/internal/platform/validate"
	"github.com/the-capital-hub/medibank-backend/internal/records/recordid"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
)

// reportFilePrefix partitions report files inside the media bucket.
const reportFilePrefix = "reports"

// createMaxAttempts bounds the business-ID retry loop.
const createMaxAttempts = 3

// Service implements report record operations for both kinds.
type Service struct {
	reader UserReader
	repo   Repository
	store  ObjectStore
}

// NewService constructs a new [Service] with its dependencies.
func NewService(reader UserReader, repo Repository, store ObjectStore) *Service {
	return &Service{reader: reader, repo: repo, store: store}
}

// CreateInput holds the data for a new report record.
type CreateInput struct {
	Kind       Kind
	Title      string
	Facility   string
	DoctorName string
	ReportDate string
	Notes      string

	// Declared content type for the optional file. Nil means no file.
	FileContentType *string
}

/*
Create records a new report for the authenticated account.

Description: Draws the next per-user, per-kind sequence number, formats the
business ID with the kind's type code, and inserts the record. When a file was
declared, an object key is generated and a presigned PUT grant is returned.

Returns:
  - *CreateResult: Created record plus the upload grant, if any
  - error: Validation or persistence failures
*/
func (service *Service) Create(ctx context.Context, userID int64, input CreateInput) (*CreateResult, error) {
	validator := &validate.Validator{}
	validator.OneOf("kind", string(input.Kind), string(KindLab), string(KindHospital)).
		Required("title", input.Title).
		MaxLen("title", input.Title, 200)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.reader.FetchByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	record := &Report{
		UserID:     userID,
		Kind:       input.Kind,
		Title:      input.Title,
		Facility:   input.Facility,
		DoctorName: input.DoctorName,
		ReportDate: input.ReportDate,
		Notes:      input.Notes,
	}

	result := &CreateResult{}

	if input.FileContentType != nil {
		record.FileKey = objectstore.NewKey(reportFilePrefix)
		result.FileUploadURL, err = service.store.PresignPut(ctx, record.FileKey, *input.FileContentType)
		if err != nil {
			return nil, fmt.Errorf("report_service_presign_failed: %w", err)
		}
	}

	for attempt := 0; attempt < createMaxAttempts; attempt++ {
		sequence, err := service.repo.NextSequence(ctx, userID, input.Kind)
		if err != nil {
			return nil, err
		}

		record.BusinessID = recordid.Format(user.MemberID, input.Kind.TypeCode(), sequence)

		err = service.repo.Create(ctx, record)
		if errors.Is(err, ErrBusinessIDTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		view, err := service.view(ctx, record)
		if err != nil {
			return nil, err
		}
		result.View = view
		return result, nil
	}

	return nil, fmt.Errorf("report_service_sequence_exhausted: no free business id after %d attempts", createMaxAttempts)
}

/*
List returns one page of the account's reports of the given kind.

Returns:
  - []*View: Records with file URLs resolved
  - pagination.Meta: Page metadata
  - error: Validation or retrieval failures
*/
func (service *Service) List(ctx context.Context, userID int64, kind Kind, params pagination.Params) ([]*View, pagination.Meta, error) {
	if !kind.IsValid() {
		return nil, pagination.Meta{}, validate.RequiredError("kind", "Must be one of: lab, hospital")
	}

	records, total, err := service.repo.ListByUser(ctx, userID, kind, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	views := make([]*View, 0, len(records))
	for _, record := range records {
		view, err := service.view(ctx, record)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		views = append(views, view)
	}

	return views, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
Get returns a single report by business ID, scoped to its owner.

Returns:
  - *View: Record with the file URL resolved
  - error: apperr.NotFound or retrieval failures
*/
func (service *Service) Get(ctx context.Context, userID int64, businessID string) (*View, error) {
	record, err := service.repo.FindByBusinessID(ctx, userID, businessID)
	if err != nil {
		return nil, err
	}
	return service.view(ctx, record)
}

// view resolves the file key into a short-lived download URL.
func (service *Service) view(ctx context.Context, record *Report) (*View, error) {
	view := &View{Report: record}

	if record.FileKey != "" {
		url, err := service.store.PresignGet(ctx, record.FileKey)
		if err != nil {
			return nil, fmt.Errorf("report_service_presign_failed: %w", err)
		}
		view.FileURL = url
	}

	return view, nil
}
