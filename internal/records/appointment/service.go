// Copyright (c) 2026 Medibank. All rights reserved.

package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/the-capital-hub/medibank-backend/internal/platform/objectstore"
	"github.com/the-capital-hub/medibank-backend/internal/platform/validate"
	"github.com/the-capital-hub/medibank-backend/internal/records/recordid"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
)

// Object-key prefixes for appointment attachments.
const (
	prescriptionPrefix = "prescriptions"
	reportPrefix       = "appointment-reports"
)

// createMaxAttempts bounds the business-ID retry loop when racing creates
// draw the same sequence number.
const createMaxAttempts = 3

// Service implements appointment record operations.
type Service struct {
	reader UserReader
	repo   Repository
	store  ObjectStore
}

// NewService constructs a new [Service] with its dependencies.
func NewService(reader UserReader, repo Repository, store ObjectStore) *Service {
	return &Service{reader: reader, repo: repo, store: store}
}

// CreateInput holds the data for a new appointment record.
type CreateInput struct {
	DoctorName  string
	Specialty   string
	ScheduledAt time.Time
	Location    string
	Vitals      Vitals
	Notes       string

	// Declared content types for optional attachments. Nil means the client
	// is not uploading that file.
	PrescriptionContentType *string
	ReportContentType       *string
}

/*
Create records a new appointment for the authenticated account.

Description: Draws the next per-user sequence number, formats the business ID
from the owner's member ID, and inserts the record. When the client declared
attachments, object keys are generated and presigned PUT grants are returned
alongside the record.

Concurrency: two racing creates can draw the same sequence number; the
business-ID unique constraint rejects the loser, which redraws and retries.

Returns:
  - *CreateResult: Created record plus any upload grants
  - error: Validation or persistence failures
*/
func (service *Service) Create(ctx context.Context, userID int64, input CreateInput) (*CreateResult, error) {
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	user, err := service.reader.FetchByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	record := &Appointment{
		UserID:      userID,
		DoctorName:  input.DoctorName,
		Specialty:   input.Specialty,
		ScheduledAt: input.ScheduledAt,
		Location:    input.Location,
		Status:      StatusScheduled,
		Vitals:      input.Vitals,
		Notes:       input.Notes,
	}

	result := &CreateResult{}

	if input.PrescriptionContentType != nil {
		record.PrescriptionKey = objectstore.NewKey(prescriptionPrefix)
		result.PrescriptionUploadURL, err = service.store.PresignPut(ctx, record.PrescriptionKey, *input.PrescriptionContentType)
		if err != nil {
			return nil, fmt.Errorf("appointment_service_presign_failed: %w", err)
		}
	}
	if input.ReportContentType != nil {
		record.ReportKey = objectstore.NewKey(reportPrefix)
		result.ReportUploadURL, err = service.store.PresignPut(ctx, record.ReportKey, *input.ReportContentType)
		if err != nil {
			return nil, fmt.Errorf("appointment_service_presign_failed: %w", err)
		}
	}

	for attempt := 0; attempt < createMaxAttempts; attempt++ {
		sequence, err := service.repo.NextSequence(ctx, userID)
		if err != nil {
			return nil, err
		}

		record.BusinessID = recordid.Format(user.MemberID, recordid.TypeAppointment, sequence)

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

	return nil, fmt.Errorf("appointment_service_sequence_exhausted: no free business id after %d attempts", createMaxAttempts)
}

// validateCreateInput applies the creation preconditions.
func validateCreateInput(input *CreateInput) error {
	validator := &validate.Validator{}
	validator.Required("doctor_name", input.DoctorName).
		MaxLen("doctor_name", input.DoctorName, 120).
		Custom("scheduled_at", input.ScheduledAt.IsZero(), "This field is required")
	return validator.Err()
}

/*
List returns one page of the account's appointments, newest first.

Returns:
  - []*View: Records with attachment URLs resolved
  - pagination.Meta: Page metadata
  - error: Retrieval failures
*/
func (service *Service) List(ctx context.Context, userID int64, params pagination.Params) ([]*View, pagination.Meta, error) {
	records, total, err := service.repo.ListByUser(ctx, userID, params)
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
Get returns a single appointment by business ID, scoped to its owner.

Returns:
  - *View: Record with attachment URLs resolved
  - error: apperr.NotFound or retrieval failures
*/
func (service *Service) Get(ctx context.Context, userID int64, businessID string) (*View, error) {
	record, err := service.repo.FindByBusinessID(ctx, userID, businessID)
	if err != nil {
		return nil, err
	}
	return service.view(ctx, record)
}

// view resolves object keys into short-lived download URLs.
func (service *Service) view(ctx context.Context, record *Appointment) (*View, error) {
	view := &View{Appointment: record}

	var err error
	if record.PrescriptionKey != "" {
		view.PrescriptionURL, err = service.store.PresignGet(ctx, record.PrescriptionKey)
		if err != nil {
			return nil, fmt.Errorf("appointment_service_presign_failed: %w", err)
		}
	}
	if record.ReportKey != "" {
		view.ReportURL, err = service.store.PresignGet(ctx, record.ReportKey)
		if err != nil {
			return nil, fmt.Errorf("appointment_service_presign_failed: %w", err)
		}
	}

	return view, nil
}
