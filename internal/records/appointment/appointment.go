// Copyright (c) 2026 Medibank. All rights reserved.

/*
Package appointment implements the medical appointment record surface.

Appointments belong to exactly one account and are addressed externally by a
business identifier of the form <member-id>AP<seq>. Optional prescription and
report files live in object storage; the API only ever hands out short-lived
presigned URLs for them.
*/
package appointment

import (
	"context"
	"time"

	"github.com/the-capital-hub/medibank-backend/internal/users/auth"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
)

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Vitals is the measurement block recorded at an appointment. Stored as a
// single JSONB document; absent measurements stay absent.
type Vitals struct {
	BloodPressure string  `json:"blood_pressure,omitempty"`
	PulseRate     int     `json:"pulse_rate,omitempty"`
	TemperatureC  float64 `json:"temperature_c,omitempty"`
	WeightKG      float64 `json:"weight_kg,omitempty"`
	HeightCM      float64 `json:"height_cm,omitempty"`
}

// Appointment is a single appointment record.
type Appointment struct {
	ID              int64     `json:"-"`
	BusinessID      string    `json:"appointment_id"`
	UserID          int64     `json:"-"`
	DoctorName      string    `json:"doctor_name"`
	Specialty       string    `json:"specialty,omitempty"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	Location        string    `json:"location,omitempty"`
	Status          string    `json:"status"`
	Vitals          Vitals    `json:"vitals"`
	Notes           string    `json:"notes,omitempty"`
	PrescriptionKey string    `json:"-"`
	ReportKey       string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// View is the transport form of an appointment: object keys are resolved to
// short-lived download URLs, never exposed directly.
type View struct {
	*Appointment
	PrescriptionURL string `json:"prescription_url,omitempty"`
	ReportURL       string `json:"report_url,omitempty"`
}

// CreateResult pairs the created record with upload grants for any attachments
// the client declared. The client PUTs the file bytes directly to the URLs.
type CreateResult struct {
	*View
	PrescriptionUploadURL string `json:"prescription_upload_url,omitempty"`
	ReportUploadURL       string `json:"report_upload_url,omitempty"`
}

// # Contracts

// UserReader resolves the owning account, mainly for its member ID.
// Implemented by auth.Service.
type UserReader interface {
	FetchByID(ctx context.Context, id int64) (*auth.User, error)
}

// ObjectStore grants presigned access to attachment objects.
// Implemented by objectstore.Store.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// Repository persists appointment records.
type Repository interface {
	// Create inserts the record and writes the assigned numeric ID back.
	// A business-ID collision (two racing creates drew the same sequence
	// number) is reported as a retryable error.
	Create(ctx context.Context, record *Appointment) error

	// NextSequence returns the next per-user sequence number.
	NextSequence(ctx context.Context, userID int64) (int, error)

	// ListByUser returns one page of the user's appointments, newest first,
	// along with the total count.
	ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]*Appointment, int, error)

	// FindByBusinessID returns the record, scoped to its owner.
	FindByBusinessID(ctx context.Context, userID int64, businessID string) (*Appointment, error)
}
