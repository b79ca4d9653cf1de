// Copyright (c) 2026 Medibank. All rights reserved.

/*
Package report implements lab and hospital report records.

The two kinds share one table, one store, and one service; they differ only in
the business-ID type code (LR versus HR) and what the facility field means. A
report optionally carries one file in object storage, accessed exclusively
through presigned URLs.
*/
package report

import (
	"context"
	"time"

	"github.com/the-capital-hub/medibank-backend/internal/records/recordid"
	"github.com/the-capital-hub/medibank-backend/internal/users/auth"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
)

// Kind distinguishes the two report record variants.
type Kind string

const (
	KindLab      Kind = "lab"
	KindHospital Kind = "hospital"
)

// IsValid reports whether the kind is one of the known variants.
func (kind Kind) IsValid() bool {
	return kind == KindLab || kind == KindHospital
}

// TypeCode returns the business-ID type code for the kind.
func (kind Kind) TypeCode() string {
	if kind == KindHospital {
		return recordid.TypeHospitalReport
	}
	return recordid.TypeLabReport
}

// Report is a single lab or hospital report record.
type Report struct {
	ID         int64     `json:"-"`
	BusinessID string    `json:"report_id"`
	UserID     int64     `json:"-"`
	Kind       Kind      `json:"kind"`
	Title      string    `json:"title"`
	Facility   string    `json:"facility,omitempty"` // Lab name or hospital name.
	DoctorName string    `json:"doctor_name,omitempty"`
	ReportDate string    `json:"report_date,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	FileKey    string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// View is the transport form of a report with the file URL resolved.
type View struct {
	*Report
	FileURL string `json:"file_url,omitempty"`
}

// CreateResult pairs the created record with the upload grant for its file,
// when the client declared one.
type CreateResult struct {
	*View
	FileUploadURL string `json:"file_upload_url,omitempty"`
}

// # Contracts

// UserReader resolves the owning account. Implemented by auth.Service.
type UserReader interface {
	FetchByID(ctx context.Context, id int64) (*auth.User, error)
}

// ObjectStore grants presigned access to report files.
// Implemented by objectstore.Store.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// Repository persists report records. Sequences are per user AND per kind, so
// a member's first lab report and first hospital report both end in 0001.
type Repository interface {
	Create(ctx context.Context, record *Report) error
	NextSequence(ctx context.Context, userID int64, kind Kind) (int, error)
	ListByUser(ctx context.Context, userID int64, kind Kind, params pagination.Params) ([]*Report, int, error)
	FindByBusinessID(ctx context.Context, userID int64, businessID string) (*Report, error)
}
