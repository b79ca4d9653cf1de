// Copyright (c) 2026 Medibank. All rights reserved.

package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/the-capital-hub/medibank-backend/internal/platform/apperr"
	"github.com/the-capital-hub/medibank-backend/internal/platform/dberr"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
)

// ErrBusinessIDTaken signals a business-ID collision between racing creates.
// The service redraws the sequence number and retries.
var ErrBusinessIDTaken = errors.New("appointment: business id already taken")

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const appointmentColumns = `id, businessid, userid, doctorname, specialty, scheduledat, location, status, vitals, notes, prescriptionkey, reportkey, createdat`

// Create inserts the record. The vitals block rides as a JSONB document.
func (repository *PostgresRepository) Create(ctx context.Context, record *Appointment) error {
	const query = `
		INSERT INTO records.appointment (
			businessid, userid, doctorname, specialty, scheduledat, location, status, vitals, notes, prescriptionkey, reportkey, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	vitals, err := json.Marshal(record.Vitals)
	if err != nil {
		return fmt.Errorf("postgres_appointment_repo_vitals_marshal_failed: %w", err)
	}

	record.CreatedAt = time.Now()

	err = repository.pool.QueryRow(ctx, query,
		record.BusinessID,
		record.UserID,
		record.DoctorName,
		record.Specialty,
		record.ScheduledAt,
		record.Location,
		record.Status,
		vitals,
		record.Notes,
		record.PrescriptionKey,
		record.ReportKey,
		record.CreatedAt,
	).Scan(&record.ID)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrBusinessIDTaken
		}
		return fmt.Errorf("postgres_appointment_repo_create_failed: %w", err)
	}

	return nil
}

// NextSequence returns the next per-user sequence number.
func (repository *PostgresRepository) NextSequence(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(*) + 1 FROM records.appointment WHERE userid = $1`

	var next int
	if err := repository.pool.QueryRow(ctx, query, userID).Scan(&next); err != nil {
		return 0, fmt.Errorf("postgres_appointment_repo_sequence_failed: %w", err)
	}
	return next, nil
}

// ListByUser returns one page of the user's appointments, newest first.
func (repository *PostgresRepository) ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]*Appointment, int, error) {
	const countQuery = `SELECT COUNT(*) FROM records.appointment WHERE userid = $1`
	const listQuery = `
		SELECT ` + appointmentColumns + `
		FROM records.appointment
		WHERE userid = $1
		ORDER BY scheduledat DESC, id DESC
		LIMIT $2 OFFSET $3`

	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_appointment_repo_count_failed: %w", err)
	}

	rows, err := repository.pool.Query(ctx, listQuery, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_appointment_repo_list_failed: %w", err)
	}
	defer rows.Close()

	records := make([]*Appointment, 0, params.Limit)
	for rows.Next() {
		record, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_appointment_repo_list_failed: %w", err)
	}

	return records, total, nil
}

// FindByBusinessID returns the record, scoped to its owner.
func (repository *PostgresRepository) FindByBusinessID(ctx context.Context, userID int64, businessID string) (*Appointment, error) {
	const query = `SELECT ` + appointmentColumns + ` FROM records.appointment WHERE userid = $1 AND businessid = $2`

	record, err := scanAppointment(repository.pool.QueryRow(ctx, query, userID, businessID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Appointment")
		}
		return nil, err
	}

	return record, nil
}

// scanAppointment hydrates one row, decoding the JSONB vitals block.
func scanAppointment(row pgx.Row) (*Appointment, error) {
	record := &Appointment{}
	var vitals []byte

	err := row.Scan(
		&record.ID,
		&record.BusinessID,
		&record.UserID,
		&record.DoctorName,
		&record.Specialty,
		&record.ScheduledAt,
		&record.Location,
		&record.Status,
		&vitals,
		&record.Notes,
		&record.PrescriptionKey,
		&record.ReportKey,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("postgres_appointment_repo_scan_failed: %w", err)
	}

	if len(vitals) > 0 {
		if err := json.Unmarshal(vitals, &record.Vitals); err != nil {
			return nil, fmt.Errorf("postgres_appointment_repo_vitals_unmarshal_failed: %w", err)
		}
	}

	return record, nil
}
