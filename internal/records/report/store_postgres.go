// Copyright (c) 2026 Medibank. All rights reserved.

package report

import (
	"context"
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
var ErrBusinessIDTaken = errors.New("report: business id already taken")

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const reportColumns = `id, businessid, userid, kind, title, facility, doctorname, reportdate, notes, filekey, createdat`

// Create inserts the record.
func (repository *PostgresRepository) Create(ctx context.Context, record *Report) error {
	const query = `
		INSERT INTO records.report (
			businessid, userid, kind, title, facility, doctorname, reportdate, notes, filekey, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	record.CreatedAt = time.Now()

	err := repository.pool.QueryRow(ctx, query,
		record.BusinessID,
		record.UserID,
		record.Kind,
		record.Title,
		record.Facility,
		record.DoctorName,
		record.ReportDate,
		record.Notes,
		record.FileKey,
		record.CreatedAt,
	).Scan(&record.ID)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrBusinessIDTaken
		}
		return fmt.Errorf("postgres_report_repo_create_failed: %w", err)
	}

	return nil
}

// NextSequence returns the next per-user, per-kind sequence number.
func (repository *PostgresRepository) NextSequence(ctx context.Context, userID int64, kind Kind) (int, error) {
	const query = `SELECT COUNT(*) + 1 FROM records.report WHERE userid = $1 AND kind = $2`

	var next int
	if err := repository.pool.QueryRow(ctx, query, userID, kind).Scan(&next); err != nil {
		return 0, fmt.Errorf("postgres_report_repo_sequence_failed: %w", err)
	}
	return next, nil
}

// ListByUser returns one page of the user's reports of the given kind,
// newest first.
func (repository *PostgresRepository) ListByUser(ctx context.Context, userID int64, kind Kind, params pagination.Params) ([]*Report, int, error) {
	const countQuery = `SELECT COUNT(*) FROM records.report WHERE userid = $1 AND kind = $2`
	const listQuery = `
		SELECT ` + reportColumns + `
		FROM records.report
		WHERE userid = $1 AND kind = $2
		ORDER BY createdat DESC, id DESC
		LIMIT $3 OFFSET $4`

	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, userID, kind).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_report_repo_count_failed: %w", err)
	}

	rows, err := repository.pool.Query(ctx, listQuery, userID, kind, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_report_repo_list_failed: %w", err)
	}
	defer rows.Close()

	records := make([]*Report, 0, params.Limit)
	for rows.Next() {
		record, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_report_repo_list_failed: %w", err)
	}

	return records, total, nil
}

// FindByBusinessID returns the record, scoped to its owner. The business ID
// embeds the kind's type code, so no kind parameter is needed here.
func (repository *PostgresRepository) FindByBusinessID(ctx context.Context, userID int64, businessID string) (*Report, error) {
	const query = `SELECT ` + reportColumns + ` FROM records.report WHERE userid = $1 AND businessid = $2`

	record, err := scanReport(repository.pool.QueryRow(ctx, query, userID, businessID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Report")
		}
		return nil, err
	}

	return record, nil
}

// scanReport hydrates one row.
func scanReport(row pgx.Row) (*Report, error) {
	record := &Report{}

	err := row.Scan(
		&record.ID,
		&record.BusinessID,
		&record.UserID,
		&record.Kind,
		&record.Title,
		&record.Facility,
		&record.DoctorName,
		&record.ReportDate,
		&record.Notes,
		&record.FileKey,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("postgres_report_repo_scan_failed: %w", err)
	}

	return record, nil
}
