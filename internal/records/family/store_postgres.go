// Copyright (c) 2026 Medibank. All rights reserved.

package family

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/the-capital-hub/medibank-backend/internal/platform/dberr"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
)

// ErrBusinessIDTaken signals a business-ID collision between racing creates.
var ErrBusinessIDTaken = errors.New("family: business id already taken")

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts the record.
func (repository *PostgresRepository) Create(ctx context.Context, record *Member) error {
	const query = `
		INSERT INTO records.familymember (
			businessid, userid, fullname, relationship, gender, dateofbirth, bloodgroup, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	record.CreatedAt = time.Now()

	err := repository.pool.QueryRow(ctx, query,
		record.BusinessID,
		record.UserID,
		record.FullName,
		record.Relationship,
		record.Gender,
		record.DateOfBirth,
		record.BloodGroup,
		record.CreatedAt,
	).Scan(&record.ID)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrBusinessIDTaken
		}
		return fmt.Errorf("postgres_family_repo_create_failed: %w", err)
	}

	return nil
}

// NextSequence returns the next per-user sequence number.
func (repository *PostgresRepository) NextSequence(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(*) + 1 FROM records.familymember WHERE userid = $1`

	var next int
	if err := repository.pool.QueryRow(ctx, query, userID).Scan(&next); err != nil {
		return 0, fmt.Errorf("postgres_family_repo_sequence_failed: %w", err)
	}
	return next, nil
}

// ListByUser returns one page of the user's family members, oldest first.
func (repository *PostgresRepository) ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]*Member, int, error) {
	const countQuery = `SELECT COUNT(*) FROM records.familymember WHERE userid = $1`
	const listQuery = `
		SELECT id, businessid, userid, fullname, relationship, gender, dateofbirth, bloodgroup, createdat
		FROM records.familymember
		WHERE userid = $1
		ORDER BY id ASC
		LIMIT $2 OFFSET $3`

	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_family_repo_count_failed: %w", err)
	}

	rows, err := repository.pool.Query(ctx, listQuery, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_family_repo_list_failed: %w", err)
	}
	defer rows.Close()

	records := make([]*Member, 0, params.Limit)
	for rows.Next() {
		record := &Member{}
		err := rows.Scan(
			&record.ID,
			&record.BusinessID,
			&record.UserID,
			&record.FullName,
			&record.Relationship,
			&record.Gender,
			&record.DateOfBirth,
			&record.BloodGroup,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_family_repo_scan_failed: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_family_repo_list_failed: %w", err)
	}

	return records, total, nil
}
