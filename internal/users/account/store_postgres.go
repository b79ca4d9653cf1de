// Copyright (c) 2026 Medibank. All rights reserved.

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/the-capital-hub/medibank-backend/internal/platform/apperr"
	"github.com/the-capital-hub/medibank-backend/internal/users/auth"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
UpdateProfile applies the non-nil fields of changes to the account row.

Nil parameters leave their column untouched via COALESCE; an explicit empty
string clears the optional columns.

Returns:
  - error: apperr.NotFound when the account does not exist, or database errors
*/
func (repository *PostgresRepository) UpdateProfile(ctx context.Context, userID int64, changes *ProfileChanges) error {
	const query = `
		UPDATE users.account SET
			fullname    = COALESCE($1, fullname),
			gender      = COALESCE($2, gender),
			dateofbirth = COALESCE($3, dateofbirth),
			city        = COALESCE($4, city),
			updatedat   = $5
		WHERE id = $6`

	tag, err := repository.pool.Exec(ctx, query,
		changes.FullName,
		changes.Gender,
		changes.DateOfBirth,
		changes.City,
		time.Now(),
		userID,
	)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
UpdateProfilePicKey replaces the stored profile-picture object key.

Returns:
  - error: apperr.NotFound when the account does not exist, or database errors
*/
func (repository *PostgresRepository) UpdateProfilePicKey(ctx context.Context, userID int64, key string) error {
	const query = `UPDATE users.account SET profilepickey = $1, updatedat = $2 WHERE id = $3`

	tag, err := repository.pool.Exec(ctx, query, key, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_pic_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
GetDoctorDetails returns the credentials row for a doctor-role account.

A missing row is not an error: accounts registered before credential
collection simply have none.

Returns:
  - *auth.DoctorDetails: Credentials row, or nil when none exists
  - error: Database errors only
*/
func (repository *PostgresRepository) GetDoctorDetails(ctx context.Context, userID int64) (*auth.DoctorDetails, error) {
	const query = `
		SELECT userid, licensenumber, qualification, institution, graduationyear
		FROM users.doctordetail
		WHERE userid = $1`

	details := &auth.DoctorDetails{}
	err := repository.pool.QueryRow(ctx, query, userID).Scan(
		&details.UserID,
		&details.LicenseNumber,
		&details.Qualification,
		&details.Institution,
		&details.GraduationYear,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres_account_repo_doctor_find_failed: %w", err)
	}

	return details, nil
}
