// Copyright (c) 2026 Medibank. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/the-capital-hub/medibank-backend/internal/platform/apperr"
	"github.com/the-capital-hub/medibank-backend/internal/platform/dberr"
)

// Unique-constraint names owned by the users.account table. The violated
// constraint decides which duplicate error the caller sees.
const (
	constraintAccountEmail    = "account_email_key"
	constraintAccountMobile   = "account_mobile_key"
	constraintAccountMemberID = "account_memberid_key"
)

// errMemberIDTaken signals a member-ID collision. Internal only: the service
// regenerates the ID and retries rather than surfacing this to the client.
var errMemberIDTaken = errors.New("auth: member id already taken")

// PostgresUserRepository implements the UserRepository interface using pgx.
//
// # Error Mapping
//
// Unique violations (SQLSTATE 23505) are translated by constraint name: the
// email and mobile constraints become client-facing duplicate-account errors,
// the member-ID constraint becomes the retryable [errMemberIDTaken]. This is
// the authoritative duplicate signal; the service-level pre-checks are only a
// fast path.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, memberid, email, mobile, passwordhash, fullname, gender, dateofbirth, city, role, profilepickey, createdat, updatedat`

/*
Create persists a new account and, for doctor-role accounts, its credentials
row in the same transaction. The assigned numeric ID is written back into
user.ID on success.

Returns:
  - error: ErrDuplicateAccount, errMemberIDTaken, or persistence failures
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User, doctor *DoctorDetails) error {
	const insertAccount = `
		INSERT INTO users.account (
			memberid, email, mobile, passwordhash, fullname, gender, dateofbirth, city, role, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	const insertDoctor = `
		INSERT INTO users.doctordetail (
			userid, licensenumber, qualification, institution, graduationyear
		) VALUES ($1, $2, $3, $4, $5)`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	err = transaction.QueryRow(context, insertAccount,
		user.MemberID,
		user.Email,
		user.Mobile,
		user.PasswordHash,
		user.FullName,
		user.Gender,
		user.DateOfBirth,
		user.City,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		return mapAccountInsertError(err)
	}

	if doctor != nil {
		doctor.UserID = user.ID
		_, err = transaction.Exec(context, insertDoctor,
			doctor.UserID,
			doctor.LicenseNumber,
			doctor.Qualification,
			doctor.Institution,
			doctor.GraduationYear,
		)
		if err != nil {
			return fmt.Errorf("postgres_user_repo_doctor_insert_failed: %w", err)
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_user_repo_commit_failed: %w", err)
	}

	return nil
}

// mapAccountInsertError classifies an account INSERT failure by constraint.
func mapAccountInsertError(err error) error {
	switch dberr.ConstraintName(err) {
	case constraintAccountEmail:
		return ErrDuplicateAccount(FieldEmail)
	case constraintAccountMobile:
		return ErrDuplicateAccount(FieldMobile)
	case constraintAccountMemberID:
		return errMemberIDTaken
	}
	return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
}

/*
FindByID retrieves a user record by its immutable numeric identifier.

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id int64) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE id = $1`
	return repository.findOne(context, query, id)
}

/*
FindByEmail retrieves a user record by unique email address.

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE email = $1`
	return repository.findOne(context, query, email)
}

/*
FindByMobile retrieves a user record by unique normalized mobile number.

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByMobile(context context.Context, mobile string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE mobile = $1`
	return repository.findOne(context, query, mobile)
}

// findOne runs a single-row account query and hydrates the entity.
func (repository *PostgresUserRepository) findOne(context context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(context, query, arg).Scan(
		&user.ID,
		&user.MemberID,
		&user.Email,
		&user.Mobile,
		&user.PasswordHash,
		&user.FullName,
		&user.Gender,
		&user.DateOfBirth,
		&user.City,
		&user.Role,
		&user.ProfilePicKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_failed: %w", err)
	}

	return user, nil
}

/*
UpdatePassword replaces only the password hash for the given account.

Returns:
  - error: apperr.NotFound when the account does not exist, or database errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID int64, newHash string) error {
	const query = `UPDATE users.account SET passwordhash = $1, updatedat = $2 WHERE id = $3`

	tag, err := repository.pool.Exec(context, query, newHash, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
