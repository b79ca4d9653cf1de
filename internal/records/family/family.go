// Copyright (c) 2026 Medibank. All rights reserved.

// Package family implements family-member records attached to an account.
// Business IDs follow the <member-id>FM<seq> form.
package family

import (
	"context"
	"time"

	"github.com/the-capital-hub/medibank-backend/internal/users/auth"
	"github.com/the-capital-hub/medibank-backend/pkg/pagination"
)

// relationships lists the accepted relationship values.
var relationships = []string{"spouse", "child", "parent", "sibling", "other"}

// Member is a single family-member record.
type Member struct {
	ID           int64     `json:"-"`
	BusinessID   string    `json:"family_member_id"`
	UserID       int64     `json:"-"`
	FullName     string    `json:"full_name"`
	Relationship string    `json:"relationship"`
	Gender       string    `json:"gender,omitempty"`
	DateOfBirth  string    `json:"date_of_birth,omitempty"`
	BloodGroup   string    `json:"blood_group,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserReader resolves the owning account. Implemented by auth.Service.
type UserReader interface {
	FetchByID(ctx context.Context, id int64) (*auth.User, error)
}

// Repository persists family-member records.
type Repository interface {
	Create(ctx context.Context, record *Member) error
	NextSequence(ctx context.Context, userID int64) (int, error)
	ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]*Member, int, error)
}
