// Copyright (c) 2026 Medibank. All rights reserved.

package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// NewMemberID generates a human-friendly member identifier: the fixed prefix
// followed by [MemberIDDigits] random decimal digits, e.g. "MB04912768".
//
// Uniqueness is enforced by the database, not here. Callers must regenerate
// and retry on a member-ID unique-constraint collision.
func NewMemberID() (string, error) {
	var builder strings.Builder
	builder.WriteString(MemberIDPrefix)

	for i := 0; i < MemberIDDigits; i++ {
		digit, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("auth_member_id_generation_failed: %w", err)
		}
		builder.WriteByte(byte('0') + byte(digit.Int64()))
	}

	return builder.String(), nil
}
