// Copyright (c) 2026 Medibank. All rights reserved.

package sec

// UserRole is the declared account role, fixed at registration time.
type UserRole string

const (
	// RolePatient is the default member role.
	RolePatient UserRole = "patient"

	// RoleDoctor requires supplementary professional credentials
	// (license number, qualification, institution) at registration.
	RoleDoctor UserRole = "doctor"

	// RoleAdmin is provisioned out-of-band, never via self-registration.
	RoleAdmin UserRole = "admin"
)

// IsValid reports whether the role is one a client may self-register as.
func (r UserRole) IsValid() bool {
	return r == RolePatient || r == RoleDoctor
}

// RequiresSupplementaryData reports whether the role needs a professional
// credentials record before the profile is considered complete.
func (r UserRole) RequiresSupplementaryData() bool {
	return r == RoleDoctor
}

// AtLeast reports whether this role meets or exceeds the target role.
//
// Admin satisfies everything; other roles only satisfy themselves.
func (r UserRole) AtLeast(target UserRole) bool {
	if r == RoleAdmin {
		return true
	}
	return r == target
}
