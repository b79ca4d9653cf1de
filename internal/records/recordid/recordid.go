// Copyright (c) 2026 Medibank. All rights reserved.

// Package recordid formats the human-facing business identifiers carried by
// medical records.
//
// Every record belongs to a member and carries an ID of the form
// <member-id><type-code><4-digit-sequence>, for example MB12345678AP0001.
// The sequence is per member and per record type, so the first lab report and
// the first appointment of a member both end in 0001.
package recordid

import "fmt"

// Record type codes embedded in business identifiers.
const (
	TypeAppointment    = "AP"
	TypeLabReport      = "LR"
	TypeHospitalReport = "HR"
	TypeFamilyMember   = "FM"
)

// Format renders a business identifier from its parts.
func Format(memberID, typeCode string, sequence int) string {
	return fmt.Sprintf("%s%s%04d", memberID, typeCode, sequence)
}
