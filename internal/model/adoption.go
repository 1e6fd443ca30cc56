// Package model defines domain entities for the application.
package model

import "time"

// Adoption status values.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidStatuses contains all valid adoption status values.
var ValidStatuses = []string{StatusPending, StatusApproved, StatusRejected}

// IsValidStatus reports whether status is a known adoption status.
func IsValidStatus(status string) bool {
	return status == StatusPending || status == StatusApproved || status == StatusRejected
}

// IsTerminalStatus reports whether status is a resolved state. There are no
// transitions out of approved or rejected.
func IsTerminalStatus(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

// Adoption is the auditable record of a completed adoption request. The pet
// ownership transfer happens when the record is created; Status tracks the
// administrative review of that transfer.
type Adoption struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	PetID     string    `json:"pet"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
