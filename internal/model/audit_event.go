// Package model defines domain entities for the application.
package model

import "time"

// Audit actions recorded by the pipeline.
const (
	AuditActionAuthenticated  = "authenticated"
	AuditActionLogin          = "login"
	AuditActionLogout         = "logout"
	AuditActionRegistered     = "registered"
	AuditActionPetAdopted     = "pet_adopted"
	AuditActionStatusUpdated  = "adoption_status_updated"
)

// AuditEvent is a best-effort record of a security-relevant action.
// Events are published fire-and-forget; losing one never fails a request.
type AuditEvent struct {
	ID         int64     `json:"id,omitempty"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	Subject    string    `json:"subject,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
