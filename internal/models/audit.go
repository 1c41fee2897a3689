package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionSignup              = "SIGNUP"
	AuditActionLogin               = "LOGIN"
	AuditActionIncidentCreate      = "INCIDENT_CREATE"
	AuditActionIncidentUpdate      = "INCIDENT_UPDATE"
	AuditActionIncidentDelete      = "INCIDENT_DELETE"
	AuditActionIncidentClose       = "INCIDENT_CLOSE"
	AuditActionIncidentAcknowledge = "INCIDENT_ACKNOWLEDGE"
	AuditActionNoteCreate          = "NOTE_CREATE"
	AuditActionNoteUpdate          = "NOTE_UPDATE"
	AuditActionNoteDelete          = "NOTE_DELETE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
