package models

import "time"

// IncidentType classifies a reported incident.
type IncidentType string

const (
	TypeEmployee      IncidentType = "employee"
	TypeEnvironmental IncidentType = "environmental"
	TypeProperty      IncidentType = "property"
	TypeVehicle       IncidentType = "vehicle"
	TypeFire          IncidentType = "fire"
)

// IncidentTypes lists every valid incident type.
var IncidentTypes = []IncidentType{
	TypeEmployee,
	TypeEnvironmental,
	TypeProperty,
	TypeVehicle,
	TypeFire,
}

// ValidIncidentType reports whether raw names a known incident type.
func ValidIncidentType(raw string) bool {
	for _, t := range IncidentTypes {
		if string(t) == raw {
			return true
		}
	}
	return false
}

// Incident is a reported event tracked through the open/acknowledged/closed
// lifecycle. The lifecycle state is encoded by the two booleans: open
// (false,false), acknowledged (true,false), closed (any,true).
type Incident struct {
	ID               string       `db:"id" json:"id"`
	Title            string       `db:"title" json:"title"`
	Description      string       `db:"description" json:"description"`
	Type             IncidentType `db:"type" json:"type"`
	AssigneeID       string       `db:"assignee_id" json:"assigneeId"`
	IsResolved       bool         `db:"is_resolved" json:"isResolved"`
	ClosedByID       *string      `db:"closed_by_id" json:"closedById"`
	ClosedAt         *time.Time   `db:"closed_at" json:"closedAt"`
	IsAcknowledged   bool         `db:"is_acknowledged" json:"isAcknowledged"`
	AcknowledgedByID *string      `db:"acknowledged_by_id" json:"acknowledgedById"`
	AcknowledgedAt   *time.Time   `db:"acknowledged_at" json:"acknowledgedAt"`
	CreatedByID      string       `db:"created_by_id" json:"createdById"`
	CreatedAt        time.Time    `db:"created_at" json:"createdAt"`
	UpdatedByID      *string      `db:"updated_by_id" json:"updatedById"`
	UpdatedAt        *time.Time   `db:"updated_at" json:"updatedAt"`
}

// Acknowledge applies the acknowledge (or reopen) transition. Acknowledging a
// closed incident clears the closed fields, un-resolving it.
func (i *Incident) Acknowledge(callerID string, now time.Time) {
	i.IsAcknowledged = true
	i.AcknowledgedByID = &callerID
	i.AcknowledgedAt = &now
	i.IsResolved = false
	i.ClosedByID = nil
	i.ClosedAt = nil
}

// Close applies the close transition.
func (i *Incident) Close(callerID string, now time.Time) {
	i.IsResolved = true
	i.ClosedByID = &callerID
	i.ClosedAt = &now
}
