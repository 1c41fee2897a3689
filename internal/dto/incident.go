package dto

import "time"

// CreateIncidentRequest is the payload for filing a new incident.
type CreateIncidentRequest struct {
	Title       string `json:"title"`
	AssigneeID  string `json:"assigneeId"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// UpdateIncidentRequest is the payload for editing an incident title.
type UpdateIncidentRequest struct {
	Title string `json:"title"`
}

// IncidentDetail is the full incident projection with every user relation
// resolved to a summary and all notes attached, matching the legacy wire
// format.
type IncidentDetail struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Type           string       `json:"type"`
	Description    string       `json:"description"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      *time.Time   `json:"updatedAt"`
	IsResolved     bool         `json:"isResolved"`
	ClosedAt       *time.Time   `json:"closedAt"`
	IsAcknowledged bool         `json:"isAcknowledged"`
	AcknowledgedAt *time.Time   `json:"acknowledgedAt"`
	CreatedByID    string       `json:"createdById"`
	UpdatedByID    *string      `json:"updatedById"`
	AssigneeID     string       `json:"assigneeId"`
	Assignee       *UserSummary `json:"assignee"`
	CreatedBy      *UserSummary `json:"createdBy"`
	UpdatedBy      *UserSummary `json:"updatedBy"`
	ClosedBy       *UserSummary `json:"closedBy"`
	AcknowledgedBy *UserSummary `json:"acknowledgedBy"`
	Notes          []NoteDetail `json:"notes"`
}
