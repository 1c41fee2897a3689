package models

import "time"

// Note is a timestamped comment attached to an incident. Notes use sequential
// identifiers and are removed with their parent incident.
type Note struct {
	ID         int64     `db:"id" json:"id"`
	Body       string    `db:"body" json:"body"`
	AuthorID   string    `db:"author_id" json:"authorId"`
	IncidentID string    `db:"incident_id" json:"incidentId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
