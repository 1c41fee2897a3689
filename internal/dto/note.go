package dto

import "time"

// NoteRequest is the payload for creating or editing a note.
type NoteRequest struct {
	Body string `json:"body"`
}

// NoteDetail is a note with its author resolved.
type NoteDetail struct {
	ID         int64        `json:"id"`
	IncidentID string       `json:"incidentId"`
	Body       string       `json:"body"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	Author     *UserSummary `json:"author"`
}
