package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/safetrack/incident-api/internal/dto"
	"github.com/safetrack/incident-api/internal/models"
)

// NoteRepository provides database access for incident notes.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository creates a new instance of NoteRepository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

type noteDetailRow struct {
	models.Note
	AuthorUsername string `db:"author_username"`
}

const noteDetailSelect = `
SELECT n.id, n.body, n.author_id, n.incident_id, n.created_at, n.updated_at,
       u.username AS author_username
FROM notes n
JOIN users u ON u.id = n.author_id`

// FindByID returns the raw note row.
func (r *NoteRepository) FindByID(ctx context.Context, id int64) (*models.Note, error) {
	const query = `SELECT id, body, author_id, incident_id, created_at, updated_at FROM notes WHERE id = $1 LIMIT 1`
	var note models.Note
	if err := r.db.GetContext(ctx, &note, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find note by id: %w", err)
	}
	return &note, nil
}

// FindDetailByID returns a note with its author resolved.
func (r *NoteRepository) FindDetailByID(ctx context.Context, id int64) (*dto.NoteDetail, error) {
	query := noteDetailSelect + `
WHERE n.id = $1 LIMIT 1`
	var row noteDetailRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find note detail: %w", err)
	}
	detail := row.toDetail()
	return &detail, nil
}

// ListForIncidents loads the notes of the given incidents in one round trip,
// grouped by incident id, oldest first.
func (r *NoteRepository) ListForIncidents(ctx context.Context, incidentIDs []string) (map[string][]dto.NoteDetail, error) {
	grouped := make(map[string][]dto.NoteDetail, len(incidentIDs))
	if len(incidentIDs) == 0 {
		return grouped, nil
	}

	query := noteDetailSelect + `
WHERE n.incident_id = ANY($1)
ORDER BY n.id ASC`
	var rows []noteDetailRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(incidentIDs)); err != nil {
		return nil, fmt.Errorf("list notes for incidents: %w", err)
	}

	for _, row := range rows {
		grouped[row.IncidentID] = append(grouped[row.IncidentID], row.toDetail())
	}
	return grouped, nil
}

// Create inserts a new note and fills in the generated id and timestamps.
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	now := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	const query = `INSERT INTO notes (body, author_id, incident_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, note.Body, note.AuthorID, note.IncidentID, note.CreatedAt, note.UpdatedAt).Scan(&note.ID); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// Update replaces the note body and bumps updated_at.
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	note.UpdatedAt = time.Now().UTC()
	const query = `UPDATE notes SET body = :body, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

// Delete removes a note.
func (r *NoteRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM notes WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

func (row noteDetailRow) toDetail() dto.NoteDetail {
	return dto.NoteDetail{
		ID:         row.ID,
		IncidentID: row.IncidentID,
		Body:       row.Body,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
		Author:     &dto.UserSummary{ID: row.AuthorID, Username: row.AuthorUsername},
	}
}
