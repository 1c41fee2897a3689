package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/safetrack/incident-api/internal/dto"
	"github.com/safetrack/incident-api/internal/models"
)

// IncidentRepository provides database access for incidents and their joined
// detail projections.
type IncidentRepository struct {
	db    *sqlx.DB
	notes *NoteRepository
}

// NewIncidentRepository creates a new instance of IncidentRepository.
func NewIncidentRepository(db *sqlx.DB) *IncidentRepository {
	return &IncidentRepository{db: db, notes: NewNoteRepository(db)}
}

// incidentDetailRow is the flat scan target for the five-way user join.
type incidentDetailRow struct {
	models.Incident
	AssigneeUsername     string         `db:"assignee_username"`
	CreatedByUsername    string         `db:"created_by_username"`
	UpdatedByUsername    sql.NullString `db:"updated_by_username"`
	ClosedByUsername     sql.NullString `db:"closed_by_username"`
	AcknowledgedUsername sql.NullString `db:"acknowledged_by_username"`
}

const incidentDetailSelect = `
SELECT i.id, i.title, i.description, i.type, i.assignee_id,
       i.is_resolved, i.closed_by_id, i.closed_at,
       i.is_acknowledged, i.acknowledged_by_id, i.acknowledged_at,
       i.created_by_id, i.created_at, i.updated_by_id, i.updated_at,
       a.username  AS assignee_username,
       cb.username AS created_by_username,
       ub.username AS updated_by_username,
       clb.username AS closed_by_username,
       ab.username AS acknowledged_by_username
FROM incidents i
JOIN users a   ON a.id = i.assignee_id
JOIN users cb  ON cb.id = i.created_by_id
LEFT JOIN users ub  ON ub.id = i.updated_by_id
LEFT JOIN users clb ON clb.id = i.closed_by_id
LEFT JOIN users ab  ON ab.id = i.acknowledged_by_id`

// ListForUser returns the detailed incidents visible to the given user: the
// ones they are assigned to plus the ones they created, newest first, with
// notes attached.
func (r *IncidentRepository) ListForUser(ctx context.Context, userID string) ([]dto.IncidentDetail, error) {
	query := incidentDetailSelect + `
WHERE i.assignee_id = $1 OR i.created_by_id = $1
ORDER BY i.created_at DESC`

	var rows []incidentDetailRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list incidents for user: %w", err)
	}

	details := make([]dto.IncidentDetail, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.toDetail())
		ids = append(ids, row.ID)
	}

	notesByIncident, err := r.notes.ListForIncidents(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range details {
		if notes, ok := notesByIncident[details[i].ID]; ok {
			details[i].Notes = notes
		}
	}

	return details, nil
}

// FindByID returns the raw incident row.
func (r *IncidentRepository) FindByID(ctx context.Context, id string) (*models.Incident, error) {
	const query = `SELECT id, title, description, type, assignee_id, is_resolved, closed_by_id, closed_at, is_acknowledged, acknowledged_by_id, acknowledged_at, created_by_id, created_at, updated_by_id, updated_at FROM incidents WHERE id = $1 LIMIT 1`
	var incident models.Incident
	if err := r.db.GetContext(ctx, &incident, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find incident by id: %w", err)
	}
	return &incident, nil
}

// FindDetailByID returns a single incident with user relations and notes
// resolved.
func (r *IncidentRepository) FindDetailByID(ctx context.Context, id string) (*dto.IncidentDetail, error) {
	query := incidentDetailSelect + `
WHERE i.id = $1 LIMIT 1`

	var row incidentDetailRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find incident detail: %w", err)
	}

	detail := row.toDetail()
	notesByIncident, err := r.notes.ListForIncidents(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if notes, ok := notesByIncident[id]; ok {
		detail.Notes = notes
	}
	return &detail, nil
}

// Create inserts a new incident.
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO incidents (id, title, description, type, assignee_id, is_resolved, closed_by_id, closed_at, is_acknowledged, acknowledged_by_id, acknowledged_at, created_by_id, created_at, updated_by_id, updated_at) VALUES (:id, :title, :description, :type, :assignee_id, :is_resolved, :closed_by_id, :closed_at, :is_acknowledged, :acknowledged_by_id, :acknowledged_at, :created_by_id, :created_at, :updated_by_id, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, incident); err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// Update persists the mutable incident fields in a single statement. Callers
// compute the next state on a fetched snapshot first, so concurrent writers
// resolve to last-write-wins at the storage layer.
func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident) error {
	const query = `UPDATE incidents SET title = :title, is_resolved = :is_resolved, closed_by_id = :closed_by_id, closed_at = :closed_at, is_acknowledged = :is_acknowledged, acknowledged_by_id = :acknowledged_by_id, acknowledged_at = :acknowledged_at, updated_by_id = :updated_by_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, incident); err != nil {
		return fmt.Errorf("update incident: %w", err)
	}
	return nil
}

// Delete removes an incident. Notes are removed by the cascading foreign key.
func (r *IncidentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM incidents WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	return nil
}

func (row incidentDetailRow) toDetail() dto.IncidentDetail {
	detail := dto.IncidentDetail{
		ID:             row.ID,
		Title:          row.Title,
		Type:           string(row.Type),
		Description:    row.Description,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		IsResolved:     row.IsResolved,
		ClosedAt:       row.ClosedAt,
		IsAcknowledged: row.IsAcknowledged,
		AcknowledgedAt: row.AcknowledgedAt,
		CreatedByID:    row.CreatedByID,
		UpdatedByID:    row.UpdatedByID,
		AssigneeID:     row.AssigneeID,
		Assignee:       &dto.UserSummary{ID: row.AssigneeID, Username: row.AssigneeUsername},
		CreatedBy:      &dto.UserSummary{ID: row.CreatedByID, Username: row.CreatedByUsername},
		Notes:          []dto.NoteDetail{},
	}
	detail.UpdatedBy = optionalSummary(row.UpdatedByID, row.UpdatedByUsername)
	detail.ClosedBy = optionalSummary(row.ClosedByID, row.ClosedByUsername)
	detail.AcknowledgedBy = optionalSummary(row.AcknowledgedByID, row.AcknowledgedUsername)
	return detail
}

func optionalSummary(id *string, username sql.NullString) *dto.UserSummary {
	if id == nil || !username.Valid {
		return nil
	}
	return &dto.UserSummary{ID: *id, Username: username.String}
}
