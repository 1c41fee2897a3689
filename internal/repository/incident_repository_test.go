package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrack/incident-api/internal/models"
)

var incidentDetailColumns = []string{
	"id", "title", "description", "type", "assignee_id",
	"is_resolved", "closed_by_id", "closed_at",
	"is_acknowledged", "acknowledged_by_id", "acknowledged_at",
	"created_by_id", "created_at", "updated_by_id", "updated_at",
	"assignee_username", "created_by_username", "updated_by_username",
	"closed_by_username", "acknowledged_by_username",
}

func TestListForUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(incidentDetailColumns).
		AddRow("i1", "Forklift collision", "Hit the dock", "vehicle", "u2",
			false, nil, nil,
			false, nil, nil,
			"u1", now, nil, nil,
			"bob", "alice", nil, nil, nil)
	mock.ExpectQuery("SELECT i.id, i.title(?s:.+)FROM incidents i(?s:.+)WHERE i.assignee_id = \\$1 OR i.created_by_id = \\$1").
		WithArgs("u1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT n.id, n.body(?s:.+)WHERE n.incident_id = ANY\\(\\$1\\)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "body", "author_id", "incident_id", "created_at", "updated_at", "author_username"}).
			AddRow(int64(1), "first note", "u2", "i1", now, now, "bob"))

	details, err := repo.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Forklift collision", details[0].Title)
	assert.Equal(t, "bob", details[0].Assignee.Username)
	assert.Equal(t, "alice", details[0].CreatedBy.Username)
	assert.Nil(t, details[0].ClosedBy)
	require.Len(t, details[0].Notes, 1)
	assert.Equal(t, "first note", details[0].Notes[0].Body)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForUserEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)

	mock.ExpectQuery("SELECT i.id, i.title(?s:.+)FROM incidents i").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(incidentDetailColumns))

	details, err := repo.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindIncidentByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)

	mock.ExpectQuery("SELECT id, title, description, type(?s:.+)FROM incidents WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDetailByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)

	now := time.Now()
	closedAt := now.Add(time.Hour)
	rows := sqlmock.NewRows(incidentDetailColumns).
		AddRow("i1", "Forklift collision", "Hit the dock", "vehicle", "u2",
			true, "u2", closedAt,
			true, "u2", now,
			"u1", now, nil, nil,
			"bob", "alice", nil, "bob", "bob")
	mock.ExpectQuery("SELECT i.id, i.title(?s:.+)WHERE i.id = \\$1").
		WithArgs("i1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT n.id, n.body(?s:.+)WHERE n.incident_id = ANY\\(\\$1\\)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "body", "author_id", "incident_id", "created_at", "updated_at", "author_username"}))

	detail, err := repo.FindDetailByID(context.Background(), "i1")
	require.NoError(t, err)
	assert.True(t, detail.IsResolved)
	require.NotNil(t, detail.ClosedBy)
	assert.Equal(t, "bob", detail.ClosedBy.Username)
	require.NotNil(t, detail.AcknowledgedBy)
	assert.NotNil(t, detail.Notes)
	assert.Empty(t, detail.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIncident(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)

	mock.ExpectExec("INSERT INTO incidents").WillReturnResult(sqlmock.NewResult(1, 1))

	incident := &models.Incident{
		Title:       "Chemical spill",
		Description: "Solvent drum leaked",
		Type:        models.TypeEnvironmental,
		AssigneeID:  "u2",
		CreatedByID: "u1",
	}
	err := repo.Create(context.Background(), incident)
	require.NoError(t, err)
	assert.NotEmpty(t, incident.ID)
	assert.False(t, incident.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateIncident(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)

	mock.ExpectExec("UPDATE incidents SET").WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	callerID := "u2"
	incident := &models.Incident{
		ID:             "i1",
		Title:          "Forklift collision",
		IsResolved:     true,
		ClosedByID:     &callerID,
		ClosedAt:       &now,
		IsAcknowledged: true,
	}
	err := repo.Update(context.Background(), incident)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteIncident(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewIncidentRepository(db)

	mock.ExpectExec("DELETE FROM incidents WHERE id = \\$1").
		WithArgs("i1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "i1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
