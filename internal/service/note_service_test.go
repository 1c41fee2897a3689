package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrack/incident-api/internal/dto"
	"github.com/safetrack/incident-api/internal/models"
	appErrors "github.com/safetrack/incident-api/pkg/errors"
)

type mockNoteStore struct {
	notes   map[int64]*models.Note
	nextID  int64
	deleted []int64
}

func newMockNoteStore() *mockNoteStore {
	return &mockNoteStore{notes: make(map[int64]*models.Note)}
}

func (m *mockNoteStore) FindByID(ctx context.Context, id int64) (*models.Note, error) {
	note, ok := m.notes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *note
	return &clone, nil
}

func (m *mockNoteStore) FindDetailByID(ctx context.Context, id int64) (*dto.NoteDetail, error) {
	note, ok := m.notes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &dto.NoteDetail{
		ID:         note.ID,
		IncidentID: note.IncidentID,
		Body:       note.Body,
		Author:     &dto.UserSummary{ID: note.AuthorID},
	}, nil
}

func (m *mockNoteStore) Create(ctx context.Context, note *models.Note) error {
	m.nextID++
	note.ID = m.nextID
	note.CreatedAt = time.Now().UTC()
	note.UpdatedAt = note.CreatedAt
	m.notes[note.ID] = note
	return nil
}

func (m *mockNoteStore) Update(ctx context.Context, note *models.Note) error {
	clone := *note
	m.notes[note.ID] = &clone
	return nil
}

func (m *mockNoteStore) Delete(ctx context.Context, id int64) error {
	delete(m.notes, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockIncidentReader struct {
	incidents map[string]*models.Incident
}

func (m *mockIncidentReader) FindByID(ctx context.Context, id string) (*models.Incident, error) {
	incident, ok := m.incidents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return incident, nil
}

func newNoteFixture() (*NoteService, *mockNoteStore, *models.Incident) {
	incident := &models.Incident{
		ID:          "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
		Title:       "Forklift collision",
		AssigneeID:  assigneeID,
		CreatedByID: creatorID,
	}
	store := newMockNoteStore()
	incidents := &mockIncidentReader{incidents: map[string]*models.Incident{incident.ID: incident}}
	return NewNoteService(store, incidents, nil, nil), store, incident
}

func TestNoteCreateByCreator(t *testing.T) {
	svc, store, incident := newNoteFixture()

	detail, err := svc.Create(context.Background(), creatorID, incident.ID, dto.NoteRequest{Body: "Spoke with the operator"})
	require.NoError(t, err)
	assert.Equal(t, "Spoke with the operator", detail.Body)
	assert.Equal(t, incident.ID, detail.IncidentID)

	stored := store.notes[detail.ID]
	require.NotNil(t, stored)
	assert.Equal(t, creatorID, stored.AuthorID)
}

func TestNoteCreateByAssignee(t *testing.T) {
	svc, _, incident := newNoteFixture()

	_, err := svc.Create(context.Background(), assigneeID, incident.ID, dto.NoteRequest{Body: "Investigating"})
	require.NoError(t, err)
}

func TestNoteCreateByStranger(t *testing.T) {
	svc, _, incident := newNoteFixture()

	_, err := svc.Create(context.Background(), strangerID, incident.ID, dto.NoteRequest{Body: "Drive-by comment"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, "Access is denied. Not a assignee of the incident.", appErr.Message)
}

func TestNoteCreateEmptyBody(t *testing.T) {
	svc, _, incident := newNoteFixture()

	_, err := svc.Create(context.Background(), creatorID, incident.ID, dto.NoteRequest{Body: "   "})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Note body field must not be empty.", appErr.Message)
}

func TestNoteCreateUnknownIncident(t *testing.T) {
	svc, _, _ := newNoteFixture()

	_, err := svc.Create(context.Background(), strangerID, "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb", dto.NoteRequest{Body: "hello"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Invalid incident ID.", appErr.Message)
}

func TestNoteUpdateByAuthor(t *testing.T) {
	svc, store, incident := newNoteFixture()
	created, err := svc.Create(context.Background(), assigneeID, incident.ID, dto.NoteRequest{Body: "first draft"})
	require.NoError(t, err)

	detail, err := svc.Update(context.Background(), assigneeID, incident.ID, created.ID, dto.NoteRequest{Body: "final wording"})
	require.NoError(t, err)
	assert.Equal(t, "final wording", detail.Body)
	assert.Equal(t, "final wording", store.notes[created.ID].Body)
}

func TestNoteUpdateNotAuthor(t *testing.T) {
	svc, _, incident := newNoteFixture()
	created, err := svc.Create(context.Background(), assigneeID, incident.ID, dto.NoteRequest{Body: "mine"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), creatorID, incident.ID, created.ID, dto.NoteRequest{Body: "hijacked"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, "Access is denied.", appErr.Message)
}

func TestNoteUpdateUnknownNote(t *testing.T) {
	svc, _, incident := newNoteFixture()

	_, err := svc.Update(context.Background(), creatorID, incident.ID, 404, dto.NoteRequest{Body: "body"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Invalid note ID.", appErr.Message)
}

func TestNoteDeleteByAuthor(t *testing.T) {
	svc, store, incident := newNoteFixture()
	created, err := svc.Create(context.Background(), assigneeID, incident.ID, dto.NoteRequest{Body: "scratch"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), assigneeID, incident.ID, created.ID))
	assert.Equal(t, []int64{created.ID}, store.deleted)
}

func TestNoteDeleteByIncidentCreator(t *testing.T) {
	svc, store, incident := newNoteFixture()
	created, err := svc.Create(context.Background(), assigneeID, incident.ID, dto.NoteRequest{Body: "assignee note"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), creatorID, incident.ID, created.ID))
	assert.Equal(t, []int64{created.ID}, store.deleted)
}

func TestNoteDeleteByStranger(t *testing.T) {
	svc, store, incident := newNoteFixture()
	created, err := svc.Create(context.Background(), assigneeID, incident.ID, dto.NoteRequest{Body: "keep out"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), strangerID, incident.ID, created.ID)
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
	assert.Empty(t, store.deleted)
}
