package service

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrack/incident-api/internal/dto"
	"github.com/safetrack/incident-api/internal/models"
	appErrors "github.com/safetrack/incident-api/pkg/errors"
)

var (
	creatorID  = "11111111-1111-1111-1111-111111111111"
	assigneeID = "22222222-2222-2222-2222-222222222222"
	strangerID = "33333333-3333-3333-3333-333333333333"
)

type mockIncidentStore struct {
	incidents map[string]*models.Incident
	listed    []dto.IncidentDetail
	listErr   error
	updateErr error
	deleted   []string
	nextID    int
}

func newMockIncidentStore() *mockIncidentStore {
	return &mockIncidentStore{incidents: make(map[string]*models.Incident)}
}

func (m *mockIncidentStore) ListForUser(ctx context.Context, userID string) ([]dto.IncidentDetail, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listed, nil
}

func (m *mockIncidentStore) FindByID(ctx context.Context, id string) (*models.Incident, error) {
	incident, ok := m.incidents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *incident
	return &clone, nil
}

func (m *mockIncidentStore) FindDetailByID(ctx context.Context, id string) (*dto.IncidentDetail, error) {
	incident, ok := m.incidents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &dto.IncidentDetail{
		ID:             incident.ID,
		Title:          incident.Title,
		Type:           string(incident.Type),
		IsResolved:     incident.IsResolved,
		IsAcknowledged: incident.IsAcknowledged,
	}, nil
}

func (m *mockIncidentStore) Create(ctx context.Context, incident *models.Incident) error {
	m.nextID++
	incident.ID = strings.Repeat("0", 35) + string(rune('0'+m.nextID))
	incident.CreatedAt = time.Now().UTC()
	m.incidents[incident.ID] = incident
	return nil
}

func (m *mockIncidentStore) Update(ctx context.Context, incident *models.Incident) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	clone := *incident
	m.incidents[incident.ID] = &clone
	return nil
}

func (m *mockIncidentStore) Delete(ctx context.Context, id string) error {
	delete(m.incidents, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockAudit struct {
	logs []*models.AuditLog
}

func (m *mockAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func newTestIncidentService(store *mockIncidentStore) (*IncidentService, *mockAudit) {
	audit := &mockAudit{}
	return NewIncidentService(store, audit, nil, nil, nil, nil, nil), audit
}

func seedIncident(store *mockIncidentStore, mutate func(*models.Incident)) *models.Incident {
	incident := &models.Incident{
		ID:          "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
		Title:       "Forklift collision",
		Description: "Forklift hit the loading dock",
		Type:        models.TypeVehicle,
		AssigneeID:  assigneeID,
		CreatedByID: creatorID,
		CreatedAt:   time.Now().UTC(),
	}
	if mutate != nil {
		mutate(incident)
	}
	store.incidents[incident.ID] = incident
	return incident
}

func TestIncidentCreateSuccess(t *testing.T) {
	store := newMockIncidentStore()
	svc, audit := newTestIncidentService(store)

	detail, err := svc.Create(context.Background(), creatorID, dto.CreateIncidentRequest{
		Title:       "Chemical spill",
		AssigneeID:  assigneeID,
		Description: "Solvent drum leaked in bay 4",
		Type:        "environmental",
	})
	require.NoError(t, err)
	assert.Equal(t, "Chemical spill", detail.Title)
	assert.False(t, detail.IsResolved)
	assert.False(t, detail.IsAcknowledged)

	require.Len(t, store.incidents, 1)
	for _, stored := range store.incidents {
		assert.Equal(t, creatorID, stored.CreatedByID)
		assert.Equal(t, assigneeID, stored.AssigneeID)
		assert.Equal(t, models.TypeEnvironmental, stored.Type)
	}
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionIncidentCreate, audit.logs[0].Action)
}

func TestIncidentCreateValidation(t *testing.T) {
	svc, _ := newTestIncidentService(newMockIncidentStore())

	valid := dto.CreateIncidentRequest{
		Title:       "Broken ladder",
		AssigneeID:  assigneeID,
		Description: "Rung snapped on warehouse ladder",
		Type:        "property",
	}

	cases := []struct {
		name    string
		mutate  func(*dto.CreateIncidentRequest)
		message string
	}{
		{"title too short", func(r *dto.CreateIncidentRequest) { r.Title = "ab" }, "Title must be in range of 3-60 characters length."},
		{"title too long", func(r *dto.CreateIncidentRequest) { r.Title = strings.Repeat("x", 61) }, "Title must be in range of 3-60 characters length."},
		{"title blank", func(r *dto.CreateIncidentRequest) { r.Title = "   " }, "Title must be in range of 3-60 characters length."},
		{"assignee missing", func(r *dto.CreateIncidentRequest) { r.AssigneeID = "" }, "Assignee must required."},
		{"assignee malformed", func(r *dto.CreateIncidentRequest) { r.AssigneeID = "not-a-uuid" }, "Assignee must contain valid UUIDs."},
		{"description empty", func(r *dto.CreateIncidentRequest) { r.Description = " " }, "Description field must not be empty."},
		{"type unknown", func(r *dto.CreateIncidentRequest) { r.Type = "cyber" }, "Type can only be - employee, environmental, property, vehicle or fire."},
		{"type missing", func(r *dto.CreateIncidentRequest) { r.Type = "" }, "Type can only be - employee, environmental, property, vehicle or fire."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), creatorID, req)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, 400, appErr.Status)
			assert.Equal(t, tc.message, appErr.Message)
		})
	}
}

func TestIncidentCreateBoundaryTitles(t *testing.T) {
	svc, _ := newTestIncidentService(newMockIncidentStore())

	for _, title := range []string{"abc", strings.Repeat("x", 60)} {
		_, err := svc.Create(context.Background(), creatorID, dto.CreateIncidentRequest{
			Title:       title,
			AssigneeID:  assigneeID,
			Description: "boundary case",
			Type:        "employee",
		})
		assert.NoError(t, err, len(title))
	}
}

func TestIncidentUpdateTitle(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, nil)
	svc, _ := newTestIncidentService(store)

	detail, err := svc.UpdateTitle(context.Background(), creatorID, incident.ID, dto.UpdateIncidentRequest{Title: "Forklift collision, dock 2"})
	require.NoError(t, err)
	assert.Equal(t, "Forklift collision, dock 2", detail.Title)

	stored := store.incidents[incident.ID]
	require.NotNil(t, stored.UpdatedByID)
	assert.Equal(t, creatorID, *stored.UpdatedByID)
	assert.NotNil(t, stored.UpdatedAt)
}

func TestIncidentUpdateTitleNotCreator(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, nil)
	svc, _ := newTestIncidentService(store)

	_, err := svc.UpdateTitle(context.Background(), assigneeID, incident.ID, dto.UpdateIncidentRequest{Title: "Renamed"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, "Access is denied.", appErr.Message)
}

func TestIncidentUpdateTitleWhileClosed(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, func(i *models.Incident) {
		i.IsResolved = true
	})
	svc, _ := newTestIncidentService(store)

	_, err := svc.UpdateTitle(context.Background(), creatorID, incident.ID, dto.UpdateIncidentRequest{Title: "Renamed"})
	require.Error(t, err)
	assert.Equal(t, "Incident is already marked as closed.", appErrors.FromError(err).Message)
}

func TestIncidentDelete(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, nil)
	svc, audit := newTestIncidentService(store)

	require.NoError(t, svc.Delete(context.Background(), creatorID, incident.ID))
	assert.Equal(t, []string{incident.ID}, store.deleted)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionIncidentDelete, audit.logs[0].Action)
}

func TestIncidentDeleteNotCreator(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, nil)
	svc, _ := newTestIncidentService(store)

	err := svc.Delete(context.Background(), assigneeID, incident.ID)
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
	assert.Empty(t, store.deleted)
}

func TestIncidentDeleteUnknownID(t *testing.T) {
	svc, _ := newTestIncidentService(newMockIncidentStore())

	err := svc.Delete(context.Background(), creatorID, "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Invalid incident ID.", appErr.Message)
}

func TestIncidentClose(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, func(i *models.Incident) {
		now := time.Now().UTC()
		i.IsAcknowledged = true
		i.AcknowledgedByID = &assigneeID
		i.AcknowledgedAt = &now
	})
	svc, _ := newTestIncidentService(store)

	_, err := svc.Close(context.Background(), assigneeID, incident.ID)
	require.NoError(t, err)

	stored := store.incidents[incident.ID]
	assert.True(t, stored.IsResolved)
	require.NotNil(t, stored.ClosedByID)
	assert.Equal(t, assigneeID, *stored.ClosedByID)
	assert.NotNil(t, stored.ClosedAt)
	assert.True(t, stored.IsAcknowledged)
}

func TestIncidentCloseNotAssignee(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, nil)
	svc, _ := newTestIncidentService(store)

	for _, caller := range []string{creatorID, strangerID} {
		_, err := svc.Close(context.Background(), caller, incident.ID)
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, 401, appErr.Status)
		assert.Equal(t, "Access is denied.", appErr.Message)
	}
}

func TestIncidentCloseAlreadyClosed(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, func(i *models.Incident) {
		i.IsResolved = true
	})
	svc, _ := newTestIncidentService(store)

	_, err := svc.Close(context.Background(), assigneeID, incident.ID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Incident is already marked as closed.", appErr.Message)
}

func TestIncidentAcknowledge(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, nil)
	svc, _ := newTestIncidentService(store)

	_, err := svc.Acknowledge(context.Background(), assigneeID, incident.ID)
	require.NoError(t, err)

	stored := store.incidents[incident.ID]
	assert.True(t, stored.IsAcknowledged)
	require.NotNil(t, stored.AcknowledgedByID)
	assert.Equal(t, assigneeID, *stored.AcknowledgedByID)
	assert.NotNil(t, stored.AcknowledgedAt)
}

func TestIncidentAcknowledgeTwice(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, func(i *models.Incident) {
		now := time.Now().UTC()
		i.IsAcknowledged = true
		i.AcknowledgedByID = &assigneeID
		i.AcknowledgedAt = &now
	})
	svc, _ := newTestIncidentService(store)

	_, err := svc.Acknowledge(context.Background(), assigneeID, incident.ID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Incident is already marked as acknowledged.", appErr.Message)
}

func TestIncidentAcknowledgeReopensClosed(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, func(i *models.Incident) {
		now := time.Now().UTC()
		i.IsAcknowledged = true
		i.AcknowledgedByID = &assigneeID
		i.AcknowledgedAt = &now
		i.IsResolved = true
		i.ClosedByID = &assigneeID
		i.ClosedAt = &now
	})
	svc, _ := newTestIncidentService(store)

	_, err := svc.Acknowledge(context.Background(), assigneeID, incident.ID)
	require.NoError(t, err)

	stored := store.incidents[incident.ID]
	assert.False(t, stored.IsResolved)
	assert.Nil(t, stored.ClosedByID)
	assert.Nil(t, stored.ClosedAt)
	assert.True(t, stored.IsAcknowledged)
	require.NotNil(t, stored.AcknowledgedByID)
	assert.Equal(t, assigneeID, *stored.AcknowledgedByID)
}

func TestIncidentAcknowledgeNotAssignee(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, nil)
	svc, _ := newTestIncidentService(store)

	_, err := svc.Acknowledge(context.Background(), creatorID, incident.ID)
	require.Error(t, err)
	assert.Equal(t, "Access is denied.", appErrors.FromError(err).Message)
}

func TestIncidentExportCSV(t *testing.T) {
	store := newMockIncidentStore()
	store.listed = []dto.IncidentDetail{
		{
			ID:        "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
			Title:     "Forklift collision",
			Type:      "vehicle",
			Assignee:  &dto.UserSummary{ID: assigneeID, Username: "bob"},
			CreatedBy: &dto.UserSummary{ID: creatorID, Username: "alice"},
			CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	svc, _ := newTestIncidentService(store)

	payload, contentType, err := svc.Export(context.Background(), creatorID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(payload), "Forklift collision")
	assert.Contains(t, string(payload), "alice")
	assert.Contains(t, string(payload), "open")
}

func TestIncidentExportPDF(t *testing.T) {
	store := newMockIncidentStore()
	svc, _ := newTestIncidentService(store)

	payload, contentType, err := svc.Export(context.Background(), creatorID, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestIncidentExportUnknownFormat(t *testing.T) {
	svc, _ := newTestIncidentService(newMockIncidentStore())

	_, _, err := svc.Export(context.Background(), creatorID, "xlsx")
	require.Error(t, err)
	assert.Equal(t, "Export format can only be - csv or pdf.", appErrors.FromError(err).Message)
}

func TestIncidentServiceRecordsQueryMetrics(t *testing.T) {
	store := newMockIncidentStore()
	incident := seedIncident(store, nil)
	metrics := NewMetricsService()
	svc := NewIncidentService(store, &mockAudit{}, nil, metrics, nil, nil, nil)

	_, err := svc.List(context.Background(), creatorID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), metrics.Snapshot().DBQueryCount)

	_, err = svc.Close(context.Background(), assigneeID, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), metrics.Snapshot().DBQueryCount)
}
