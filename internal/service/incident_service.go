package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/safetrack/incident-api/internal/dto"
	"github.com/safetrack/incident-api/internal/models"
	appErrors "github.com/safetrack/incident-api/pkg/errors"
	"github.com/safetrack/incident-api/pkg/export"
	"github.com/safetrack/incident-api/pkg/storage"
)

const incidentListCacheKey = "incidents:user:%s"

type incidentStore interface {
	ListForUser(ctx context.Context, userID string) ([]dto.IncidentDetail, error)
	FindByID(ctx context.Context, id string) (*models.Incident, error)
	FindDetailByID(ctx context.Context, id string) (*dto.IncidentDetail, error)
	Create(ctx context.Context, incident *models.Incident) error
	Update(ctx context.Context, incident *models.Incident) error
	Delete(ctx context.Context, id string) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// IncidentService implements the incident lifecycle and its ownership rules.
// Every method takes the caller's user id explicitly; there is no ambient
// request identity below the handler layer.
type IncidentService struct {
	repo      incidentStore
	audit     auditLogger
	cache     *CacheService
	metrics   *MetricsService
	archive   *storage.LocalStorage
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIncidentService constructs an IncidentService with sane defaults. The
// metrics service and archive are optional; when set, query timings are
// recorded and every rendered export is also kept on disk.
func NewIncidentService(repo incidentStore, audit auditLogger, cache *CacheService, metrics *MetricsService, archive *storage.LocalStorage, validate *validator.Validate, logger *zap.Logger) *IncidentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncidentService{
		repo:      repo,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		archive:   archive,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// List returns the incidents visible to the caller: assigned to them or
// created by them. Results are cached per caller when caching is enabled.
func (s *IncidentService) List(ctx context.Context, callerID string) ([]dto.IncidentDetail, error) {
	key := fmt.Sprintf(incidentListCacheKey, callerID)

	var cached []dto.IncidentDetail
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	start := time.Now()
	incidents, err := s.repo.ListForUser(ctx, callerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incidents")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("incident_list", time.Since(start))
	}

	if err := s.cache.Set(ctx, key, incidents, 0); err != nil {
		s.logger.Warn("failed to cache incident list", zap.String("user", callerID), zap.Error(err))
	}

	return incidents, nil
}

// Create validates and files a new incident with the caller as creator.
func (s *IncidentService) Create(ctx context.Context, callerID string, req dto.CreateIncidentRequest) (*dto.IncidentDetail, error) {
	if err := validateIncidentInput(s.validator, req.Title, req.AssigneeID, req.Description, req.Type, models.ValidIncidentType); err != nil {
		return nil, err
	}

	incident := &models.Incident{
		Title:       req.Title,
		Description: req.Description,
		Type:        models.IncidentType(req.Type),
		AssigneeID:  req.AssigneeID,
		CreatedByID: callerID,
	}
	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create incident")
	}

	s.invalidateLists(ctx)
	s.recordAudit(ctx, callerID, models.AuditActionIncidentCreate, incident.ID)

	return s.detail(ctx, incident.ID)
}

// UpdateTitle renames an incident. Only the creator may edit, and only while
// the incident is unresolved.
func (s *IncidentService) UpdateTitle(ctx context.Context, callerID, incidentID string, req dto.UpdateIncidentRequest) (*dto.IncidentDetail, error) {
	if err := validateIncidentTitle(req.Title); err != nil {
		return nil, err
	}

	incident, err := s.find(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if incident.CreatedByID != callerID {
		return nil, appErrors.ErrAccessDenied
	}
	if incident.IsResolved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Incident is already marked as closed.")
	}

	now := time.Now().UTC()
	incident.Title = req.Title
	incident.UpdatedByID = &callerID
	incident.UpdatedAt = &now

	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update incident")
	}

	s.invalidateLists(ctx)
	s.recordAudit(ctx, callerID, models.AuditActionIncidentUpdate, incident.ID)

	return s.detail(ctx, incident.ID)
}

// Delete removes an incident and, through the cascading foreign key, all of
// its notes. Only the creator may delete.
func (s *IncidentService) Delete(ctx context.Context, callerID, incidentID string) error {
	incident, err := s.find(ctx, incidentID)
	if err != nil {
		return err
	}
	if incident.CreatedByID != callerID {
		return appErrors.ErrAccessDenied
	}

	if err := s.repo.Delete(ctx, incidentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete incident")
	}

	s.invalidateLists(ctx)
	s.recordAudit(ctx, callerID, models.AuditActionIncidentDelete, incidentID)

	return nil
}

// Close marks an incident resolved. Only the assignee may close, and closing
// twice is rejected.
func (s *IncidentService) Close(ctx context.Context, callerID, incidentID string) (*dto.IncidentDetail, error) {
	incident, err := s.find(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if incident.AssigneeID != callerID {
		return nil, appErrors.ErrAccessDenied
	}
	if incident.IsResolved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Incident is already marked as closed.")
	}

	incident.Close(callerID, time.Now().UTC())
	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close incident")
	}

	s.invalidateLists(ctx)
	s.recordAudit(ctx, callerID, models.AuditActionIncidentClose, incident.ID)

	return s.detail(ctx, incident.ID)
}

// Acknowledge marks an incident as being worked on, or reopens it when it is
// closed. The already-acknowledged guard only blocks the open→acknowledged
// edge: a resolved incident may always be re-acknowledged, which clears the
// closed fields and un-resolves it.
func (s *IncidentService) Acknowledge(ctx context.Context, callerID, incidentID string) (*dto.IncidentDetail, error) {
	incident, err := s.find(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if incident.AssigneeID != callerID {
		return nil, appErrors.ErrAccessDenied
	}
	if incident.IsAcknowledged && !incident.IsResolved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Incident is already marked as acknowledged.")
	}

	incident.Acknowledge(callerID, time.Now().UTC())
	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acknowledge incident")
	}

	s.invalidateLists(ctx)
	s.recordAudit(ctx, callerID, models.AuditActionIncidentAcknowledge, incident.ID)

	return s.detail(ctx, incident.ID)
}

// Export renders the caller's visible incidents as CSV or PDF.
func (s *IncidentService) Export(ctx context.Context, callerID, format string) ([]byte, string, error) {
	start := time.Now()
	incidents, err := s.repo.ListForUser(ctx, callerID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incidents")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("incident_export", time.Since(start))
	}

	dataset := incidentDataset(incidents)
	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		s.archiveExport(callerID, "csv", payload)
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Incident Report")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		s.archiveExport(callerID, "pdf", payload)
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "Export format can only be - csv or pdf.")
	}
}

func (s *IncidentService) archiveExport(callerID, ext string, payload []byte) {
	if s.archive == nil {
		return
	}
	name := fmt.Sprintf("%s/incidents-%s.%s", callerID, time.Now().UTC().Format("20060102T150405"), ext)
	if _, err := s.archive.Save(name, payload); err != nil {
		s.logger.Warn("failed to archive export", zap.String("file", name), zap.Error(err))
	}
}

func (s *IncidentService) find(ctx context.Context, incidentID string) (*models.Incident, error) {
	start := time.Now()
	incident, err := s.repo.FindByID(ctx, incidentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Invalid incident ID.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch incident")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("incident_find", time.Since(start))
	}
	return incident, nil
}

func (s *IncidentService) detail(ctx context.Context, incidentID string) (*dto.IncidentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, incidentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident")
	}
	return detail, nil
}

func (s *IncidentService) invalidateLists(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "incidents:user:*"); err != nil {
		s.logger.Warn("failed to invalidate incident list cache", zap.Error(err))
	}
}

func (s *IncidentService) recordAudit(ctx context.Context, callerID, action, incidentID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &callerID,
		Action:     action,
		Resource:   "incident",
		ResourceID: &incidentID,
	}); err != nil {
		s.logger.Warn("failed to record incident audit log", zap.String("action", action), zap.Error(err))
	}
}

func incidentDataset(incidents []dto.IncidentDetail) export.Dataset {
	dataset := export.Dataset{
		Columns: []string{"ID", "Title", "Type", "Status", "Assignee", "Created By", "Created At", "Notes"},
	}
	for _, incident := range incidents {
		status := "open"
		if incident.IsResolved {
			status = "closed"
		} else if incident.IsAcknowledged {
			status = "acknowledged"
		}
		assignee := ""
		if incident.Assignee != nil {
			assignee = incident.Assignee.Username
		}
		creator := ""
		if incident.CreatedBy != nil {
			creator = incident.CreatedBy.Username
		}
		dataset.Rows = append(dataset.Rows, []string{
			incident.ID,
			incident.Title,
			incident.Type,
			status,
			assignee,
			creator,
			incident.CreatedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(len(incident.Notes)),
		})
	}
	return dataset
}
