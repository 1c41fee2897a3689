package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/safetrack/incident-api/internal/dto"
	"github.com/safetrack/incident-api/internal/models"
	appErrors "github.com/safetrack/incident-api/pkg/errors"
)

type noteStore interface {
	FindByID(ctx context.Context, id int64) (*models.Note, error)
	FindDetailByID(ctx context.Context, id int64) (*dto.NoteDetail, error)
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id int64) error
}

type noteIncidentReader interface {
	FindByID(ctx context.Context, id string) (*models.Incident, error)
}

// NoteService implements note authoring scoped to a parent incident. Notes
// may be created by the incident's creator or assignee, edited only by their
// author, and deleted by their author or the incident's creator.
type NoteService struct {
	repo      noteStore
	incidents noteIncidentReader
	cache     *CacheService
	logger    *zap.Logger
}

// NewNoteService constructs a NoteService.
func NewNoteService(repo noteStore, incidents noteIncidentReader, cache *CacheService, logger *zap.Logger) *NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{repo: repo, incidents: incidents, cache: cache, logger: logger}
}

// Create attaches a new note to an incident with the caller as author.
func (s *NoteService) Create(ctx context.Context, callerID, incidentID string, req dto.NoteRequest) (*dto.NoteDetail, error) {
	if err := validateNoteBody(req.Body); err != nil {
		return nil, err
	}

	incident, err := s.findIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if incident.CreatedByID != callerID && incident.AssigneeID != callerID {
		return nil, appErrors.Clone(appErrors.ErrAccessDenied, "Access is denied. Not a assignee of the incident.")
	}

	note := &models.Note{Body: req.Body, AuthorID: callerID, IncidentID: incidentID}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create note")
	}

	s.invalidateLists(ctx)

	return s.detail(ctx, note.ID)
}

// Update replaces a note body. Only the author may edit.
func (s *NoteService) Update(ctx context.Context, callerID, incidentID string, noteID int64, req dto.NoteRequest) (*dto.NoteDetail, error) {
	if err := validateNoteBody(req.Body); err != nil {
		return nil, err
	}

	if _, err := s.findIncident(ctx, incidentID); err != nil {
		return nil, err
	}

	note, err := s.findNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.AuthorID != callerID {
		return nil, appErrors.ErrAccessDenied
	}

	note.Body = req.Body
	if err := s.repo.Update(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update note")
	}

	s.invalidateLists(ctx)

	return s.detail(ctx, note.ID)
}

// Delete removes a note. The author may always delete their own note; the
// parent incident's creator may also remove notes from their incident.
func (s *NoteService) Delete(ctx context.Context, callerID, incidentID string, noteID int64) error {
	incident, err := s.findIncident(ctx, incidentID)
	if err != nil {
		return err
	}

	note, err := s.findNote(ctx, noteID)
	if err != nil {
		return err
	}
	if note.AuthorID != callerID && incident.CreatedByID != callerID {
		return appErrors.ErrAccessDenied
	}

	if err := s.repo.Delete(ctx, noteID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete note")
	}

	s.invalidateLists(ctx)

	return nil
}

func (s *NoteService) findIncident(ctx context.Context, incidentID string) (*models.Incident, error) {
	incident, err := s.incidents.FindByID(ctx, incidentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Invalid incident ID.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch incident")
	}
	return incident, nil
}

func (s *NoteService) findNote(ctx context.Context, noteID int64) (*models.Note, error) {
	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Invalid note ID.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch note")
	}
	return note, nil
}

func (s *NoteService) detail(ctx context.Context, noteID int64) (*dto.NoteDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, noteID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load note")
	}
	return detail, nil
}

func (s *NoteService) invalidateLists(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "incidents:user:*"); err != nil {
		s.logger.Warn("failed to invalidate incident list cache", zap.Error(err))
	}
}
