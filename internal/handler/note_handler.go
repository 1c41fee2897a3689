package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/safetrack/incident-api/internal/dto"
	appErrors "github.com/safetrack/incident-api/pkg/errors"
	"github.com/safetrack/incident-api/pkg/response"
)

type noteService interface {
	Create(ctx context.Context, callerID, incidentID string, req dto.NoteRequest) (*dto.NoteDetail, error)
	Update(ctx context.Context, callerID, incidentID string, noteID int64, req dto.NoteRequest) (*dto.NoteDetail, error)
	Delete(ctx context.Context, callerID, incidentID string, noteID int64) error
}

// NoteHandler exposes note endpoints nested under incidents.
type NoteHandler struct {
	service noteService
}

// NewNoteHandler builds a new handler.
func NewNoteHandler(service noteService) *NoteHandler {
	return &NoteHandler{service: service}
}

// Create godoc
// @Summary Attach a note to an incident
// @Tags Notes
// @Accept json
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Param payload body dto.NoteRequest true "Note payload"
// @Success 201 {object} dto.NoteDetail
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /incidents/{incidentId}/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid note payload"))
		return
	}
	note, err := h.service.Create(c.Request.Context(), claims.UserID, c.Param("incidentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// Update godoc
// @Summary Edit a note body
// @Tags Notes
// @Accept json
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Param noteId path integer true "Note ID"
// @Param payload body dto.NoteRequest true "Note payload"
// @Success 201 {object} dto.NoteDetail
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /incidents/{incidentId}/notes/{noteId} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid note payload"))
		return
	}
	noteID, err := noteIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	note, updateErr := h.service.Update(c.Request.Context(), claims.UserID, c.Param("incidentId"), noteID, req)
	if updateErr != nil {
		response.Error(c, updateErr)
		return
	}
	response.Created(c, note)
}

// Delete godoc
// @Summary Delete a note
// @Tags Notes
// @Param incidentId path string true "Incident ID"
// @Param noteId path integer true "Note ID"
// @Success 204
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /incidents/{incidentId}/notes/{noteId} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	noteID, err := noteIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("incidentId"), noteID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func noteIDParam(c *gin.Context) (int64, *appErrors.Error) {
	noteID, err := strconv.ParseInt(c.Param("noteId"), 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "Invalid note ID.")
	}
	return noteID, nil
}
