package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safetrack/incident-api/internal/dto"
	appErrors "github.com/safetrack/incident-api/pkg/errors"
	"github.com/safetrack/incident-api/pkg/response"
)

type incidentService interface {
	List(ctx context.Context, callerID string) ([]dto.IncidentDetail, error)
	Create(ctx context.Context, callerID string, req dto.CreateIncidentRequest) (*dto.IncidentDetail, error)
	UpdateTitle(ctx context.Context, callerID, incidentID string, req dto.UpdateIncidentRequest) (*dto.IncidentDetail, error)
	Delete(ctx context.Context, callerID, incidentID string) error
	Close(ctx context.Context, callerID, incidentID string) (*dto.IncidentDetail, error)
	Acknowledge(ctx context.Context, callerID, incidentID string) (*dto.IncidentDetail, error)
	Export(ctx context.Context, callerID, format string) ([]byte, string, error)
}

// IncidentHandler exposes the incident CRUD and lifecycle endpoints.
type IncidentHandler struct {
	service incidentService
}

// NewIncidentHandler builds a new handler.
func NewIncidentHandler(service incidentService) *IncidentHandler {
	return &IncidentHandler{service: service}
}

// List godoc
// @Summary List incidents visible to the caller
// @Tags Incidents
// @Produce json
// @Success 200 {array} dto.IncidentDetail
// @Router /incidents [get]
func (h *IncidentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	incidents, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, incidents)
}

// Create godoc
// @Summary File a new incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param payload body dto.CreateIncidentRequest true "Incident payload"
// @Success 201 {object} dto.IncidentDetail
// @Failure 400 {object} response.ErrorBody
// @Router /incidents [post]
func (h *IncidentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid incident payload"))
		return
	}
	incident, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, incident)
}

// UpdateTitle godoc
// @Summary Rename an incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Param payload body dto.UpdateIncidentRequest true "Title payload"
// @Success 201 {object} dto.IncidentDetail
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /incidents/{incidentId} [put]
func (h *IncidentHandler) UpdateTitle(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid incident payload"))
		return
	}
	incident, err := h.service.UpdateTitle(c.Request.Context(), claims.UserID, c.Param("incidentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, incident)
}

// Delete godoc
// @Summary Delete an incident and its notes
// @Tags Incidents
// @Param incidentId path string true "Incident ID"
// @Success 204
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /incidents/{incidentId} [delete]
func (h *IncidentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("incidentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Close godoc
// @Summary Close an incident
// @Tags Incidents
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Success 201 {object} dto.IncidentDetail
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /incidents/{incidentId}/close [post]
func (h *IncidentHandler) Close(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	incident, err := h.service.Close(c.Request.Context(), claims.UserID, c.Param("incidentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, incident)
}

// Acknowledge godoc
// @Summary Acknowledge or reopen an incident
// @Tags Incidents
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Success 201 {object} dto.IncidentDetail
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /incidents/{incidentId}/acknowledge [post]
func (h *IncidentHandler) Acknowledge(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	incident, err := h.service.Acknowledge(c.Request.Context(), claims.UserID, c.Param("incidentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, incident)
}

// Export godoc
// @Summary Export the caller's incidents
// @Tags Incidents
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200
// @Failure 400 {object} response.ErrorBody
// @Router /incidents/export [get]
func (h *IncidentHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.service.Export(c.Request.Context(), claims.UserID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=incidents.%s", format))
	c.Data(http.StatusOK, contentType, payload)
}
