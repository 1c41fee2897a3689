package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/safetrack/incident-api/pkg/errors"
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// validateIncidentInput checks a create-incident payload field by field and
// returns the first failure, mirroring the precedence the clients rely on:
// title, assignee, description, type.
func validateIncidentInput(v *validator.Validate, title, assigneeID, description, incidentType string, typeChecker func(string) bool) *appErrors.Error {
	if isBlank(title) || len(title) < 3 || len(title) > 60 {
		return appErrors.Clone(appErrors.ErrValidation, "Title must be in range of 3-60 characters length.")
	}
	if assigneeID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "Assignee must required.")
	}
	// Assignee ids are opaque 36-character tokens (uuid source format).
	if err := v.Var(assigneeID, "len=36"); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "Assignee must contain valid UUIDs.")
	}
	if isBlank(description) {
		return appErrors.Clone(appErrors.ErrValidation, "Description field must not be empty.")
	}
	if incidentType == "" || !typeChecker(incidentType) {
		return appErrors.Clone(appErrors.ErrValidation, "Type can only be - employee, environmental, property, vehicle or fire.")
	}
	return nil
}

// validateIncidentTitle checks a title on its own for the edit flow.
func validateIncidentTitle(title string) *appErrors.Error {
	if isBlank(title) || len(title) < 3 || len(title) > 60 {
		return appErrors.Clone(appErrors.ErrValidation, "Title must be in range of 3-60 characters length.")
	}
	return nil
}

// validateNoteBody rejects empty or whitespace-only note bodies.
func validateNoteBody(body string) *appErrors.Error {
	if isBlank(body) {
		return appErrors.Clone(appErrors.ErrValidation, "Note body field must not be empty.")
	}
	return nil
}
