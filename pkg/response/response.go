package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/safetrack/incident-api/pkg/errors"
)

// ErrorBody is the error payload shape the legacy clients expect.
type ErrorBody struct {
	Message string `json:"message"`
}

// JSON sends a success response with the payload as the body. The legacy API
// returns resources directly, without an envelope.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, ErrorBody{Message: appErr.Message})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
