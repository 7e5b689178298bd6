// Package httputil provides the JSON error envelope shared by handlers and
// middleware.
package httputil

import (
	"net/http"

	"github.com/GunarsK-portfolio/todo-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error      string            `json:"error"`
	StatusCode int               `json:"statusCode"`
	Details    map[string]string `json:"details,omitempty"`
}

// RespondError aborts the request with a JSON error body.
func RespondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, StatusCode: status})
}

// RespondValidationError aborts with 400 and per-field reasons.
func RespondValidationError(c *gin.Context, details map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:      "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	})
}

// LogAndRespondError logs err on the request logger and responds with
// message. err itself never reaches the client.
func LogAndRespondError(c *gin.Context, status int, err error, message string) {
	logger.FromContext(c.Request.Context()).
		WithError(err).
		WithField("status", status).
		Error(message)
	RespondError(c, status, message)
}

// Recovery turns panics into a 500 with the standard error body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.FromContext(c.Request.Context()).
			WithField("panic", recovered).
			Error("recovered from panic")
		RespondError(c, http.StatusInternalServerError, "internal server error")
	})
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	RespondError(c, http.StatusNotFound, "route not found")
}
