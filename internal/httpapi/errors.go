package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/remote"
)

// StatusFor maps an error from the use case layer to an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, errors.NotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.AlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errors.NotValid), errors.Is(err, errors.BadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errors.Unauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// WriteError responds with {"error": message} and the mapped status. Server
// side failures are logged. Unexpected ones are not echoed to the client and
// partner failures are reduced to their summary.
func WriteError(c *gin.Context, logger *zap.Logger, err error) {
	status := StatusFor(err)
	message := err.Error()

	if status >= http.StatusInternalServerError {
		logger.Error("request error",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		var depErr *remote.DependencyError
		if errors.As(err, &depErr) {
			message = strings.Replace(message, depErr.Error(), depErr.Summary(), 1)
		} else {
			message = "internal server error"
		}
	}

	c.JSON(status, gin.H{"error": message})
}
