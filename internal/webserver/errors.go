package webserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/saajjewels/storefront/internal/apperr"
)

// handleError is the single translator from handler errors to JSON bodies.
// Typed application errors keep their status and message; everything else
// becomes {"error": message} with the error's status, default 500.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	var body map[string]interface{}

	var ae *apperr.Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ae):
		status = ae.Status
		body = map[string]interface{}{"message": ae.Message}
		if status >= http.StatusInternalServerError && ae.Err != nil {
			body["error"] = ae.Cause()
		}
	case errors.As(err, &he):
		status = he.Code
		msg := fmt.Sprint(he.Message)
		if he.Internal != nil && status >= http.StatusInternalServerError {
			msg = he.Internal.Error()
		}
		body = map[string]interface{}{"error": msg}
	default:
		msg := err.Error()
		if msg == "" {
			msg = apperr.InternalMessage
		}
		body = map[string]interface{}{"error": msg}
	}

	if status >= http.StatusInternalServerError {
		zap.L().Error("unhandled error",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		zap.L().Error("failed to write error response", zap.Error(err))
	}
}
