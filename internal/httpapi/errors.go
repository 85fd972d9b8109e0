package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/NikhilSingh0745/mr-interview/internal/apierr"
)

// errorHandler translates every error into the response envelope.
// Operational errors (4xx) carry their message to the client; anything
// else is logged with full context and answered generically.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status  int
			message string
			details any
		)

		switch e := err.(type) {
		case *echo.HTTPError:
			status = e.Code
			if msg, ok := e.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(status)
			}
		default:
			apiErr := apierr.From(err)
			status = apiErr.Status()
			message = apiErr.Message
			if len(apiErr.Details) > 0 {
				details = apiErr.Details
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Error(err),
			)
			message = "Internal Server Error"
			details = nil
		}

		if c.Request().Method == http.MethodHead {
			if err := c.NoContent(status); err != nil {
				logger.Warn("failed to write error response", zap.Error(err))
			}
			return
		}

		if err := c.JSON(status, Envelope{
			Success: false,
			Message: message,
			Details: details,
		}); err != nil {
			logger.Warn("failed to write error response", zap.Error(err))
		}
	}
}
