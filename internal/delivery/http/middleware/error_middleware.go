package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	deliverycontext "airscout/internal/delivery/context"
	domainerrors "airscout/internal/domain/errors"
)

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		m.respond(c, appErr.HTTPCode(), domainerrors.ErrorInfo{
			Code:    appErr.ErrorCode(),
			Message: appErr.Message(),
			Details: appErr.Details(),
		})

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		m.respond(c, httpErr.Code, domainerrors.ErrorInfo{
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		})

		return
	}

	m.logger.Error("Unhandled error",
		slog.String("error", err.Error()),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	m.respond(c, http.StatusInternalServerError, domainerrors.ErrorInfo{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
	})
}

func (m *ErrorMiddleware) respond(c echo.Context, statusCode int, info domainerrors.ErrorInfo) {
	if info.Details != "" && statusCode >= http.StatusInternalServerError {
		info.Details = ""
	}

	writeErr := c.JSON(statusCode, domainerrors.ErrorResponse{
		Success: false,
		Error:   info,
		Meta: domainerrors.MetaInfo{
			RequestID: deliverycontext.GetRequestID(c),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
	if writeErr != nil {
		m.logger.Error("Failed to write error response", slog.Any("error", writeErr))
	}
}
