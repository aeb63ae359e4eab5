// Package response holds the unified API response envelope and the
// helpers that produce it.
package response

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	deliverycontext "airscout/internal/delivery/context"
	domainerrors "airscout/internal/domain/errors"
)

// SuccessResponse defines the structure for successful responses
type SuccessResponse struct {
	Success bool                   `json:"success"`
	Data    any                    `json:"data"`
	Meta    *domainerrors.MetaInfo `json:"meta,omitempty"`
}

// Success returns a successful response
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    meta(c),
	})
}

// Error returns an error response
func Error(c echo.Context, statusCode int, errorCode string, message string, details string) error {
	// Details are only exposed for client errors
	if statusCode >= http.StatusInternalServerError {
		details = ""
	}

	return c.JSON(statusCode, domainerrors.ErrorResponse{
		Success: false,
		Error: domainerrors.ErrorInfo{
			Code:    errorCode,
			Message: message,
			Details: details,
		},
		Meta: *meta(c),
	})
}

// BadRequest returns a 400 error
func BadRequest(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusBadRequest, errorCode, message, "")
}

// BindingError returns a binding error response
func BindingError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusBadRequest, errorCode, message, "")
}

// NotFound returns a 404 error
func NotFound(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusNotFound, errorCode, message, "")
}

// Conflict returns a 409 error
func Conflict(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusConflict, errorCode, message, "")
}

// InternalServerError returns a 500 error
func InternalServerError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusInternalServerError, errorCode, message, "")
}

// HandleAppError converts domain errors to the matching HTTP response.
// Unknown errors propagate to the error handler middleware.
func HandleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}

func meta(c echo.Context) *domainerrors.MetaInfo {
	return &domainerrors.MetaInfo{
		RequestID: deliverycontext.GetRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
