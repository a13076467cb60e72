package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Expected failures. Anything else reaching the error handler is a storage
// or programming failure and is reported as a generic 500.
var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("insufficient permissions")
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// FieldError is a validation failure on one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

// Validation builds a FieldError.
func Validation(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// NotFound wraps ErrNotFound with the resource name.
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// Conflict wraps ErrConflict with a client-facing message.
func Conflict(message string) error {
	return fmt.Errorf("%s: %w", message, ErrConflict)
}

// Forbidden wraps ErrForbidden with a client-facing message.
func Forbidden(message string) error {
	return fmt.Errorf("%s: %w", message, ErrForbidden)
}

// InvalidTransition wraps ErrInvalidTransition with a client-facing message.
func InvalidTransition(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidTransition)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// TranslateStorageError maps driver errors with a client meaning onto the
// sentinels above and leaves the rest untouched.
func TranslateStorageError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound(resource)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return Conflict(resource + " already exists")
		case pgForeignKeyViolation:
			return fmt.Errorf("%s references a record that does not exist: %w", resource, ErrValidation)
		}
	}
	return err
}

// NewHTTPErrorHandler converts handler errors into ErrorResponse bodies.
func NewHTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorBody(err)
		if status >= http.StatusInternalServerError {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error().Err(err).Msg("failed to write error response")
		}
	}
}

func errorBody(err error) (int, *ErrorResponse) {
	var fieldErr *FieldError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed",
			map[string]string{fieldErr.Field: fieldErr.Message})
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusBadRequest, CreateErrorResponse("INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Authentication required", nil)
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, CreateErrorResponse("FORBIDDEN", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, CreateErrorResponse("NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, CreateErrorResponse("CONFLICT", err.Error(), nil)
	case errors.As(err, &httpErr):
		if httpErr.Code >= http.StatusInternalServerError {
			return httpErr.Code, CreateErrorResponse("SERVER_ERROR", "Internal server error", nil)
		}
		return httpErr.Code, CreateErrorResponse(codeForStatus(httpErr.Code), fmt.Sprint(httpErr.Message), nil)
	default:
		return http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", "Internal server error", nil)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "CLIENT_ERROR"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	default:
		return "CLIENT_ERROR"
	}
}
