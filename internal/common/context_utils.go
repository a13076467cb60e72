package common

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hospitalhub/internal/models"
)

type contextKey string

const (
	IdentityKey contextKey = "identity"
)

// Headers the session gate rewrites with verified values.
const (
	HeaderUserRole   = "X-User-Role"
	HeaderHospitalID = "X-Hospital-Id"
	HeaderUserID     = "X-User-Id"
)

// Identity is what the session gate attaches to an authenticated request.
type Identity struct {
	UserID       string
	Email        string
	Role         models.Role
	HospitalCode string
	SessionID    string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// HasTenant reports whether the identity is bound to a hospital.
func (i Identity) HasTenant() bool {
	return i.HospitalCode != ""
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// GetIdentityFromContext extracts the caller identity from the request context
func GetIdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(Identity)
	return id, ok
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return Validation(fieldName, "is required")
	}
	return nil
}

// ValidateOptionalString validates optional string fields
func ValidateOptionalString(value *string, fieldName string, maxLength int) error {
	if value != nil {
		*value = strings.TrimSpace(*value)
		if len(*value) > maxLength {
			return Validation(fieldName, fmt.Sprintf("cannot exceed %d characters", maxLength))
		}
	}
	return nil
}

// ValidateEmail validates a required email address
func ValidateEmail(email, fieldName string) error {
	if err := ValidateRequiredString(email, fieldName); err != nil {
		return err
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return Validation(fieldName, "must be a valid email address")
	}
	return nil
}

// ValidatePositiveFloat validates positive float values with upper bounds
func ValidatePositiveFloat(value float64, fieldName string, maxValue float64) error {
	if value <= 0 {
		return Validation(fieldName, "must be positive")
	}
	if value > maxValue {
		return Validation(fieldName, fmt.Sprintf("cannot exceed %.2f", maxValue))
	}
	return nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns nil for blank strings.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
