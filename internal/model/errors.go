package model

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationError reports one or more invalid fields
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError wraps field errors into an error value
func NewValidationError(errors []FieldError) *ValidationError {
	return &ValidationError{Errors: errors}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}
	detail := v.Errors[0].String()
	if len(v.Errors) > 1 {
		detail = fmt.Sprintf("%s (and %d more errors)", detail, len(v.Errors)-1)
	}
	return "validation failed: " + detail
}

// HasField returns true if any error targets the given field
func (v *ValidationError) HasField(field string) bool {
	for _, fe := range v.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func validateRequiredString(field, value string, maxLen int) []FieldError {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return []FieldError{{Field: field, Message: "is required"}}
	}
	if len(value) > maxLen {
		return []FieldError{{Field: field, Message: fmt.Sprintf("must be at most %d characters", maxLen)}}
	}
	return nil
}
