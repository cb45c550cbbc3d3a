// Package errors provides a lightweight structured error type (SitepressError)
// for category-based classification and retry semantics across the publish
// pipeline, HTTP adapters, and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a sitepress error for classification
type ErrorCategory string

const (
	// User-facing input and precondition errors
	CategoryValidation ErrorCategory = "validation"
	CategoryDomain     ErrorCategory = "domain"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryConflict   ErrorCategory = "conflict"

	// Pipeline stage errors
	CategoryGeneration ErrorCategory = "generation"
	CategoryUpload     ErrorCategory = "upload"
	CategoryStorage    ErrorCategory = "storage"
	CategoryCache      ErrorCategory = "cache"

	// Runtime and infrastructure errors
	CategoryConfig   ErrorCategory = "config"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// SitepressError is a structured error with category, retryability, and context
type SitepressError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for SitepressError
type ContextFields map[string]any

// Error implements the error interface
func (e *SitepressError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *SitepressError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *SitepressError) WithContext(key string, value any) *SitepressError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new SitepressError
func New(category ErrorCategory, severity ErrorSeverity, message string) *SitepressError {
	return &SitepressError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new SitepressError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *SitepressError {
	return &SitepressError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// WrapRetryable creates a new retryable SitepressError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *SitepressError {
	return &SitepressError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if se, ok := err.(*SitepressError); ok {
		return se.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if se, ok := err.(*SitepressError); ok {
		return se.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a SitepressError
func GetCategory(err error) ErrorCategory {
	if se, ok := err.(*SitepressError); ok {
		return se.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error (maps to 400 in HTTP adapters)
func ValidationError(message string) *SitepressError {
	return &SitepressError{
		Category:  CategoryValidation,
		Severity:  SeverityWarning,
		Message:   message,
		Retryable: false,
	}
}

// NotFoundError creates a new not-found error (maps to 404 in HTTP adapters)
func NotFoundError(message string) *SitepressError {
	return &SitepressError{
		Category:  CategoryNotFound,
		Severity:  SeverityWarning,
		Message:   message,
		Retryable: false,
	}
}

// ConflictError creates a new conflict error (maps to 409 in HTTP adapters)
func ConflictError(message string) *SitepressError {
	return &SitepressError{
		Category:  CategoryConflict,
		Severity:  SeverityWarning,
		Message:   message,
		Retryable: false,
	}
}

// DomainError creates a new domain-binding error
func DomainError(message string) *SitepressError {
	return &SitepressError{
		Category:  CategoryDomain,
		Severity:  SeverityWarning,
		Message:   message,
		Retryable: false,
	}
}
