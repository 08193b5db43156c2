// Package errors provides structured error types for opengrid.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for opengrid.
const (
	// Store errors
	CodeNotFound        Code = "NOT_FOUND"
	CodeUniqueViolation Code = "UNIQUE_VIOLATION"
	CodeValidation      Code = "VALIDATION_FAILED"
	CodeStorage         Code = "STORAGE_FAILURE"

	// Config errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
)

// Category groups error codes for HTTP status mapping.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNotFound
	CategoryBadRequest
	CategoryConflict
	CategoryInternal
)

// codeCategories maps error codes to their categories.
var codeCategories = map[Code]Category{
	CodeNotFound:        CategoryNotFound,
	CodeUniqueViolation: CategoryConflict,
	CodeValidation:      CategoryBadRequest,
	CodeStorage:         CategoryInternal,
	CodeConfigInvalid:   CategoryBadRequest,
}

// HTTPStatus returns the HTTP status code for a category.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryNotFound:
		return 404
	case CategoryBadRequest:
		return 400
	case CategoryConflict:
		return 409
	default:
		return 500
	}
}

// Sentinels for errors.Is. Matching is by code only.
var (
	NotFound        = &GridError{Code: CodeNotFound}
	UniqueViolation = &GridError{Code: CodeUniqueViolation}
	Validation      = &GridError{Code: CodeValidation}
	StorageFailure  = &GridError{Code: CodeStorage}
)

// GridError is the structured error type for opengrid.
type GridError struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *GridError) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *GridError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly message for CLI output.
func (e *GridError) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// Category returns the error category for HTTP status mapping.
func (e *GridError) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *GridError) HTTPStatus() int {
	return e.Category().HTTPStatus()
}

// Is reports whether target is a GridError with the same code.
func (e *GridError) Is(target error) bool {
	t, ok := target.(*GridError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *GridError) WithCause(err error) *GridError {
	return &GridError{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// --- Error constructors ---

// ErrNotFound returns an error for a missing entity or referenced parent.
// kind is the entity kind ("project", "asset", ...) and key the lookup value.
func ErrNotFound(kind, key string) *GridError {
	return &GridError{
		Code: CodeNotFound,
		What: fmt.Sprintf("%s %s not found", kind, key),
		Why:  fmt.Sprintf("No %s with this key exists in the studio database", kind),
		Fix:  fmt.Sprintf("Check the %s key, or list existing entries with 'opengrid %s list'", kind, kind),
	}
}

// ErrUniqueViolation returns an error when an insert or update would
// duplicate a natural key.
func ErrUniqueViolation(kind, key string, cause error) *GridError {
	return &GridError{
		Code:  CodeUniqueViolation,
		What:  fmt.Sprintf("%s %s already exists", kind, key),
		Why:   fmt.Sprintf("The %s natural key must be unique", kind),
		Fix:   "Choose a different name or code",
		Cause: cause,
	}
}

// ErrValidation returns an error for structurally invalid input.
func ErrValidation(field, reason string) *GridError {
	return &GridError{
		Code: CodeValidation,
		What: fmt.Sprintf("invalid %s", field),
		Why:  reason,
	}
}

// ErrStorage returns an error for connectivity or transaction failures.
func ErrStorage(op string, cause error) *GridError {
	return &GridError{
		Code:  CodeStorage,
		What:  fmt.Sprintf("storage failure during %s", op),
		Cause: cause,
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(field, reason string) *GridError {
	return &GridError{
		Code: CodeConfigInvalid,
		What: fmt.Sprintf("invalid configuration: %s", field),
		Why:  reason,
		Fix:  "Check .opengrid/config.yaml or the OPENGRID_* environment variables",
	}
}

// AsGridError attempts to convert an error to a GridError.
// Returns nil if the error is not a GridError.
func AsGridError(err error) *GridError {
	var gridErr *GridError
	if stderrors.As(err, &gridErr) {
		return gridErr
	}
	return nil
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	return stderrors.Is(err, NotFound)
}

// IsUniqueViolation reports whether err carries the UNIQUE_VIOLATION code.
func IsUniqueViolation(err error) bool {
	return stderrors.Is(err, UniqueViolation)
}

// IsValidation reports whether err carries the VALIDATION_FAILED code.
func IsValidation(err error) bool {
	return stderrors.Is(err, Validation)
}
