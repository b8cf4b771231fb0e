package dataset

import (
	"errors"
	"fmt"
)

// Error codes for categorizing dataset load failures
const (
	ErrCodeMissingFile   = "MISSING_FILE"
	ErrCodeUnreadable    = "UNREADABLE"
	ErrCodeMissingColumn = "MISSING_COLUMN"
	ErrCodeEmpty         = "EMPTY_DATASET"
)

// LoadError represents a categorized failure while loading a dataset.
// Load errors are fatal to the session: no partial dashboard is served.
type LoadError struct {
	Code    string // Error category code
	Path    string // Source file path
	Column  string // Offending column, when applicable
	Message string // Human-readable message
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("[%s] %s: column %q: %s", e.Code, e.Path, e.Column, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is().
func (e *LoadError) Is(target error) bool {
	var t *LoadError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Common error instances for comparison
var (
	ErrMissingFile   = &LoadError{Code: ErrCodeMissingFile, Message: "file not found"}
	ErrUnreadable    = &LoadError{Code: ErrCodeUnreadable, Message: "unreadable file"}
	ErrMissingColumn = &LoadError{Code: ErrCodeMissingColumn, Message: "missing required column"}
	ErrEmpty         = &LoadError{Code: ErrCodeEmpty, Message: "no usable rows"}
)

// NewMissingFileError creates a missing file error.
func NewMissingFileError(path string, cause error) *LoadError {
	return &LoadError{Code: ErrCodeMissingFile, Path: path, Message: "file not found", Cause: cause}
}

// NewUnreadableError creates an unreadable file error.
func NewUnreadableError(path string, cause error) *LoadError {
	return &LoadError{Code: ErrCodeUnreadable, Path: path, Message: "unreadable file", Cause: cause}
}

// NewMissingColumnError creates a missing column error.
func NewMissingColumnError(path, column string) *LoadError {
	return &LoadError{Code: ErrCodeMissingColumn, Path: path, Column: column, Message: "missing required column"}
}

// NewEmptyError creates an empty dataset error.
func NewEmptyError(path string) *LoadError {
	return &LoadError{Code: ErrCodeEmpty, Path: path, Message: "no usable rows"}
}
