package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch  = errors.New("fingerprint mismatch: description differs from the expected one")
	ErrFileTooLarge      = errors.New("description exceeds maximum size")
	ErrTooManyLayers     = errors.New("too many layers in description")
	ErrTooManyNodes      = errors.New("too many nodes in description")
	ErrInvalidName       = errors.New("invalid name")
	ErrUnsupportedFormat = errors.New("unsupported description format")
	ErrDuplicateTensor   = errors.New("tensor name defined more than once")
	ErrEmptyDescription  = errors.New("description has no inputs")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "invalid_name", "duplicate_tensor")
	Name    string // Primary layer or tensor name involved
	Where   string // Location in the description (e.g., "nodes[3].outputs")
	Details string // Additional details
	err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch {
	case e.Name != "" && e.Where != "":
		return fmt.Sprintf("%s: %s %q: %s", e.Type, e.Where, e.Name, e.Details)
	case e.Name != "":
		return fmt.Sprintf("%s: %q: %s", e.Type, e.Name, e.Details)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Details)
	}
}

// Unwrap returns the sentinel matching Type, if any.
func (e *ValidationError) Unwrap() error { return e.err }
