// Package domainerr defines the shared error taxonomy. Every write path
// classifies failures into one of four kinds so callers can decide between
// rejecting a mutation, halting the writer, or quarantining a record.
package domainerr

import (
	"errors"
	"fmt"
)

// Kind sentinel values. Concrete errors wrap these so callers can test
// with errors.Is without depending on the concrete type.
var (
	ErrValidation    = errors.New("validation error")
	ErrAllocation    = errors.New("allocation error")
	ErrReferenceMiss = errors.New("reference miss")
	ErrExportMapping = errors.New("export mapping error")
)

// ValidationError reports a mutation that would violate an invariant.
// It is always raised before commit; the mutation is never partially applied.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %s", e.Entity, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation builds a ValidationError for an entity field.
func Validation(entity, field, format string, args ...any) error {
	return &ValidationError{Entity: entity, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// AllocationError reports identity allocator misconfiguration. It is fatal
// at process start; it never occurs per-call.
type AllocationError struct {
	Reason string
}

func (e *AllocationError) Error() string { return "allocator: " + e.Reason }

func (e *AllocationError) Unwrap() error { return ErrAllocation }

// ReferenceMissError reports a failed Reference Catalog lookup. Reference
// data does not change mid-run, so the caller treats this as a validation
// failure and does not retry.
type ReferenceMissError struct {
	Kind string
	ID   any
}

func (e *ReferenceMissError) Error() string {
	return fmt.Sprintf("reference %s %v not found", e.Kind, e.ID)
}

func (e *ReferenceMissError) Unwrap() error { return ErrReferenceMiss }

// ExportMappingError reports a canonical value that cannot be represented
// in the flattened schema within the documented tolerance. The record is
// quarantined, never silently dropped.
type ExportMappingError struct {
	Table  string
	Field  string
	Reason string
}

func (e *ExportMappingError) Error() string {
	return fmt.Sprintf("export %s.%s: %s", e.Table, e.Field, e.Reason)
}

func (e *ExportMappingError) Unwrap() error { return ErrExportMapping }

// IsValidation reports whether err is a validation failure, including
// reference misses, which callers treat the same way.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrReferenceMiss)
}
