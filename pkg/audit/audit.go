package audit

import (
	"context"
	"fmt"
	"time"
)

// Outcome classifies how a validation request ended.
type Outcome string

const (
	// OutcomeValid means the record passed every pipeline stage.
	OutcomeValid Outcome = "valid"

	// OutcomeSchemaError means the schema itself was rejected.
	OutcomeSchemaError Outcome = "schema_error"

	// OutcomeTypeError means one or more declared fields failed the type check.
	OutcomeTypeError Outcome = "type_error"

	// OutcomeRuleError means one or more rule conditions failed or errored.
	OutcomeRuleError Outcome = "rule_error"

	// OutcomeDepthExceeded means computed-field resolution hit the depth limit.
	OutcomeDepthExceeded Outcome = "depth_exceeded"
)

// Record is one entry in the decision log. It captures request identity,
// outcome, and timing. The validated data itself is never stored.
type Record struct {
	// ID uniquely identifies this audit record (UUID).
	ID string

	// RequestID correlates the record with server logs.
	RequestID string

	// Ruleset is the named ruleset the request used, or empty for
	// requests that carried an inline schema.
	Ruleset string

	// Outcome is the pipeline result classification.
	Outcome Outcome

	// ErrorCount is the number of error records returned to the caller.
	ErrorCount int

	// Duration is the total pipeline time.
	Duration time.Duration

	// CreatedAt is when the record was written.
	CreatedAt time.Time
}

// Storage persists audit records.
type Storage interface {
	// Store appends a record to the decision log.
	Store(ctx context.Context, record *Record) error

	// Count returns the number of records created before cutoff.
	// A zero cutoff counts all records.
	Count(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteBefore removes records created before cutoff and returns
	// how many were deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*Record, error)

	// Close releases backend resources.
	Close() error
}

// StorageError wraps a failure in a storage backend.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}
