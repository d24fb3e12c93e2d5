package engine

import (
	"fmt"

	"summonmind/atlas/pkg/schema"
)

// SchemaError indicates an invalid schema declaration (missing or
// non-positive version, no fields). It aborts the request before any field
// processing.
type SchemaError struct {
	Message string
}

// Error returns the error message.
func (e *SchemaError) Error() string {
	return e.Message
}

// TypeValidationError carries the complete list of per-field type
// mismatches from the type validation stage. Any entry is fatal to the
// request; rule execution is never reached.
type TypeValidationError struct {
	Errors []schema.ErrorRecord
}

// Error returns the error message.
func (e *TypeValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("type validation failed: %s", e.Errors[0].Message)
	}
	return fmt.Sprintf("type validation failed with %d errors", len(e.Errors))
}

// RuleFailureError carries the complete list of rule failures from the
// rule execution stage. Any entry is fatal to the request; computed field
// resolution is never reached.
type RuleFailureError struct {
	Errors []schema.ErrorRecord
}

// Error returns the error message.
func (e *RuleFailureError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("rule execution failed: %s", e.Errors[0].Message)
	}
	return fmt.Sprintf("rule execution failed with %d errors", len(e.Errors))
}
