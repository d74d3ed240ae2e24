// pkg/model/errors.go
package model

import "fmt"

// SchemaError is a fatal contract violation: a required column is absent,
// a key is duplicated or null, or a value cannot carry its declared type.
// A run that raises one aborts before anything is persisted.
type SchemaError struct {
	Column string // Offending column, when known
	Reason string // What went wrong
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema error: %s", e.Reason)
	}
	return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Reason)
}

// NewSchemaError creates a schema error for a column
func NewSchemaError(column, reason string) *SchemaError {
	return &SchemaError{Column: column, Reason: reason}
}
