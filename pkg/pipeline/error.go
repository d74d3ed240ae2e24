// pkg/pipeline/error.go
package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/customer-churn/data-pipeline/pkg/model"
)

// ErrorCategory classifies a pipeline failure per the error taxonomy:
// schema errors and I/O errors are fatal and abort the run before any
// write; data-quality findings are logged and carried in the run result.
type ErrorCategory int

const (
	// CategoryNone means no error
	CategoryNone ErrorCategory = iota
	// CategoryDataQuality covers remediated findings, non-fatal
	CategoryDataQuality
	// CategorySchema covers contract violations, fatal
	CategorySchema
	// CategoryIO covers unreadable input and unwritable destinations, fatal
	CategoryIO
	// CategoryInternal covers everything else, fatal
	CategoryInternal
)

// String returns a string representation of the error category
func (c ErrorCategory) String() string {
	switch c {
	case CategoryNone:
		return "None"
	case CategoryDataQuality:
		return "DataQuality"
	case CategorySchema:
		return "Schema"
	case CategoryIO:
		return "IO"
	case CategoryInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// Fatal reports whether an error of this category aborts the run
func (c ErrorCategory) Fatal() bool {
	return c == CategorySchema || c == CategoryIO || c == CategoryInternal
}

// ErrorRecord captures a single failure with its stage and category
type ErrorRecord struct {
	Category  ErrorCategory
	Stage     string
	Err       error
	Message   string
	Timestamp time.Time
}

// NewErrorRecord creates an error record for a stage
func NewErrorRecord(stage string, err error) ErrorRecord {
	record := ErrorRecord{
		Category:  Categorize(err),
		Stage:     stage,
		Err:       err,
		Timestamp: time.Now(),
	}
	if err != nil {
		record.Message = err.Error()
	}
	return record
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	return fmt.Sprintf("[%s] stage %s: %s", r.Category, r.Stage, r.Message)
}

// Categorize determines the category of an error by its type
func Categorize(err error) ErrorCategory {
	if err == nil {
		return CategoryNone
	}

	var schemaErr *model.SchemaError
	if errors.As(err, &schemaErr) {
		return CategorySchema
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return CategoryIO
	}

	return CategoryInternal
}
