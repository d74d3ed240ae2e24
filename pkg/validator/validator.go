// pkg/validator/validator.go
package validator

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/model"
)

// Validator checks a raw flat table against a declared schema
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a new Validator
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Report lists the findings of a validation pass. Missing required columns
// are fatal; everything else is recoverable and left for the cleaner.
type Report struct {
	MissingColumns []string // Required columns absent from the input (fatal)
	UnknownColumns []string // Input columns the schema does not declare
	TypeWarnings   []string // Values a declared kind cannot hold as-is
}

// HasWarnings reports whether any non-fatal findings were recorded
func (r *Report) HasWarnings() bool {
	return len(r.UnknownColumns) > 0 || len(r.TypeWarnings) > 0
}

// Validate checks the table against the schema. It returns a SchemaError
// when a required column is absent; recoverable findings (blank values in
// numeric columns, undeclared columns) only produce report warnings.
// Column matching is case-insensitive because headers are normalized later.
func (v *Validator) Validate(table *model.Table, schema *model.Schema) (*Report, error) {
	report := &Report{}

	present := make(map[string]string, len(table.Columns))
	for _, col := range table.Columns {
		present[normalizeName(col)] = col
	}

	for _, spec := range schema.Columns {
		if _, ok := present[spec.Name]; !ok && spec.Required {
			report.MissingColumns = append(report.MissingColumns, spec.Name)
		}
	}
	if len(report.MissingColumns) > 0 {
		return report, model.NewSchemaError(
			report.MissingColumns[0],
			fmt.Sprintf("required columns missing from input: %s", strings.Join(report.MissingColumns, ", ")),
		)
	}

	for _, col := range table.Columns {
		if schema.ColumnSpecByName(normalizeName(col)) == nil {
			report.UnknownColumns = append(report.UnknownColumns, col)
		}
	}

	v.checkTypes(table, schema, report)

	if report.HasWarnings() {
		v.logger.Warn("Validation finished with warnings",
			zap.Strings("unknown_columns", report.UnknownColumns),
			zap.Int("type_warnings", len(report.TypeWarnings)))
	} else {
		v.logger.Info("Validation passed",
			zap.Int("rows", table.RowCount()),
			zap.Int("columns", len(table.Columns)))
	}

	return report, nil
}

// checkTypes records a warning for every value that does not parse as the
// declared kind. Blank values count too; the cleaner decides their fate.
func (v *Validator) checkTypes(table *model.Table, schema *model.Schema, report *Report) {
	for colIdx, col := range table.Columns {
		spec := schema.ColumnSpecByName(normalizeName(col))
		if spec == nil || spec.Kind == model.KindString {
			continue
		}

		for rowIdx, row := range table.Rows {
			if err := checkValue(row[colIdx], spec.Kind); err != nil {
				report.TypeWarnings = append(report.TypeWarnings,
					fmt.Sprintf("row %d, column %s: %v", rowIdx, col, err))
			}
		}
	}
}

// checkValue reports whether a raw value can carry the declared kind
func checkValue(value any, kind model.Kind) error {
	if value == nil {
		return fmt.Errorf("missing value for %s column", kind)
	}

	str, isString := value.(string)
	if isString && strings.TrimSpace(str) == "" {
		return fmt.Errorf("blank value for %s column", kind)
	}

	switch kind {
	case model.KindInt:
		switch v := value.(type) {
		case int64:
			return nil
		case string:
			if _, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err != nil {
				return fmt.Errorf("expected integer, got %q", v)
			}
		case float64:
			return fmt.Errorf("expected integer, got float %v", v)
		}
	case model.KindFloat:
		switch v := value.(type) {
		case float64, int64:
			return nil
		case string:
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				return fmt.Errorf("expected number, got %q", v)
			}
		}
	case model.KindBinary:
		switch v := value.(type) {
		case int64:
			if v != 0 && v != 1 {
				return fmt.Errorf("expected binary flag, got %d", v)
			}
		case string:
			switch strings.TrimSpace(v) {
			case "Yes", "No", "yes", "no", "1", "0":
				return nil
			default:
				return fmt.Errorf("expected Yes/No flag, got %q", v)
			}
		}
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
