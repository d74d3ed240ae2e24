// pkg/cleaner/cleaner.go
package cleaner

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/model"
)

// Cleaner resolves missing and malformed values in a validated flat table
// according to the per-column strategies the schema declares. The input
// table is never mutated; every remediation is recorded as a
// CleaningOperation so nothing is substituted silently.
type Cleaner struct {
	logger *zap.Logger
}

// NewCleaner creates a new Cleaner
func NewCleaner(logger *zap.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Result holds the cleaned table and everything the cleaner did to produce it
type Result struct {
	Table             *model.Table
	Operations        []model.CleaningOperation
	RowsDropped       int
	DuplicatesDropped int
}

// Clean produces a fully typed, schema-conformant table:
//  1. headers are normalized (trim, lowercase, spaces to underscores);
//  2. values are converted to their declared kinds, with missing values
//     resolved per the column's strategy (fill zero, fill mode, drop row);
//  3. Yes/No flags in binary columns become 1/0;
//  4. fully duplicated rows are removed.
//
// Malformed non-missing values (e.g. text in a numeric column) are a fatal
// schema error, never silently coerced. Clean is idempotent: cleaning an
// already-clean table changes nothing.
func (c *Cleaner) Clean(table *model.Table, schema *model.Schema) (*Result, error) {
	out := model.NewTable(normalizeHeaders(table.Columns))
	result := &Result{}

	idIdx := out.ColumnIndex(schema.Identifier)

	modes, err := columnModes(table, out.Columns, schema)
	if err != nil {
		return nil, err
	}

	for rowIdx, row := range table.Rows {
		cleaned, keep, err := c.cleanRow(row, rowIdx, out.Columns, idIdx, schema, modes, result)
		if err != nil {
			return nil, err
		}
		if !keep {
			result.RowsDropped++
			continue
		}
		out.Rows = append(out.Rows, cleaned)
	}

	result.DuplicatesDropped = dropDuplicates(out)
	result.Table = out

	c.logger.Info("Cleaned data",
		zap.Int("rows", out.RowCount()),
		zap.Int("rows_dropped", result.RowsDropped),
		zap.Int("duplicates_dropped", result.DuplicatesDropped),
		zap.Int("cleaning_operations", len(result.Operations)))

	return result, nil
}

// cleanRow converts one row to its declared kinds. The boolean return is
// false when a drop-row strategy fired.
func (c *Cleaner) cleanRow(
	row []any,
	rowIdx int,
	columns []string,
	idIdx int,
	schema *model.Schema,
	modes map[string]any,
	result *Result,
) ([]any, bool, error) {
	rowID := rowIdentifier(row, rowIdx, idIdx)
	cleaned := make([]any, len(row))

	for i, col := range columns {
		spec := schema.ColumnSpecByName(col)
		if spec == nil {
			// Undeclared columns pass through as trimmed strings
			cleaned[i] = trimmed(row[i])
			continue
		}

		if isMissing(row[i]) {
			switch spec.Missing {
			case model.StrategyDropRow:
				result.Operations = append(result.Operations, model.CleaningOperation{
					ColumnName:    col,
					RowIdentifier: rowID,
					OriginalValue: row[i],
					NewValue:      nil,
					Operation:     "drop_row",
					Reason:        "missing_value",
				})
				return nil, false, nil
			case model.StrategyFillMode:
				cleaned[i] = modes[col]
			default:
				cleaned[i] = zeroOf(spec.Kind)
			}
			result.Operations = append(result.Operations, model.CleaningOperation{
				ColumnName:    col,
				RowIdentifier: rowID,
				OriginalValue: row[i],
				NewValue:      cleaned[i],
				Operation:     spec.Missing.String(),
				Reason:        "missing_value",
			})
			continue
		}

		converted, changed, err := convertValue(row[i], spec.Kind)
		if err != nil {
			return nil, false, model.NewSchemaError(col,
				fmt.Sprintf("row %s: %v", rowID, err))
		}
		cleaned[i] = converted
		if changed && spec.Kind == model.KindBinary {
			result.Operations = append(result.Operations, model.CleaningOperation{
				ColumnName:    col,
				RowIdentifier: rowID,
				OriginalValue: row[i],
				NewValue:      converted,
				Operation:     "binary_mapping",
				Reason:        "yes_no_flag",
			})
		}
	}

	return cleaned, true, nil
}

// dropDuplicates removes fully duplicated rows in place, keeping the first
// occurrence, and returns the number removed
func dropDuplicates(table *model.Table) int {
	seen := make(map[string]bool, len(table.Rows))
	kept := table.Rows[:0]
	dropped := 0

	for _, row := range table.Rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = fmt.Sprintf("%v", v)
		}
		key := strings.Join(parts, "\x1f")
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}

	table.Rows = kept
	return dropped
}

// normalizeHeaders applies the single naming convention used everywhere
// downstream: trimmed, lowercase, underscores for spaces
func normalizeHeaders(columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(col)), " ", "_")
	}
	return out
}

func rowIdentifier(row []any, rowIdx, idIdx int) string {
	if idIdx >= 0 && idIdx < len(row) && !isMissing(row[idIdx]) {
		return fmt.Sprintf("%v", trimmed(row[idIdx]))
	}
	return fmt.Sprintf("#%d", rowIdx)
}
