// pkg/ingest/profile.go
package ingest

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/model"
)

// ColumnProfile summarizes one column of a raw table
type ColumnProfile struct {
	Name         string
	MissingCount int
	UniqueCount  int
}

// TableProfile summarizes a raw table before cleaning
type TableProfile struct {
	RowCount      int
	ColumnCount   int
	DuplicateRows int
	Columns       []ColumnProfile
}

// Profile computes per-column missing/unique counts and the number of
// fully duplicated rows, and logs the result
func Profile(table *model.Table, logger *zap.Logger) *TableProfile {
	profile := &TableProfile{
		RowCount:    table.RowCount(),
		ColumnCount: len(table.Columns),
		Columns:     make([]ColumnProfile, 0, len(table.Columns)),
	}

	for i, col := range table.Columns {
		missing := 0
		unique := make(map[any]bool)
		for _, row := range table.Rows {
			if isMissing(row[i]) {
				missing++
				continue
			}
			unique[row[i]] = true
		}
		profile.Columns = append(profile.Columns, ColumnProfile{
			Name:         col,
			MissingCount: missing,
			UniqueCount:  len(unique),
		})
	}

	seen := make(map[string]bool, len(table.Rows))
	for _, row := range table.Rows {
		key := rowKey(row)
		if seen[key] {
			profile.DuplicateRows++
		}
		seen[key] = true
	}

	for _, col := range profile.Columns {
		if col.MissingCount > 0 {
			logger.Warn("Column has missing values",
				zap.String("column", col.Name),
				zap.Int("missing", col.MissingCount))
		}
	}
	logger.Info("Profiled input data",
		zap.Int("rows", profile.RowCount),
		zap.Int("columns", profile.ColumnCount),
		zap.Int("duplicate_rows", profile.DuplicateRows))

	return profile
}

// isMissing treats nil and blank strings as missing values
func isMissing(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func rowKey(row []any) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, "\x1f")
}
