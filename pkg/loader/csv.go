// pkg/loader/csv.go
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/model"
	"github.com/customer-churn/data-pipeline/pkg/modeler"
)

// CSVPersister writes each table of a star model to its own delimited file
// under a single output directory. Writes truncate; output is byte-for-byte
// deterministic for identical input.
type CSVPersister struct {
	outputDir string
	delimiter rune
	logger    *zap.Logger
}

// NewCSVPersister creates a persister that writes <name>.csv files into outputDir
func NewCSVPersister(outputDir string, delimiter rune, logger *zap.Logger) *CSVPersister {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVPersister{
		outputDir: outputDir,
		delimiter: delimiter,
		logger:    logger,
	}
}

// Persist writes every table of the model, replacing prior files
func (p *CSVPersister) Persist(ctx context.Context, m *modeler.StarModel) error {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, table := range m.Tables() {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(p.outputDir, table.Name+".csv")
		if err := WriteTableCSV(path, table.Table, p.delimiter); err != nil {
			return fmt.Errorf("failed to persist table %s: %w", table.Name, err)
		}
		p.logger.Info("Persisted table",
			zap.String("table", table.Name),
			zap.String("path", path),
			zap.Int("rows", table.Table.RowCount()))
	}

	return nil
}

// WriteTableCSV writes a single table to path, truncating any prior file.
// The header row carries the table's columns in order. The writer is flushed
// and the file closed before returning, so a destination that rejects the
// write (full disk, revoked permissions) surfaces as an error instead of a
// truncated file reported as success.
func WriteTableCSV(path string, table *model.Table, delimiter rune) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	writer := csv.NewWriter(file)
	if delimiter != 0 {
		writer.Comma = delimiter
	}

	if err := writer.Write(table.Columns); err != nil {
		file.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(table.Columns))
	for i, row := range table.Rows {
		for j, value := range row {
			record[j] = formatValue(value)
		}
		if err := writer.Write(record); err != nil {
			file.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}

	return nil
}

// formatValue renders a value for delimited output. Floats use the shortest
// exact representation so repeated runs produce identical bytes.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
