// pkg/ingest/reader.go
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/model"
)

// Reader ingests a delimited flat file into a raw table
type Reader struct {
	delimiter rune
	logger    *zap.Logger
}

// NewReader creates a new Reader with the given field delimiter
func NewReader(delimiter rune, logger *zap.Logger) *Reader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Reader{
		delimiter: delimiter,
		logger:    logger,
	}
}

// Read parses the file at path into a table of raw string values.
// The first record is the header; every following record must have the
// same width (the csv reader enforces this). An empty file is an error.
func (r *Reader) Read(path string) (*model.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = r.delimiter

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	table := model.NewTable(header)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read records from %s: %w", path, err)
	}

	for _, record := range records {
		row := make([]any, len(record))
		for i, field := range record {
			row[i] = field
		}
		if err := table.AppendRow(row); err != nil {
			return nil, err
		}
	}

	r.logger.Info("Loaded input file",
		zap.String("path", path),
		zap.Int("rows", table.RowCount()),
		zap.Int("columns", len(table.Columns)))

	return table, nil
}

// validateHeader rejects empty or duplicate column names
func validateHeader(header []string) error {
	if len(header) == 0 {
		return errors.New("input file has an empty header")
	}

	seen := make(map[string]bool, len(header))
	for _, name := range header {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return errors.New("input header contains an empty column name")
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			return fmt.Errorf("input header contains duplicate column %q", trimmed)
		}
		seen[key] = true
	}
	return nil
}
