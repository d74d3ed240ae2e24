// pkg/verifier/persisted.go
package verifier

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/model"
	"github.com/customer-churn/data-pipeline/pkg/modeler"
)

// sampleLimit caps how many rows are read back per table
const sampleLimit = 100

// VerifyPersisted reads the persisted tables back from PostgreSQL and
// compares row counts plus a sample of rows against the in-memory model.
// Comparison is modulo the driver's own type coercions.
func (v *Verifier) VerifyPersisted(ctx context.Context, db *sqlx.DB, m *modeler.StarModel) (*Report, error) {
	report := &Report{}

	for _, table := range m.Tables() {
		if err := v.verifyPersistedTable(ctx, db, m.Identifier, table, report); err != nil {
			return nil, err
		}
	}

	if report.OK() {
		v.logger.Info("Persisted data verification passed",
			zap.Int("tables", len(m.Tables())))
	}

	return report, nil
}

func (v *Verifier) verifyPersistedTable(
	ctx context.Context,
	db *sqlx.DB,
	identifier string,
	table modeler.BuiltTable,
	report *Report,
) error {
	name := model.QuoteIdentifier(table.Name)

	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+name).Scan(&count); err != nil {
		return fmt.Errorf("failed to count rows in %s: %w", table.Name, err)
	}
	if count != int64(table.Table.RowCount()) {
		report.add(table.Name, "persisted %d rows, expected %d", count, table.Table.RowCount())
		return nil
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1", name, model.QuoteIdentifier(identifier))
	limit := table.Table.RowCount()
	if limit > sampleLimit {
		limit = sampleLimit
	}

	for _, row := range table.Table.Rows[:limit] {
		persisted, err := db.QueryRowxContext(ctx, query, row[0]).SliceScan()
		if err != nil {
			report.add(table.Name, "key %v could not be read back: %v", row[0], err)
			continue
		}
		if len(persisted) != len(row) {
			report.add(table.Name, "key %v has %d columns, expected %d", row[0], len(persisted), len(row))
			continue
		}
		for i, want := range row {
			if !valuesEqual(persisted[i], want) {
				report.add(table.Name, "key %v column %q: persisted %v, expected %v",
					row[0], table.Table.Columns[i], persisted[i], want)
			}
		}
	}

	return nil
}

// valuesEqual compares a scanned database value with an in-memory value,
// tolerating the driver's representation choices (bytes for text, floats
// arriving as strings)
func valuesEqual(got, want any) bool {
	if b, ok := got.([]byte); ok {
		got = string(b)
	}
	if got == want {
		return true
	}

	switch w := want.(type) {
	case int64:
		switch g := got.(type) {
		case int64:
			return g == w
		case float64:
			return g == float64(w)
		case string:
			parsed, err := strconv.ParseInt(g, 10, 64)
			return err == nil && parsed == w
		}
	case float64:
		switch g := got.(type) {
		case float64:
			return g == w
		case int64:
			return float64(g) == w
		case string:
			parsed, err := strconv.ParseFloat(g, 64)
			return err == nil && parsed == w
		}
	case string:
		if g, ok := got.(string); ok {
			return g == w
		}
	}
	return false
}
