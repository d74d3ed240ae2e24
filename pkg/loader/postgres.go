// pkg/loader/postgres.go
package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/model"
	"github.com/customer-churn/data-pipeline/pkg/modeler"
)

// PostgresPersister writes a star model into PostgreSQL with replace
// semantics: inside one transaction each table is dropped, recreated and
// reloaded. A failed run rolls back and leaves prior tables untouched.
type PostgresPersister struct {
	db        *sqlx.DB
	batchSize int
	logger    *zap.Logger
}

// NewPostgresPersister creates a persister over an open connection
func NewPostgresPersister(db *sqlx.DB, batchSize int, logger *zap.Logger) *PostgresPersister {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &PostgresPersister{
		db:        db,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Persist replaces every table of the model in a single transaction
func (p *PostgresPersister) Persist(ctx context.Context, m *modeler.StarModel) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range m.Tables() {
		if err := p.replaceTable(ctx, tx, table); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	p.logger.Info("Persisted star model to PostgreSQL",
		zap.Int("tables", len(m.Tables())))
	return nil
}

// replaceTable drops, recreates and loads one table within the transaction
func (p *PostgresPersister) replaceTable(ctx context.Context, tx *sqlx.Tx, table modeler.BuiltTable) error {
	name := model.QuoteIdentifier(table.Name)

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table.Name, err)
	}

	if _, err := tx.ExecContext(ctx, createTableSQL(table.Name, table.Table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table.Name, err)
	}

	inserted, err := p.insertRows(ctx, tx, table.Name, table.Table)
	if err != nil {
		return fmt.Errorf("failed to load table %s: %w", table.Name, err)
	}

	p.logger.Debug("Replaced table",
		zap.String("table", table.Name),
		zap.Int64("rows", inserted))
	return nil
}

// insertRows performs multi-row batched inserts with positional placeholders
func (p *PostgresPersister) insertRows(ctx context.Context, tx *sqlx.Tx, name string, table *model.Table) (int64, error) {
	if table.RowCount() == 0 {
		return 0, nil
	}

	columns := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		columns[i] = model.QuoteIdentifier(col)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ",
		model.QuoteIdentifier(name), strings.Join(columns, ", "))

	var total int64
	for start := 0; start < len(table.Rows); start += p.batchSize {
		end := start + p.batchSize
		if end > len(table.Rows) {
			end = len(table.Rows)
		}
		batch := table.Rows[start:end]

		query, args := buildInsertBatch(prefix, len(table.Columns), batch)
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("batch insert failed: %w", err)
		}
		if affected, err := result.RowsAffected(); err == nil {
			total += affected
		}
	}

	return total, nil
}

// buildInsertBatch constructs the placeholder list and flattened argument
// slice for one multi-row insert
func buildInsertBatch(prefix string, width int, rows [][]any) (string, []any) {
	placeholders := make([]string, len(rows))
	args := make([]any, 0, len(rows)*width)

	for i, row := range rows {
		cells := make([]string, width)
		for j, value := range row {
			cells[j] = fmt.Sprintf("$%d", i*width+j+1)
			args = append(args, value)
		}
		placeholders[i] = "(" + strings.Join(cells, ", ") + ")"
	}

	return prefix + strings.Join(placeholders, ", "), args
}

// createTableSQL derives a CREATE TABLE statement from the table's values.
// The leading column is the identifier and becomes the primary key.
func createTableSQL(name string, table *model.Table) string {
	defs := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		defs[i] = model.QuoteIdentifier(col) + " " + columnType(table, i)
	}
	if len(defs) > 0 {
		defs[0] += " PRIMARY KEY"
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)",
		model.QuoteIdentifier(name), strings.Join(defs, ",\n\t"))
}

// columnType infers the PostgreSQL type from the first non-nil value
func columnType(table *model.Table, colIdx int) string {
	for _, row := range table.Rows {
		switch row[colIdx].(type) {
		case int64:
			return "BIGINT"
		case float64:
			return "DOUBLE PRECISION"
		case string:
			return "TEXT"
		}
	}
	return "TEXT"
}
