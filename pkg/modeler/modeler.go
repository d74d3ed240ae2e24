// pkg/modeler/modeler.go
package modeler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/model"
)

// Modeler partitions a cleaned flat table into one fact table and a fixed
// set of dimension tables, all keyed by the shared identifier column. The
// transform is pure and stateless: grouped column projection, nothing else.
type Modeler struct {
	logger *zap.Logger
}

// NewModeler creates a new Modeler
func NewModeler(logger *zap.Logger) *Modeler {
	return &Modeler{logger: logger}
}

// BuiltTable pairs a persisted table name with its contents
type BuiltTable struct {
	Name  string
	Table *model.Table
}

// StarModel is the output of a modeling pass: the fact table plus every
// dimension table, each holding exactly one row per distinct identifier,
// in the same relative order as the input.
type StarModel struct {
	Identifier string
	Fact       BuiltTable
	Dimensions []BuiltTable
}

// Tables returns the fact table followed by every dimension table
func (m *StarModel) Tables() []BuiltTable {
	tables := make([]BuiltTable, 0, len(m.Dimensions)+1)
	tables = append(tables, m.Fact)
	tables = append(tables, m.Dimensions...)
	return tables
}

// Build projects the cleaned table into the star schema's fact and
// dimension tables. It fails with a SchemaError when the identifier column
// is absent, contains nulls or duplicates, or when any mapped column is
// missing from the input. The input table is not modified.
func (m *Modeler) Build(table *model.Table, star *model.StarSchema) (*StarModel, error) {
	if err := star.Validate(); err != nil {
		return nil, fmt.Errorf("invalid star schema: %w", err)
	}

	if err := checkIdentifier(table, star.Identifier); err != nil {
		return nil, err
	}

	out := &StarModel{Identifier: star.Identifier}

	fact, err := projectSpec(table, star.Identifier, star.Fact)
	if err != nil {
		return nil, err
	}
	out.Fact = fact

	for _, spec := range star.Dimensions {
		dim, err := projectSpec(table, star.Identifier, spec)
		if err != nil {
			return nil, err
		}
		out.Dimensions = append(out.Dimensions, dim)
	}

	m.logger.Info("Built star schema",
		zap.String("fact", out.Fact.Name),
		zap.Int("dimensions", len(out.Dimensions)),
		zap.Int("rows", table.RowCount()))

	return out, nil
}

// projectSpec projects the identifier plus the spec's attribute columns
func projectSpec(table *model.Table, identifier string, spec model.TableSpec) (BuiltTable, error) {
	columns := append([]string{identifier}, spec.Columns...)
	projected, err := table.Project(columns)
	if err != nil {
		return BuiltTable{}, model.NewSchemaError("",
			fmt.Sprintf("table %q: %v", spec.Name, err))
	}
	return BuiltTable{Name: spec.Name, Table: projected}, nil
}

// checkIdentifier rejects absent, null and ambiguous keys before any
// projection happens
func checkIdentifier(table *model.Table, identifier string) error {
	idx := table.ColumnIndex(identifier)
	if idx < 0 {
		return model.NewSchemaError(identifier, "identifier column missing from input")
	}

	seen := make(map[any]bool, len(table.Rows))
	for rowIdx, row := range table.Rows {
		key := row[idx]
		if key == nil || key == "" {
			return model.NewSchemaError(identifier,
				fmt.Sprintf("row %d has a null identifier and cannot be joined", rowIdx))
		}
		if seen[key] {
			return model.NewSchemaError(identifier,
				fmt.Sprintf("duplicate identifier %q makes the key ambiguous", key))
		}
		seen[key] = true
	}
	return nil
}
