// pkg/modeler/join.go
package modeler

import (
	"fmt"

	"github.com/customer-churn/data-pipeline/pkg/model"
)

// Join reassembles the flat table from a star model by inner-joining the
// fact table with every dimension table on the identifier. It works for
// any row ordering of the dimension tables and fails on orphan keys in
// either direction. Row order follows the fact table; columns come out as
// identifier, fact attributes, then each dimension's attributes.
func Join(m *StarModel) (*model.Table, error) {
	columns := append([]string(nil), m.Fact.Table.Columns...)
	for _, dim := range m.Dimensions {
		// Skip the identifier, present in every table
		columns = append(columns, dim.Table.Columns[1:]...)
	}

	// Index every dimension by key
	indexes := make([]map[any][]any, len(m.Dimensions))
	for i, dim := range m.Dimensions {
		index := make(map[any][]any, dim.Table.RowCount())
		for _, row := range dim.Table.Rows {
			index[row[0]] = row
		}
		if len(index) != dim.Table.RowCount() {
			return nil, model.NewSchemaError(m.Identifier,
				fmt.Sprintf("dimension %q has duplicate keys", dim.Name))
		}
		indexes[i] = index
	}

	out := model.NewTable(columns)
	for _, factRow := range m.Fact.Table.Rows {
		key := factRow[0]
		joined := append([]any(nil), factRow...)
		for i, dim := range m.Dimensions {
			dimRow, ok := indexes[i][key]
			if !ok {
				return nil, model.NewSchemaError(m.Identifier,
					fmt.Sprintf("key %v present in %q but absent from %q", key, m.Fact.Name, dim.Name))
			}
			joined = append(joined, dimRow[1:]...)
		}
		out.Rows = append(out.Rows, joined)
	}

	// Orphans in the other direction: a dimension key the fact table lacks
	for i, dim := range m.Dimensions {
		if len(indexes[i]) != m.Fact.Table.RowCount() {
			return nil, model.NewSchemaError(m.Identifier,
				fmt.Sprintf("dimension %q has %d keys, fact table has %d",
					dim.Name, len(indexes[i]), m.Fact.Table.RowCount()))
		}
	}

	return out, nil
}
