// pkg/model/star.go
package model

import "fmt"

// TableSpec names a persisted table and the attribute columns it carries.
// The identifier column is implicit and always leads the column list.
type TableSpec struct {
	Name    string   // Persisted table name
	Columns []string // Ordered attribute columns, identifier excluded
}

// StarSchema declares how a flat table is partitioned into one fact table
// and a fixed set of dimension tables, all keyed by the identifier column.
// The assignment is static so the partition stays deterministic.
type StarSchema struct {
	Identifier string
	Fact       TableSpec
	Dimensions []TableSpec
}

// AllSpecs returns the fact spec followed by every dimension spec
func (s *StarSchema) AllSpecs() []TableSpec {
	specs := make([]TableSpec, 0, len(s.Dimensions)+1)
	specs = append(specs, s.Fact)
	specs = append(specs, s.Dimensions...)
	return specs
}

// MappedColumns returns every attribute column named in the mapping,
// fact first, dimensions in declaration order
func (s *StarSchema) MappedColumns() []string {
	var columns []string
	for _, spec := range s.AllSpecs() {
		columns = append(columns, spec.Columns...)
	}
	return columns
}

// Validate checks the mapping for internal consistency: a non-empty
// identifier, unique table names, and no attribute column assigned twice
func (s *StarSchema) Validate() error {
	if s.Identifier == "" {
		return fmt.Errorf("star schema has no identifier column")
	}

	seenTables := make(map[string]bool)
	seenColumns := make(map[string]string)
	for _, spec := range s.AllSpecs() {
		if spec.Name == "" {
			return fmt.Errorf("star schema contains an unnamed table")
		}
		if seenTables[spec.Name] {
			return fmt.Errorf("table %q declared twice", spec.Name)
		}
		seenTables[spec.Name] = true

		for _, col := range spec.Columns {
			if col == s.Identifier {
				return fmt.Errorf("identifier %q cannot be an attribute of table %q", col, spec.Name)
			}
			if owner, ok := seenColumns[col]; ok {
				return fmt.Errorf("column %q assigned to both %q and %q", col, owner, spec.Name)
			}
			seenColumns[col] = spec.Name
		}
	}
	return nil
}

// TelcoStarSchema returns the fixed fact/dimension mapping for the telco
// churn dataset: measures and the churn outcome in the fact table, and the
// categorical attributes grouped by subject area.
func TelcoStarSchema() *StarSchema {
	return &StarSchema{
		Identifier: "customerid",
		Fact: TableSpec{
			Name:    "fact_table",
			Columns: []string{"tenure", "monthlycharges", "totalcharges", "churn"},
		},
		Dimensions: []TableSpec{
			{
				Name:    "dim_customer_table",
				Columns: []string{"gender", "seniorcitizen", "partner", "dependents"},
			},
			{
				Name: "dim_services_table",
				Columns: []string{
					"phoneservice", "multiplelines", "internetservice",
					"onlinesecurity", "onlinebackup", "deviceprotection",
					"techsupport", "streamingtv", "streamingmovies",
				},
			},
			{
				Name:    "dim_subscription_table",
				Columns: []string{"contract", "paperlessbilling", "paymentmethod"},
			},
		},
	}
}
