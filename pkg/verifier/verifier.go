// pkg/verifier/verifier.go
package verifier

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/model"
	"github.com/customer-churn/data-pipeline/pkg/modeler"
)

// Verifier checks the invariants of a built star model against the cleaned
// input it was derived from: identical key sets in every table, and an
// exact round trip when fact and dimensions are rejoined on the identifier.
type Verifier struct {
	logger *zap.Logger
}

// NewVerifier creates a new Verifier
func NewVerifier(logger *zap.Logger) *Verifier {
	return &Verifier{logger: logger}
}

// Discrepancy describes one failed invariant
type Discrepancy struct {
	Table  string
	Detail string
}

// Report collects discrepancies found during verification
type Report struct {
	Discrepancies []Discrepancy
}

// OK reports whether verification found no discrepancies
func (r *Report) OK() bool {
	return len(r.Discrepancies) == 0
}

func (r *Report) add(table, format string, args ...any) {
	r.Discrepancies = append(r.Discrepancies, Discrepancy{
		Table:  table,
		Detail: fmt.Sprintf(format, args...),
	})
}

// VerifyModel checks row counts, key-set equality and the round-trip law.
// Any discrepancy means the model must not be persisted.
func (v *Verifier) VerifyModel(cleaned *model.Table, m *modeler.StarModel) (*Report, error) {
	report := &Report{}

	v.verifyRowCounts(cleaned, m, report)
	v.verifyKeySets(m, report)
	v.verifyRoundTrip(cleaned, m, report)

	if report.OK() {
		v.logger.Info("Model verification passed",
			zap.Int("tables", len(m.Tables())),
			zap.Int("rows", cleaned.RowCount()))
	} else {
		for _, d := range report.Discrepancies {
			v.logger.Error("Model verification discrepancy",
				zap.String("table", d.Table),
				zap.String("detail", d.Detail))
		}
	}

	return report, nil
}

// verifyRowCounts checks one row per distinct input identifier in every table
func (v *Verifier) verifyRowCounts(cleaned *model.Table, m *modeler.StarModel, report *Report) {
	want := cleaned.RowCount()
	for _, table := range m.Tables() {
		if got := table.Table.RowCount(); got != want {
			report.add(table.Name, "row count %d, input has %d", got, want)
		}
	}
}

// verifyKeySets checks that every table carries exactly the same identifiers
func (v *Verifier) verifyKeySets(m *modeler.StarModel, report *Report) {
	factKeys := keySet(m.Fact.Table)
	for _, dim := range m.Dimensions {
		dimKeys := keySet(dim.Table)
		for key := range factKeys {
			if !dimKeys[key] {
				report.add(dim.Name, "missing key %v present in %s", key, m.Fact.Name)
			}
		}
		for key := range dimKeys {
			if !factKeys[key] {
				report.add(dim.Name, "orphan key %v absent from %s", key, m.Fact.Name)
			}
		}
	}
}

// verifyRoundTrip rejoins the model and compares it to the cleaned input
// by key, so the check holds for any row ordering
func (v *Verifier) verifyRoundTrip(cleaned *model.Table, m *modeler.StarModel, report *Report) {
	joined, err := modeler.Join(m)
	if err != nil {
		report.add(m.Fact.Name, "join failed: %v", err)
		return
	}

	for _, col := range cleaned.Columns {
		if !joined.HasColumn(col) {
			report.add(m.Fact.Name, "column %q lost in round trip", col)
		}
	}
	for _, col := range joined.Columns {
		if !cleaned.HasColumn(col) {
			report.add(m.Fact.Name, "column %q duplicated in round trip", col)
		}
	}
	if len(report.Discrepancies) > 0 {
		return
	}

	idIdx := cleaned.ColumnIndex(m.Identifier)
	joinedByKey := make(map[any][]any, joined.RowCount())
	for _, row := range joined.Rows {
		joinedByKey[row[0]] = row
	}

	for _, cleanedRow := range cleaned.Rows {
		key := cleanedRow[idIdx]
		joinedRow, ok := joinedByKey[key]
		if !ok {
			report.add(m.Fact.Name, "key %v missing from round trip", key)
			continue
		}
		for i, col := range cleaned.Columns {
			jIdx := joined.ColumnIndex(col)
			if joinedRow[jIdx] != cleanedRow[i] {
				report.add(m.Fact.Name, "key %v column %q: round trip %v, input %v",
					key, col, joinedRow[jIdx], cleanedRow[i])
			}
		}
	}
}

func keySet(table *model.Table) map[any]bool {
	keys := make(map[any]bool, table.RowCount())
	for _, row := range table.Rows {
		keys[row[0]] = true
	}
	return keys
}
