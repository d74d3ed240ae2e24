package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/model"
	"github.com/customer-churn/data-pipeline/pkg/modeler"
)

func buildFixture(t *testing.T) (*model.Table, *modeler.StarModel) {
	t.Helper()

	cleaned := model.NewTable([]string{"customerid", "tenure", "gender"})
	require.NoError(t, cleaned.AppendRow([]any{"a", int64(1), "Female"}))
	require.NoError(t, cleaned.AppendRow([]any{"b", int64(2), "Male"}))

	star := &model.StarSchema{
		Identifier: "customerid",
		Fact:       model.TableSpec{Name: "fact_table", Columns: []string{"tenure"}},
		Dimensions: []model.TableSpec{
			{Name: "dim_customer_table", Columns: []string{"gender"}},
		},
	}

	m, err := modeler.NewModeler(zap.NewNop()).Build(cleaned, star)
	require.NoError(t, err)

	return cleaned, m
}

func TestVerifyModel_PassesForConsistentModel(t *testing.T) {
	cleaned, m := buildFixture(t)

	report, err := NewVerifier(zap.NewNop()).VerifyModel(cleaned, m)
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestVerifyModel_PassesForShuffledDimensionRows(t *testing.T) {
	cleaned, m := buildFixture(t)
	rows := m.Dimensions[0].Table.Rows
	rows[0], rows[1] = rows[1], rows[0]

	report, err := NewVerifier(zap.NewNop()).VerifyModel(cleaned, m)
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestVerifyModel_DetectsMissingDimensionKey(t *testing.T) {
	cleaned, m := buildFixture(t)
	m.Dimensions[0].Table.Rows = m.Dimensions[0].Table.Rows[:1]

	report, err := NewVerifier(zap.NewNop()).VerifyModel(cleaned, m)
	require.NoError(t, err)

	require.False(t, report.OK())
	assert.Equal(t, "dim_customer_table", report.Discrepancies[0].Table)
}

func TestVerifyModel_DetectsValueDrift(t *testing.T) {
	cleaned, m := buildFixture(t)
	m.Dimensions[0].Table.Rows[0][1] = "Other"

	report, err := NewVerifier(zap.NewNop()).VerifyModel(cleaned, m)
	require.NoError(t, err)

	require.False(t, report.OK())
	found := false
	for _, d := range report.Discrepancies {
		if d.Detail != "" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		got  any
		want any
		eq   bool
	}{
		{name: "identical strings", got: "No", want: "No", eq: true},
		{name: "bytes vs string", got: []byte("No"), want: "No", eq: true},
		{name: "int as float", got: float64(1), want: int64(1), eq: true},
		{name: "numeric string", got: "1889.5", want: 1889.5, eq: true},
		{name: "int string", got: "34", want: int64(34), eq: true},
		{name: "different values", got: "Yes", want: "No", eq: false},
		{name: "different numbers", got: int64(2), want: int64(1), eq: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.eq, valuesEqual(tt.got, tt.want))
		})
	}
}
