package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/model"
)

func testSchema() *model.Schema {
	return &model.Schema{
		Identifier: "customerid",
		Columns: []model.ColumnSpec{
			{Name: "customerid", Kind: model.KindString, Required: true},
			{Name: "tenure", Kind: model.KindInt, Required: true},
			{Name: "monthlycharges", Kind: model.KindFloat, Required: true},
			{Name: "partner", Kind: model.KindBinary, Required: true},
		},
	}
}

func TestValidate_MissingRequiredColumnIsFatal(t *testing.T) {
	table := model.NewTable([]string{"customerID", "tenure", "MonthlyCharges"})
	require.NoError(t, table.AppendRow([]any{"a", "1", "29.85"}))

	report, err := NewValidator(zap.NewNop()).Validate(table, testSchema())

	require.Error(t, err)
	var schemaErr *model.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"partner"}, report.MissingColumns)
}

func TestValidate_BlankNumericIsWarningOnly(t *testing.T) {
	table := model.NewTable([]string{"customerID", "tenure", "MonthlyCharges", "Partner"})
	require.NoError(t, table.AppendRow([]any{"a", "1", "", "Yes"}))

	report, err := NewValidator(zap.NewNop()).Validate(table, testSchema())

	require.NoError(t, err)
	require.Len(t, report.TypeWarnings, 1)
	assert.Contains(t, report.TypeWarnings[0], "MonthlyCharges")
	assert.True(t, report.HasWarnings())
}

func TestValidate_UnknownColumnIsWarning(t *testing.T) {
	table := model.NewTable([]string{"customerID", "tenure", "MonthlyCharges", "Partner", "Extra"})
	require.NoError(t, table.AppendRow([]any{"a", "1", "29.85", "No", "x"}))

	report, err := NewValidator(zap.NewNop()).Validate(table, testSchema())

	require.NoError(t, err)
	assert.Equal(t, []string{"Extra"}, report.UnknownColumns)
}

func TestValidate_TypeFindings(t *testing.T) {
	tests := []struct {
		name        string
		row         []any
		wantFinding string
	}{
		{
			name:        "text in integer column",
			row:         []any{"a", "abc", "29.85", "Yes"},
			wantFinding: "tenure",
		},
		{
			name:        "bad binary flag",
			row:         []any{"a", "1", "29.85", "Maybe"},
			wantFinding: "Partner",
		},
		{
			name: "clean row",
			row:  []any{"a", "1", "29.85", "No"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := model.NewTable([]string{"customerID", "tenure", "MonthlyCharges", "Partner"})
			require.NoError(t, table.AppendRow(tt.row))

			report, err := NewValidator(zap.NewNop()).Validate(table, testSchema())
			require.NoError(t, err)

			if tt.wantFinding == "" {
				assert.Empty(t, report.TypeWarnings)
				return
			}
			require.NotEmpty(t, report.TypeWarnings)
			assert.Contains(t, report.TypeWarnings[0], tt.wantFinding)
		})
	}
}

func TestValidate_AcceptsAlreadyTypedValues(t *testing.T) {
	table := model.NewTable([]string{"customerid", "tenure", "monthlycharges", "partner"})
	require.NoError(t, table.AppendRow([]any{"a", int64(5), 99.5, int64(1)}))

	report, err := NewValidator(zap.NewNop()).Validate(table, testSchema())

	require.NoError(t, err)
	assert.Empty(t, report.TypeWarnings)
}
