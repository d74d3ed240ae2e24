package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/customer-churn/data-pipeline/pkg/config"
	"github.com/customer-churn/data-pipeline/pkg/model"
)

const telcoHeader = "customerID,gender,SeniorCitizen,Partner,Dependents,tenure," +
	"PhoneService,MultipleLines,InternetService,OnlineSecurity,OnlineBackup," +
	"DeviceProtection,TechSupport,StreamingTV,StreamingMovies,Contract," +
	"PaperlessBilling,PaymentMethod,MonthlyCharges,TotalCharges,Churn"

func telcoLine(id string, overrides map[string]string) string {
	values := map[string]string{
		"customerID": id, "gender": "Female", "SeniorCitizen": "0",
		"Partner": "Yes", "Dependents": "No", "tenure": "1",
		"PhoneService": "No", "MultipleLines": "No phone service",
		"InternetService": "DSL", "OnlineSecurity": "No",
		"OnlineBackup": "Yes", "DeviceProtection": "No", "TechSupport": "No",
		"StreamingTV": "No", "StreamingMovies": "No",
		"Contract": "Month-to-month", "PaperlessBilling": "Yes",
		"PaymentMethod": "Electronic check", "MonthlyCharges": "29.85",
		"TotalCharges": "29.85", "Churn": "No",
	}
	for col, val := range overrides {
		values[col] = val
	}
	fields := make([]string, 0, 21)
	for _, col := range strings.Split(telcoHeader, ",") {
		fields = append(fields, values[col])
	}
	return strings.Join(fields, ",")
}

func testConfig(t *testing.T, csvLines ...string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "raw.csv")
	content := telcoHeader + "\n" + strings.Join(csvLines, "\n") + "\n"
	require.NoError(t, os.WriteFile(inputPath, []byte(content), 0644))

	return &config.Config{
		InputPath:     inputPath,
		OutputDir:     filepath.Join(dir, "tables"),
		CleanedOutput: filepath.Join(dir, "processed", "customer_clean.csv"),
		CSVDelimiter:  ',',
		BatchSize:     1000,
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

func TestRun_EndToEnd(t *testing.T) {
	// Empty TotalCharges is filled with 0, partner/dependents flags become
	// 1/0, churn stays Yes/No
	cfg := testConfig(t,
		telcoLine("7590-VHVEG", map[string]string{"TotalCharges": ""}),
		telcoLine("5575-GNVDE", map[string]string{
			"gender": "Male", "Partner": "No", "tenure": "34",
			"MonthlyCharges": "56.95", "TotalCharges": "1889.5", "Churn": "Yes",
		}),
	)
	runner := NewRunner(cfg, zap.NewNop())

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.RowsRead)
	assert.Equal(t, 2, result.RowsCleaned)
	assert.Equal(t, []string{
		"fact_table", "dim_customer_table", "dim_services_table", "dim_subscription_table",
	}, result.TablesPersisted)
	assert.NotEmpty(t, result.CleaningOperations)
	assert.NotEmpty(t, result.Warnings, "blank TotalCharges should surface as a validation warning")

	fact, err := os.ReadFile(filepath.Join(cfg.OutputDir, "fact_table.csv"))
	require.NoError(t, err)
	factLines := strings.Split(strings.TrimSpace(string(fact)), "\n")
	assert.Equal(t, "customerid,tenure,monthlycharges,totalcharges,churn", factLines[0])
	assert.Equal(t, "7590-VHVEG,1,29.85,0,No", factLines[1])
	assert.Equal(t, "5575-GNVDE,34,56.95,1889.5,Yes", factLines[2])

	customer, err := os.ReadFile(filepath.Join(cfg.OutputDir, "dim_customer_table.csv"))
	require.NoError(t, err)
	customerLines := strings.Split(strings.TrimSpace(string(customer)), "\n")
	assert.Equal(t, "customerid,gender,seniorcitizen,partner,dependents", customerLines[0])
	assert.Equal(t, "7590-VHVEG,Female,0,1,0", customerLines[1])
	assert.Equal(t, "5575-GNVDE,Male,0,0,0", customerLines[2])

	// The cleaned flat table is exported alongside the star tables
	cleaned, err := os.ReadFile(cfg.CleanedOutput)
	require.NoError(t, err)
	assert.Contains(t, string(cleaned), "customerid,gender,seniorcitizen")

	for _, name := range []string{"dim_services_table.csv", "dim_subscription_table.csv"} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		assert.NoError(t, err, "expected %s to be persisted", name)
	}
}

func TestRun_RerunIsDeterministic(t *testing.T) {
	cfg := testConfig(t,
		telcoLine("7590-VHVEG", map[string]string{"TotalCharges": ""}),
		telcoLine("5575-GNVDE", map[string]string{"gender": "Male"}),
	)
	runner := NewRunner(cfg, zap.NewNop())

	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(cfg.OutputDir, "fact_table.csv"))
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(cfg.OutputDir, "fact_table.csv"))
	require.NoError(t, err)

	assert.Equal(t, first, second, "reruns must produce byte-identical tables")
}

func TestRun_DuplicateIdentifierAbortsBeforePersist(t *testing.T) {
	cfg := testConfig(t,
		telcoLine("7590-VHVEG", nil),
		telcoLine("7590-VHVEG", map[string]string{"tenure": "2"}),
	)
	runner := NewRunner(cfg, zap.NewNop())

	result, err := runner.Run(context.Background())
	require.Error(t, err)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, CategorySchema, result.Errors[0].Category)
	assert.Equal(t, "model", result.Errors[0].Stage)

	// A failed run must leave no persisted tables behind
	_, statErr := os.Stat(filepath.Join(cfg.OutputDir, "fact_table.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_MissingRequiredColumnAborts(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(inputPath, []byte("customerID,tenure\na,1\n"), 0644))

	cfg := &config.Config{
		InputPath:     inputPath,
		OutputDir:     filepath.Join(dir, "tables"),
		CleanedOutput: filepath.Join(dir, "clean.csv"),
		CSVDelimiter:  ',',
		BatchSize:     1000,
	}
	runner := NewRunner(cfg, zap.NewNop())

	result, err := runner.Run(context.Background())
	require.Error(t, err)

	var schemaErr *model.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "validate", result.Errors[0].Stage)
	assert.Equal(t, CategorySchema, result.Errors[0].Category)
}

func TestRun_UnreadableInputIsIOError(t *testing.T) {
	cfg := testConfig(t, telcoLine("0001-AAAAA", nil))
	cfg.InputPath = filepath.Join(t.TempDir(), "absent.csv")
	runner := NewRunner(cfg, zap.NewNop())

	result, err := runner.Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, CategoryIO, result.Errors[0].Category)
	assert.Equal(t, "ingest", result.Errors[0].Stage)
}
