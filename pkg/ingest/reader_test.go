package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRead_ParsesHeaderAndRows(t *testing.T) {
	path := writeTempCSV(t, "customerID,tenure,Churn\n7590-VHVEG,1,No\n5575-GNVDE,34,Yes\n")

	table, err := NewReader(',', zap.NewNop()).Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"customerID", "tenure", "Churn"}, table.Columns)
	assert.Equal(t, 2, table.RowCount())
	assert.Equal(t, []any{"7590-VHVEG", "1", "No"}, table.Rows[0])
}

func TestRead_CustomDelimiter(t *testing.T) {
	path := writeTempCSV(t, "id;value\na;1\n")

	table, err := NewReader(';', zap.NewNop()).Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "value"}, table.Columns)
	assert.Equal(t, []any{"a", "1"}, table.Rows[0])
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "ragged row",
			content: "id,value\na,1\nb\n",
			wantErr: "failed to read records",
		},
		{
			name:    "empty file",
			content: "",
			wantErr: "failed to read header",
		},
		{
			name:    "duplicate column",
			content: "id,Value,value\na,1,2\n",
			wantErr: "duplicate column",
		},
		{
			name:    "blank column name",
			content: "id,,value\na,1,2\n",
			wantErr: "empty column name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempCSV(t, tt.content)
			_, err := NewReader(',', zap.NewNop()).Read(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	_, err := NewReader(',', zap.NewNop()).Read(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestProfile(t *testing.T) {
	path := writeTempCSV(t, "id,value\na,1\nb,\na,1\n")
	table, err := NewReader(',', zap.NewNop()).Read(path)
	require.NoError(t, err)

	// Third row duplicates the first; second row has a missing value
	profile := Profile(table, zap.NewNop())

	assert.Equal(t, 3, profile.RowCount)
	assert.Equal(t, 1, profile.DuplicateRows)
	assert.Equal(t, "value", profile.Columns[1].Name)
	assert.Equal(t, 1, profile.Columns[1].MissingCount)
	assert.Equal(t, 1, profile.Columns[1].UniqueCount)
	assert.Equal(t, 2, profile.Columns[0].UniqueCount)
}
