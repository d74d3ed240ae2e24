package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/customer-churn/data-pipeline/pkg/model"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{
			name: "nil error",
			err:  nil,
			want: CategoryNone,
		},
		{
			name: "schema error",
			err:  model.NewSchemaError("customerid", "duplicate identifier"),
			want: CategorySchema,
		},
		{
			name: "wrapped schema error",
			err:  fmt.Errorf("modeling failed: %w", model.NewSchemaError("churn", "missing")),
			want: CategorySchema,
		},
		{
			name: "path error",
			err:  fmt.Errorf("read failed: %w", &fs.PathError{Op: "open", Path: "x.csv", Err: fs.ErrNotExist}),
			want: CategoryIO,
		},
		{
			name: "anything else",
			err:  errors.New("boom"),
			want: CategoryInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.err))
		})
	}
}

func TestErrorCategory_Fatal(t *testing.T) {
	assert.False(t, CategoryNone.Fatal())
	assert.False(t, CategoryDataQuality.Fatal())
	assert.True(t, CategorySchema.Fatal())
	assert.True(t, CategoryIO.Fatal())
	assert.True(t, CategoryInternal.Fatal())
}

func TestNewErrorRecord(t *testing.T) {
	record := NewErrorRecord("model", model.NewSchemaError("customerid", "duplicate identifier \"7590-VHVEG\""))

	assert.Equal(t, CategorySchema, record.Category)
	assert.Equal(t, "model", record.Stage)
	assert.Contains(t, record.String(), "7590-VHVEG")
	assert.False(t, record.Timestamp.IsZero())
}
