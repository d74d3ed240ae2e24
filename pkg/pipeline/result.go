// pkg/pipeline/result.go
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/customer-churn/data-pipeline/pkg/model"
)

// RunResult summarizes one pipeline run. A run either reaches successful
// persistence or is considered to have not happened; either way the result
// records what the run saw and did.
type RunResult struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Success   bool

	RowsRead           int
	RowsCleaned        int
	RowsDropped        int
	DuplicatesDropped  int
	CleaningOperations []model.CleaningOperation
	TablesPersisted    []string

	Warnings []string
	Errors   []ErrorRecord

	StageDurations map[string]time.Duration
}

// NewRunResult initializes a result for a fresh run
func NewRunResult() *RunResult {
	return &RunResult{
		RunID:          uuid.New().String(),
		StartTime:      time.Now(),
		StageDurations: make(map[string]time.Duration),
	}
}

// Complete marks the run as finished and computes its duration
func (r *RunResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// RecordStage stores the elapsed time of a named stage
func (r *RunResult) RecordStage(stage string, start time.Time) {
	r.StageDurations[stage] = time.Since(start)
}

// AddError appends an error record and marks the run failed
func (r *RunResult) AddError(record ErrorRecord) {
	r.Errors = append(r.Errors, record)
	r.Success = false
}

// AddWarning appends a non-fatal finding
func (r *RunResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// HasErrors checks if any errors occurred
func (r *RunResult) HasErrors() bool {
	return len(r.Errors) > 0
}
