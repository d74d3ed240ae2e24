// pkg/model/cleaning.go
package model

// CleaningOperation records a single remediation applied by the cleaner,
// so no value is ever substituted without it being visible in the run output
type CleaningOperation struct {
	ColumnName    string // Column that was cleaned
	RowIdentifier string // Key of the affected row
	OriginalValue any    // Value before cleaning (may be nil)
	NewValue      any    // Value after cleaning
	Operation     string // Kind of remediation (e.g. "fill_zero", "binary_mapping")
	Reason        string // Why it was needed (e.g. "missing_value")
}
