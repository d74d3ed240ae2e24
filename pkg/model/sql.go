// pkg/model/sql.go
package model

import "strings"

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded quotes
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
