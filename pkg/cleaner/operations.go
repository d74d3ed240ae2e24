// pkg/cleaner/operations.go
package cleaner

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/customer-churn/data-pipeline/pkg/model"
)

// convertValue coerces a raw value to the declared kind. The boolean return
// reports whether the value actually changed (used for the audit trail).
// A value that cannot carry the kind is an error, never a silent default.
func convertValue(value any, kind model.Kind) (any, bool, error) {
	switch kind {
	case model.KindString:
		return toCleanString(value)
	case model.KindInt:
		return toInt(value)
	case model.KindFloat:
		return toFloat(value)
	case model.KindBinary:
		return toBinary(value)
	default:
		return nil, false, fmt.Errorf("unsupported kind %v", kind)
	}
}

func toCleanString(value any) (any, bool, error) {
	switch v := value.(type) {
	case string:
		t := strings.TrimSpace(v)
		return t, t != v, nil
	case int64:
		return strconv.FormatInt(v, 10), true, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true, nil
	default:
		return nil, false, fmt.Errorf("cannot convert %T to string", value)
	}
}

func toInt(value any) (any, bool, error) {
	switch v := value.(type) {
	case int64:
		return v, false, nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("cannot parse %q as integer", v)
		}
		return parsed, true, nil
	case float64:
		if v != float64(int64(v)) {
			return nil, false, fmt.Errorf("cannot convert %v to integer without loss", v)
		}
		return int64(v), true, nil
	default:
		return nil, false, fmt.Errorf("cannot convert %T to integer", value)
	}
}

func toFloat(value any) (any, bool, error) {
	switch v := value.(type) {
	case float64:
		return v, false, nil
	case int64:
		return float64(v), true, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false, fmt.Errorf("cannot parse %q as number", v)
		}
		return parsed, true, nil
	default:
		return nil, false, fmt.Errorf("cannot convert %T to number", value)
	}
}

// toBinary maps Yes/No flags to 1/0. Already-mapped values pass through
// unchanged, which keeps cleaning idempotent.
func toBinary(value any) (any, bool, error) {
	switch v := value.(type) {
	case int64:
		if v == 0 || v == 1 {
			return v, false, nil
		}
		return nil, false, fmt.Errorf("binary flag out of range: %d", v)
	case string:
		switch strings.TrimSpace(v) {
		case "Yes", "yes":
			return int64(1), true, nil
		case "No", "no":
			return int64(0), true, nil
		case "1":
			return int64(1), true, nil
		case "0":
			return int64(0), true, nil
		default:
			return nil, false, fmt.Errorf("cannot map %q to a binary flag", v)
		}
	default:
		return nil, false, fmt.Errorf("cannot convert %T to binary flag", value)
	}
}

// zeroOf returns the fill value for a kind under the fill-zero strategy
func zeroOf(kind model.Kind) any {
	switch kind {
	case model.KindInt, model.KindBinary:
		return int64(0)
	case model.KindFloat:
		return float64(0)
	default:
		return ""
	}
}

// columnModes precomputes the most frequent converted value for every
// fill-mode column. Ties break toward the lexicographically smaller value
// so repeated runs fill identically.
func columnModes(table *model.Table, normalized []string, schema *model.Schema) (map[string]any, error) {
	modes := make(map[string]any)

	for i, col := range normalized {
		spec := schema.ColumnSpecByName(col)
		if spec == nil || spec.Missing != model.StrategyFillMode {
			continue
		}

		counts := make(map[any]int)
		for _, row := range table.Rows {
			if isMissing(row[i]) {
				continue
			}
			converted, _, err := convertValue(row[i], spec.Kind)
			if err != nil {
				// Malformed values surface later with row context
				continue
			}
			counts[converted]++
		}

		modes[col] = modeOf(counts, spec.Kind)
	}

	return modes, nil
}

func modeOf(counts map[any]int, kind model.Kind) any {
	if len(counts) == 0 {
		return zeroOf(kind)
	}

	keys := make([]any, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprintf("%v", keys[i]) < fmt.Sprintf("%v", keys[j])
	})

	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best
}

// isMissing treats nil and blank strings as missing
func isMissing(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func trimmed(value any) any {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return value
}
