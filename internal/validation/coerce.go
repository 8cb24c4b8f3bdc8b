package validation

import (
	"math"
	"strconv"
	"strings"
)

// Cell coercion helpers. Uploaded rows are untrusted: a numeric column may
// arrive as float64, int, or string, and an array column as a real slice or
// a comma-separated spreadsheet cell. Coercion never mutates the row.

// asString extracts a string cell value.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asNumber coerces a cell to a float64. NaN is rejected: a NaN that survived
// upstream decoding is malformed data, not a value.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asArray coerces a cell to an element slice. Real slices pass through;
// spreadsheet cells like "T1,T2" or "[1,2,3]" are split on commas. An empty
// cell is an empty sequence, not a malformed one.
func asArray(v any) ([]any, bool) {
	switch a := v.(type) {
	case []any:
		return a, true
	case []string:
		out := make([]any, len(a))
		for i, s := range a {
			out[i] = s
		}
		return out, true
	case []float64:
		out := make([]any, len(a))
		for i, f := range a {
			out[i] = f
		}
		return out, true
	case []int:
		out := make([]any, len(a))
		for i, n := range a {
			out[i] = n
		}
		return out, true
	case string:
		s := strings.TrimSpace(a)
		s = strings.TrimPrefix(s, "[")
		s = strings.TrimSuffix(s, "]")
		if strings.TrimSpace(s) == "" {
			return nil, true
		}
		parts := strings.Split(s, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.Trim(strings.TrimSpace(p), `"'`))
		}
		return out, true
	default:
		return nil, false
	}
}

// provided reports whether a cell carries a value. Absent cells are skipped
// by range/array rules; the required-column rule owns true absence.
func provided(row map[string]any, col string) (any, bool) {
	v, ok := row[col]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
