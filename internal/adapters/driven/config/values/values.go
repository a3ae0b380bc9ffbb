// Package values converts decoded config values into the typed results
// the config stores return. TOML decodes integers as int64 and arrays as
// []any, while values set in code arrive as int or []string; both shapes
// are accepted. Anything else converts to the zero value.
package values

// String returns v when it is a string.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int accepts int, int64 and float64; floats are truncated.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Float accepts float64, float32, int and int64.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// Bool returns v when it is a bool.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

// Strings accepts []string, or []any keeping only its string elements.
func Strings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
