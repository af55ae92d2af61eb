package decode

import (
	"strconv"
	"strings"
)

// Records normalizes the shapes a record collection takes after decoding:
// absent or a bare string means no records, a single map is one record and
// a list keeps its map elements.
func Records(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case []map[string]any:
		return t
	default:
		return []map[string]any{}
	}
}

// Lookup walks nested maps. It returns nil as soon as a step is missing or
// is not a map.
func Lookup(v any, path ...string) any {
	cur := v
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// Float coerces a decoded scalar. Upstream sends amounts as numbers or
// numeric strings depending on the endpoint.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", ""), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int coerces a decoded scalar to an int, truncating fractions
func Int(v any) (int, bool) {
	f, ok := Float(v)
	return int(f), ok
}

// String renders a decoded scalar as text. Whole floats print without a
// fractional part so ids survive the round trip.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}
