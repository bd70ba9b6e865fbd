package mapping

import (
	"strings"
	"unicode"
)

// Recursive key-casing conversion between snake_case and camelCase for
// nested records, applied whenever data crosses the external/internal
// boundary. Values are left untouched; only map keys are rewritten.

// SnakeToCamel converts a snake_case identifier to camelCase.
func SnakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	if len(parts) == 1 {
		return s
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// CamelToSnake converts a camelCase identifier to snake_case.
func CamelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SnakeKeysToCamel rewrites every key of a nested record from snake_case to
// camelCase, recursing into nested maps and slices.
func SnakeKeysToCamel(record map[string]interface{}) map[string]interface{} {
	return convertKeys(record, SnakeToCamel)
}

// CamelKeysToSnake rewrites every key of a nested record from camelCase to
// snake_case, recursing into nested maps and slices.
func CamelKeysToSnake(record map[string]interface{}) map[string]interface{} {
	return convertKeys(record, CamelToSnake)
}

func convertKeys(record map[string]interface{}, convert func(string) string) map[string]interface{} {
	if record == nil {
		return nil
	}
	out := make(map[string]interface{}, len(record))
	for k, v := range record {
		out[convert(k)] = convertValue(v, convert)
	}
	return out
}

func convertValue(v interface{}, convert func(string) string) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return convertKeys(val, convert)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = convertValue(item, convert)
		}
		return out
	default:
		return v
	}
}
