package domain

import "strings"

// RedactionMarker replaces sensitive values in persisted event payloads.
const RedactionMarker = "[REDACTED]"

// Redact returns a copy of values with every field whose name matches the
// sensitive list (case-insensitive) replaced by RedactionMarker. The check
// recurses through nested maps and slices, so a password three levels deep
// is still caught. The input map is never modified.
func Redact(values map[string]any, sensitiveFields []string) map[string]any {
	if values == nil {
		return nil
	}

	sensitive := make(map[string]struct{}, len(sensitiveFields))
	for _, field := range sensitiveFields {
		sensitive[strings.ToLower(field)] = struct{}{}
	}

	return redactMap(values, sensitive)
}

func redactMap(values map[string]any, sensitive map[string]struct{}) map[string]any {
	redacted := make(map[string]any, len(values))
	for key, value := range values {
		if _, ok := sensitive[strings.ToLower(key)]; ok {
			redacted[key] = RedactionMarker
			continue
		}
		redacted[key] = redactValue(value, sensitive)
	}
	return redacted
}

func redactValue(value any, sensitive map[string]struct{}) any {
	switch v := value.(type) {
	case map[string]any:
		return redactMap(v, sensitive)
	case []any:
		redacted := make([]any, len(v))
		for i, item := range v {
			redacted[i] = redactValue(item, sensitive)
		}
		return redacted
	default:
		return value
	}
}
