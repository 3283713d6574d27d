package attrs

// ExtractString returns the string value stored under key in a slog-style
// [key1, value1, key2, value2, ...] slice. Non-string values and missing keys
// yield "".
func ExtractString(attrs []any, key string) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); ok && k == key {
			switch v := attrs[i+1].(type) {
			case string:
				return v
			case interface{ String() string }:
				return v.String()
			}
			return ""
		}
	}
	return ""
}
