package domain

// CloneSettings returns a structural deep copy of s. Nested maps and slices are
// copied so that mutating the result never affects s. A nil map stays nil.
func CloneSettings(s Settings) Settings {
	if s == nil {
		return nil
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies the container shapes produced by JSON and YAML
// decoding as well as the literal shapes used by the block catalog.
// Scalars are returned as is.
func CloneValue(v any) any {
	switch t := v.(type) {
	case Settings:
		return CloneSettings(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = CloneValue(e)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	case []map[string]any:
		if t == nil {
			return t
		}
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e).(map[string]any)
		}
		return out
	case []string:
		if t == nil {
			return t
		}
		return append([]string(nil), t...)
	default:
		return v
	}
}
