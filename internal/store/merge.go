package store

// Merge returns a new State holding base with partial merged in. Values that
// are maps on both sides are merged recursively at any depth; all other
// values in partial replace those in base. Neither argument is modified, and
// subtrees untouched by partial are shared with base.
func Merge(base, partial State) State {
	out := make(State, len(base)+len(partial))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = mergeValue(out[k], v)
	}
	return out
}

func mergeValue(old, v any) any {
	next, ok := asMap(v)
	if !ok {
		return v
	}
	prev, ok := asMap(old)
	if !ok {
		// Copy so later merges into this key never alias the caller's map.
		return mergeMaps(nil, next)
	}
	return mergeMaps(prev, next)
}

func mergeMaps(base, partial map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(partial))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = mergeValue(out[k], v)
	}
	return out
}

// asMap reports whether v is a plain object, accepting both State and
// map[string]any.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case State:
		return map[string]any(m), true
	case map[string]any:
		return m, true
	}
	return nil, false
}

// Get reads key from s as a T.
func Get[T any](s State, key string) (T, bool) {
	v, ok := s[key].(T)
	return v, ok
}
