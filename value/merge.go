// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package value

// Merge combines base and overlay, returning a new value. Neither input is
// modified.
//
// Rules:
//   - both mapping-objects: a new map, recursively merged per key, with keys
//     present on only one side deep-cloned
//   - both callables: the overlay, wrapped so that Call.Super invokes base
//     (unless they are identical, or base is Empty, in which case the overlay
//     is returned as-is)
//   - anything else, including mismatched kinds and none on either side: the
//     overlay wins outright (cloned, if it is a map or array)
func Merge(base, overlay any) any {
	switch Classify(overlay) {
	case KindMap:
		if b, ok := base.(map[string]any); ok {
			return mergeMaps(b, overlay.(map[string]any))
		}
	case KindCallable:
		if b, ok := base.(*Func); ok && b != nil {
			o := overlay.(*Func)
			if b == o || b == Empty {
				return o
			}
			return o.wrap(b)
		}
	}
	return Clone(overlay)
}

// MergeAll folds overlays left to right, starting from an empty map, later
// overlays winning per Merge.
func MergeAll(overlays ...Map) Map {
	result := make(Map)
	for _, o := range overlays {
		result = mergeMaps(result, o)
	}
	return result
}

func mergeMaps(base, overlay map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		if _, ok := overlay[k]; !ok {
			result[k] = Clone(v)
		}
	}
	for k, v := range overlay {
		if b, ok := base[k]; ok {
			result[k] = Merge(b, v)
		} else {
			result[k] = Clone(v)
		}
	}
	return result
}

// Clone returns a deep copy of maps and arrays. Other values are returned
// as-is.
func Clone(v any) any {
	switch v := v.(type) {
	case map[string]any:
		if v == nil {
			return v
		}
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[k] = Clone(e)
		}
		return m
	case []any:
		if v == nil {
			return v
		}
		a := make([]any, len(v))
		for i, e := range v {
			a[i] = Clone(e)
		}
		return a
	default:
		return v
	}
}

// CloneMap is Clone for a Map, returning an empty map for nil.
func CloneMap(m Map) Map {
	if m == nil {
		return make(Map)
	}
	return Clone(m).(Map)
}
