// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package value

import (
	"regexp"
)

type (
	// Kind is the semantic kind of a value, see Classify.
	Kind uint8

	// Map is a mapping-object.
	Map = map[string]any

	// Array is a length-bearing sequence.
	Array = []any

	// Instance is implemented by values produced by a class constructor.
	// The unexported method means the only way to implement it is to embed
	// InstanceMarker, which the class factory does.
	Instance interface {
		// Fields returns the instance's own (per-instance) properties.
		Fields() Map
		instanceMarker()
	}

	// InstanceMarker attaches the class-instance marker to an embedding type.
	InstanceMarker struct{}
)

const (
	// KindNone is nil, i.e. undefined or absent.
	KindNone Kind = iota
	KindArray
	KindMap
	KindText
	KindNumeric
	KindBoolean
	KindCallable
	KindPattern
	KindInstance
	KindUnknown
)

func (InstanceMarker) instanceMarker() {}

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return `none`
	case KindArray:
		return `array`
	case KindMap:
		return `mapping-object`
	case KindText:
		return `text`
	case KindNumeric:
		return `numeric`
	case KindBoolean:
		return `boolean`
	case KindCallable:
		return `callable`
	case KindPattern:
		return `pattern`
	case KindInstance:
		return `class-instance`
	default:
		return `unknown`
	}
}

// Classify returns the Kind of v. It is total and has no side effects.
//
// Typed nil values of a recognised shape classify as that shape, e.g. a nil
// Map is still a mapping-object, while a nil *Func is none.
func Classify(v any) Kind {
	switch v := v.(type) {
	case nil:
		return KindNone
	case []any:
		return KindArray
	case map[string]any:
		return KindMap
	case string:
		return KindText
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return KindNumeric
	case bool:
		return KindBoolean
	case *Func:
		if v == nil {
			return KindNone
		}
		return KindCallable
	case *regexp.Regexp:
		if v == nil {
			return KindNone
		}
		return KindPattern
	case Instance:
		return KindInstance
	default:
		return KindUnknown
	}
}

// Defined reports whether v is not none.
func Defined(v any) bool { return Classify(v) != KindNone }

// Pick returns the first defined value, or nil.
func Pick(values ...any) any {
	for _, v := range values {
		if Defined(v) {
			return v
		}
	}
	return nil
}

// Check reports whether v is defined, and, for text and numeric values,
// non-zero.
func Check(v any) bool {
	switch Classify(v) {
	case KindNone:
		return false
	case KindText:
		return v.(string) != ``
	case KindNumeric:
		f, _ := Float64(v)
		return f != 0
	default:
		return true
	}
}

// Float64 converts a numeric value to float64.
func Float64(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uintptr:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
