// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package mixin

import (
	"math"

	"github.com/joeycumines/go-classkit/value"
)

// Options holds a host's configuration, composed via value.Merge.
//
// Keys named "on" followed by an uppercase ASCII letter (e.g. "onSuccess")
// are event bindings: SetOptions registers callable values under them as
// listeners, if the host is Eventable.
type Options struct {
	host   any
	values value.Map
}

// NewOptions initializes Options for host, with a deep copy of defaults.
func NewOptions(host any, defaults value.Map) *Options {
	return &Options{
		host:   host,
		values: value.CloneMap(defaults),
	}
}

// SetOptions merges overlays (left to right) onto the current options, then
// registers event bindings. See also value.Merge.
func (x *Options) SetOptions(overlays ...value.Map) *Options {
	x.values = value.Merge(x.values, value.MergeAll(overlays...)).(value.Map)

	h, ok := x.host.(Eventable)
	if !ok {
		return x
	}
	events := h.Events()
	if events == nil {
		return x
	}
	for k, v := range x.values {
		if !IsEventName(k) {
			continue
		}
		if fn, ok := v.(*value.Func); ok && value.Classify(fn) == value.KindCallable {
			events.Add(k, fn)
		}
	}
	return x
}

// Values returns the current options. The map must not be modified.
func (x *Options) Values() value.Map {
	return x.values
}

// Get returns the option for key, or nil.
func (x *Options) Get(key string) any {
	return x.values[key]
}

// Set directly overwrites a single option, without merging or registering
// event bindings.
func (x *Options) Set(key string, v any) *Options {
	x.values[key] = v
	return x
}

// String returns the text option for key, or def.
func (x *Options) String(key, def string) string {
	if v, ok := x.values[key].(string); ok {
		return v
	}
	return def
}

// Bool returns the boolean option for key, or def.
func (x *Options) Bool(key string, def bool) bool {
	if v, ok := x.values[key].(bool); ok {
		return v
	}
	return def
}

// Int returns the numeric option for key, truncated to an int, or def.
func (x *Options) Int(key string, def int) int {
	if v, ok := value.Float64(x.values[key]); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return int(v)
	}
	return def
}

// Map returns the mapping-object option for key, or nil.
func (x *Options) Map(key string) value.Map {
	v, _ := x.values[key].(value.Map)
	return v
}

// Func returns the callable option for key, or nil.
func (x *Options) Func(key string) *value.Func {
	v, _ := x.values[key].(*value.Func)
	return v
}

// IsEventName reports whether key names an event binding: "on" followed by
// an uppercase ASCII letter.
func IsEventName(key string) bool {
	return len(key) > 2 && key[0] == 'o' && key[1] == 'n' && key[2] >= 'A' && key[2] <= 'Z'
}
