// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package value models the dynamic values the rest of classkit operates on:
// the closed set of semantic kinds ([Kind], decided once by [Classify]), the
// callable wrapper ([Func]) that carries a definition-time super reference,
// and the deep merge ([Merge]) used for both configuration and class
// property composition.
//
// Values are plain Go values. Mapping-objects are map[string]any ([Map]),
// arrays are []any ([Array]), text is string, numeric is any integer or float
// type, boolean is bool, callables are *[Func], patterns are
// *regexp.Regexp, and class instances are any value implementing [Instance],
// which can only be satisfied by embedding [InstanceMarker].
//
// # Super calls
//
// When [Merge] combines two callables, the result runs the overlay's body
// with [Call.Super] bound to the base. The binding happens at merge time, so
// a chain of overrides forms a fixed, linear list:
//
//	base := value.F(func(c *value.Call) any { return 1 })
//	derived := value.F(func(c *value.Call) any { return 2 + c.Super().(int) })
//	merged := value.Merge(base, derived).(*value.Func)
//	merged.Call(nil) // 3
package value
