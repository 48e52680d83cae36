// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package class

import (
	"errors"
)

var (
	// ErrNoSuchMethod is returned by Instance.Call for undefined methods.
	ErrNoSuchMethod = errors.New(`class: no such method`)

	// ErrNotCallable is returned by Instance.Call for properties that are
	// not callable.
	ErrNotCallable = errors.New(`class: property is not callable`)

	// ErrInvalidArgument is returned by Instance.Call for built-in methods,
	// given arguments of the wrong kind.
	ErrInvalidArgument = errors.New(`class: invalid argument`)
)

// ConstructionError wraps an error returned by a class's initialize method.
type ConstructionError struct {
	Cause error
	Class string
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	if e.Class == `` {
		return `class: initialize: ` + e.Cause.Error()
	}
	return `class: ` + e.Class + `: initialize: ` + e.Cause.Error()
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *ConstructionError) Unwrap() error {
	return e.Cause
}
