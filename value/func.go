// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package value

import (
	"fmt"
)

type (
	// Func is a callable value. Funcs are compared by identity (pointer),
	// which is what event listener deduplication and removal rely on.
	//
	// A Func produced by Merge carries a super reference to the Func it
	// overrides, see Call.Super.
	Func struct {
		fn    func(c *Call) any
		super *Func
		this  any
		args  []any
		bound bool
	}

	// Call models a single invocation of a Func.
	Call struct {
		// This is the receiver, e.g. the class instance or event host.
		This any
		// Args are the positional arguments.
		Args  []any
		super *Func
	}

	// PanicError wraps a value recovered by Func.Attempt.
	PanicError struct {
		Value any
	}
)

var (
	// Empty is the designated no-op callable, used as a safe default for
	// event handler options. It is never registered as a listener.
	Empty = NewFunc(func(*Call) any { return nil })
)

// NewFunc wraps fn as a Func. A panic will occur if fn is nil.
func NewFunc(fn func(c *Call) any) *Func {
	if fn == nil {
		panic(`value: nil func`)
	}
	return &Func{fn: fn}
}

// F is an alias of NewFunc.
func F(fn func(c *Call) any) *Func { return NewFunc(fn) }

// Call invokes the Func with the given receiver and arguments. A Func
// produced by Bind ignores the provided receiver, and prepends its bound
// arguments.
func (x *Func) Call(this any, args ...any) any {
	if x.bound {
		this = x.this
	}
	if len(x.args) != 0 {
		args = append(append(make([]any, 0, len(x.args)+len(args)), x.args...), args...)
	}
	return x.fn(&Call{This: this, Args: args, super: x.super})
}

// HasSuper reports whether the Func overrides another Func.
func (x *Func) HasSuper() bool { return x.super != nil }

// Bind returns a new Func with a fixed receiver and leading arguments.
func (x *Func) Bind(this any, args ...any) *Func {
	f := x.clone()
	f.this = this
	f.bound = true
	f.args = append(append([]any(nil), x.args...), args...)
	return f
}

// Pass returns a new Func with fixed leading arguments, leaving the receiver
// as provided at call time.
func (x *Func) Pass(args ...any) *Func {
	f := x.clone()
	f.args = append(append([]any(nil), x.args...), args...)
	return f
}

// Attempt invokes the Func, recovering any panic as a *PanicError.
func (x *Func) Attempt(this any, args ...any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &PanicError{Value: r}
		}
	}()
	return x.Call(this, args...), nil
}

func (x *Func) clone() *Func {
	f := *x
	return &f
}

// wrap returns a new Func running x's body, with base as its super.
func (x *Func) wrap(base *Func) *Func {
	f := x.clone()
	f.super = base
	return f
}

// Super invokes the overridden Func with the same receiver and arguments,
// returning nil if there is none.
func (x *Call) Super() any {
	if x.super == nil {
		return nil
	}
	return x.super.Call(x.This, x.Args...)
}

// SuperWith invokes the overridden Func with the same receiver and the
// provided arguments, returning nil if there is none.
func (x *Call) SuperWith(args ...any) any {
	if x.super == nil {
		return nil
	}
	return x.super.Call(x.This, args...)
}

// Arg returns the argument at index i, or nil if out of range.
func (x *Call) Arg(i int) any {
	if i < 0 || i >= len(x.Args) {
		return nil
	}
	return x.Args[i]
}

func (e *PanicError) Error() string {
	return fmt.Sprintf(`value: func panicked: %v`, e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
