// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package class

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-classkit/mixin"
	"github.com/joeycumines/go-classkit/value"
)

// Instance is a value constructed by a Class. It has its own fields, which
// shadow the class's properties, and lazily allocated capability state.
//
// Instances are not safe for concurrent use.
type Instance struct {
	value.InstanceMarker
	class   *Class
	fields  value.Map
	events  *mixin.Events
	chain   *mixin.Chain
	options *mixin.Options
}

var (
	_ value.Instance     = (*Instance)(nil)
	_ mixin.Eventable    = (*Instance)(nil)
	_ mixin.Chainable    = (*Instance)(nil)
	_ mixin.Configurable = (*Instance)(nil)
	_ fmt.Stringer       = (*Instance)(nil)
)

func newInstance(c *Class) *Instance {
	return &Instance{class: c, fields: make(value.Map)}
}

// Class returns the instance's class.
func (x *Instance) Class() *Class { return x.class }

// IsA reports whether c is the instance's class, or one of its ancestors.
func (x *Instance) IsA(c *Class) bool {
	for v := x.class; v != nil; v = v.parent {
		if v == c {
			return true
		}
	}
	return false
}

// Fields returns the instance's own fields (not class properties).
func (x *Instance) Fields() value.Map { return x.fields }

// Get returns the named field, falling back to the class property. If the
// instance has Options, "options" resolves to their current values.
func (x *Instance) Get(name string) any {
	if v, ok := x.fields[name]; ok {
		return v
	}
	if name == `options` && x.options != nil {
		return x.options.Values()
	}
	v, _ := x.class.Lookup(name)
	return v
}

// Set assigns an instance field.
func (x *Instance) Set(name string, v any) *Instance {
	x.fields[name] = v
	return x
}

// Call invokes the named method with the instance as the receiver.
//
// Methods are resolved from instance fields, then class properties, then
// the built-in methods of the class's capabilities: addEvent, removeEvent,
// fireEvent, chain, callChain, clearChain, and setOptions.
func (x *Instance) Call(name string, args ...any) (any, error) {
	v := x.Get(name)
	if v == nil {
		if method, ok := x.builtin(name); ok {
			return method(args)
		}
		return nil, fmt.Errorf(`%w: %s`, ErrNoSuchMethod, name)
	}
	fn, ok := v.(*value.Func)
	if !ok || fn == nil {
		return nil, fmt.Errorf(`%w: %s (%s)`, ErrNotCallable, name, value.Classify(v))
	}
	return fn.Call(x, args...), nil
}

// String returns a short description, including the class name.
func (x *Instance) String() string {
	if x.class.name == `` {
		return `class.Instance`
	}
	return `class.Instance(` + x.class.name + `)`
}

// Events returns the instance's event registry, or nil if the class does not
// have CapEvents.
func (x *Instance) Events() *mixin.Events {
	if x.events == nil {
		if !x.class.Has(CapEvents) {
			return nil
		}
		x.events = mixin.NewEvents(x, x.class.runtime)
	}
	return x.events
}

// Chain returns the instance's chain queue, or nil if the class does not
// have CapChain.
func (x *Instance) Chain() *mixin.Chain {
	if x.chain == nil {
		if !x.class.Has(CapChain) {
			return nil
		}
		x.chain = mixin.NewChain(x.class.runtime)
	}
	return x.chain
}

// Options returns the instance's options, or nil if the class does not have
// CapOptions. They are seeded with a copy of the class's "options" property.
func (x *Instance) Options() *mixin.Options {
	if x.options == nil {
		if !x.class.Has(CapOptions) {
			return nil
		}
		defaults, _ := x.Get(`options`).(value.Map)
		x.options = mixin.NewOptions(x, defaults)
	}
	return x.options
}

func (x *Instance) builtin(name string) (func(args []any) (any, error), bool) {
	switch name {
	case `addEvent`, `removeEvent`, `fireEvent`:
		events := x.Events()
		if events == nil {
			return nil, false
		}
		return func(args []any) (any, error) {
			event, ok := argAt(args, 0).(string)
			if !ok {
				return nil, fmt.Errorf(`%w: %s: event name must be text`, ErrInvalidArgument, name)
			}
			switch name {
			case `fireEvent`:
				if delay, ok := value.Float64(argAt(args, 2)); ok {
					events.FireDelay(event, argAt(args, 1), time.Duration(delay*float64(time.Millisecond)))
				} else {
					events.Fire(event, argAt(args, 1))
				}
				return x, nil
			}
			fn, ok := argAt(args, 1).(*value.Func)
			if !ok {
				return nil, fmt.Errorf(`%w: %s: listener must be callable`, ErrInvalidArgument, name)
			}
			if name == `addEvent` {
				events.Add(event, fn)
			} else {
				events.Remove(event, fn)
			}
			return x, nil
		}, true

	case `chain`, `callChain`, `clearChain`:
		chain := x.Chain()
		if chain == nil {
			return nil, false
		}
		return func(args []any) (any, error) {
			switch name {
			case `callChain`:
				return nil, chain.CallChain()
			case `clearChain`:
				chain.ClearChain()
				return x, nil
			}
			for i, arg := range args {
				fn, ok := arg.(*value.Func)
				if !ok || fn == nil {
					return nil, fmt.Errorf(`%w: chain: argument %d must be callable`, ErrInvalidArgument, i)
				}
				chain.Chain(func() { fn.Call(x) })
			}
			return x, nil
		}, true

	case `setOptions`:
		options := x.Options()
		if options == nil {
			return nil, false
		}
		return func(args []any) (any, error) {
			overlays := make([]value.Map, 0, len(args))
			for i, arg := range args {
				switch arg := arg.(type) {
				case nil:
				case value.Map:
					overlays = append(overlays, arg)
				default:
					return nil, fmt.Errorf(`%w: setOptions: argument %d must be a mapping-object`, ErrInvalidArgument, i)
				}
			}
			options.SetOptions(overlays...)
			return x, nil
		}, true
	}
	return nil, false
}

func argAt(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}
