// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package class

import (
	"sync"

	"github.com/joeycumines/go-classkit/eventloop"
	"github.com/joeycumines/go-classkit/mixin"
	"github.com/joeycumines/go-classkit/value"
	"github.com/joeycumines/logiface"
)

type (
	// Class is a constructible definition: an own property table, plus an
	// optional parent, for properties missing from the own table.
	//
	// Classes are safe for concurrent use, though concurrent Implement calls
	// race (last write wins).
	Class struct {
		parent  *Class
		runtime *mixin.Runtime
		own     value.Map
		name    string
		mu      sync.RWMutex
		caps    Capability
	}

	// Option configures a Class, see Define and Class.Extend.
	Option func(c *Class)

	// Capability is a set of mixin capabilities, see Class.Include.
	Capability uint8

	noInit struct{}
)

const (
	// CapEvents gives instances an event registry, see Instance.Events.
	CapEvents Capability = 1 << iota
	// CapChain gives instances a chain queue, see Instance.Chain.
	CapChain
	// CapOptions gives instances mergeable options, seeded from the class's
	// "options" property, see Instance.Options.
	CapOptions
)

// NoInit may be passed as the first argument to Class.New, to skip the
// class's initialize method.
var NoInit any = noInit{}

// WithName sets the class name, used in errors and logs.
func WithName(name string) Option {
	return func(c *Class) { c.name = name }
}

// WithCapabilities adds capabilities, see Class.Include.
func WithCapabilities(caps ...Capability) Option {
	return func(c *Class) {
		for _, v := range caps {
			c.caps |= v
		}
	}
}

// WithScheduler sets the scheduler used by instance capabilities, for
// delayed events and chain continuations.
func WithScheduler(scheduler eventloop.Scheduler) Option {
	return func(c *Class) {
		r := c.cloneRuntime()
		r.Scheduler = scheduler
		c.runtime = r
	}
}

// WithLogger sets the logger used by instance capabilities.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return func(c *Class) {
		r := c.cloneRuntime()
		r.Logger = logger
		c.runtime = r
	}
}

// Define builds a class from table. The table is copied; later changes to it
// have no effect on the class.
func Define(table value.Map, opts ...Option) *Class {
	c := &Class{own: value.CloneMap(table)}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	if c.runtime == nil {
		c.runtime = &mixin.Runtime{}
	}
	return c
}

// Extend derives a new class from x. For every key of table, the new class's
// own property is value.Merge of x's (inherited) property and table's, so
// overriding methods may call the overridden ones via value.Call.Super.
// Capabilities, scheduler, and logger are inherited. The receiver, and its
// instances, are not modified.
func (x *Class) Extend(table value.Map, opts ...Option) *Class {
	template := x.Template()
	own := make(value.Map, len(table))
	for k, v := range table {
		own[k] = value.Merge(template.Get(k), v)
	}
	x.mu.RLock()
	c := &Class{
		parent:  x,
		own:     own,
		caps:    x.caps,
		runtime: x.runtime,
	}
	x.mu.RUnlock()
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	return c
}

// Implement overwrites the class's own properties with those of each table,
// in order, without merging. It affects existing instances, for properties
// they do not override.
func (x *Class) Implement(tables ...value.Map) *Class {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, table := range tables {
		for k, v := range table {
			x.own[k] = v
		}
	}
	return x
}

// Include adds capabilities to the class, affecting existing instances
// (capability state is allocated lazily), and derived classes extended
// afterwards.
func (x *Class) Include(caps ...Capability) *Class {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, v := range caps {
		x.caps |= v
	}
	return x
}

// Has reports whether the class has every one of caps, directly or (at the
// time of extension) via its parent.
func (x *Class) Has(caps Capability) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.caps&caps == caps
}

// Lookup returns the named property, from the class's own table, or its
// nearest ancestor's.
func (x *Class) Lookup(name string) (any, bool) {
	for c := x; c != nil; c = c.parent {
		c.mu.RLock()
		v, ok := c.own[name]
		c.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// Parent returns the class this class was extended from, or nil.
func (x *Class) Parent() *Class { return x.parent }

// Name returns the class name, which may be empty.
func (x *Class) Name() string { return x.name }

// Template returns a new instance without calling initialize.
func (x *Class) Template() *Instance {
	return newInstance(x)
}

// New constructs an instance, calling the initialize method (if any) with
// the instance as the receiver, and args as the arguments. If the first arg
// is NoInit, initialize is not called.
//
// If initialize returns a non-nil error, it is returned as a
// *ConstructionError. Panics are not recovered.
func (x *Class) New(args ...any) (*Instance, error) {
	inst := newInstance(x)
	if len(args) != 0 && args[0] == NoInit {
		return inst, nil
	}
	if fn, ok := inst.Get(`initialize`).(*value.Func); ok && fn != nil {
		if err, ok := fn.Call(inst, args...).(error); ok && err != nil {
			return nil, &ConstructionError{Class: x.name, Cause: err}
		}
	}
	return inst, nil
}

// MustNew is like New but panics on error.
func (x *Class) MustNew(args ...any) *Instance {
	inst, err := x.New(args...)
	if err != nil {
		panic(err)
	}
	return inst
}

func (x *Class) cloneRuntime() *mixin.Runtime {
	if x.runtime == nil {
		return &mixin.Runtime{}
	}
	r := *x.runtime
	return &r
}
