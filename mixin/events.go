// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package mixin

import (
	"time"

	"github.com/joeycumines/go-classkit/value"
)

// Events maps event names to ordered listener lists.
//
// Listeners are *value.Func, compared by identity: registering the same Func
// twice under one name has no effect, and removal drops every occurrence.
// Listeners are invoked with the host as their receiver (value.Call.This).
//
// Usage:
//
//	events := mixin.NewEvents(host, &mixin.Runtime{Scheduler: loop})
//	listener := value.F(func(c *value.Call) any {
//	    fmt.Println("complete:", c.Arg(0))
//	    return nil
//	})
//	events.Add("onComplete", listener)
//	events.Fire("onComplete", "ok")
//	events.Remove("onComplete", listener)
type Events struct {
	host      any
	runtime   *Runtime
	listeners map[string][]*value.Func
}

// NewEvents initializes an Events for host. The runtime may be nil, in which
// case FireDelay will only log.
func NewEvents(host any, runtime *Runtime) *Events {
	return &Events{
		host:      host,
		runtime:   runtime,
		listeners: make(map[string][]*value.Func),
	}
}

// Add appends fn to name's listeners, unless fn is nil, value.Empty, or
// already registered under name.
func (x *Events) Add(name string, fn *value.Func) *Events {
	if fn == nil || fn == value.Empty {
		return x
	}
	for _, v := range x.listeners[name] {
		if v == fn {
			return x
		}
	}
	x.listeners[name] = append(x.listeners[name], fn)
	return x
}

// AddAll calls Add for each entry of listeners. The registration order across
// different names is unspecified.
func (x *Events) AddAll(listeners map[string]*value.Func) *Events {
	for name, fn := range listeners {
		x.Add(name, fn)
	}
	return x
}

// Fire synchronously invokes name's listeners, in registration order.
//
// The args are passed as follows: nil as no arguments, a []any spread as
// positional arguments, and any other value as a single argument.
//
// Listener panics are not recovered, and will prevent later listeners from
// being invoked.
func (x *Events) Fire(name string, args any) *Events {
	listeners := x.listeners[name]
	if len(listeners) == 0 {
		return x
	}
	// listeners may modify the registry
	listeners = append([]*value.Func(nil), listeners...)
	positional := spread(args)
	for _, fn := range listeners {
		fn.Call(x.host, positional...)
	}
	return x
}

// FireDelay schedules each of name's listeners independently, to run after
// delay. The relative order of the listeners is not guaranteed. Scheduling
// failures are logged.
func (x *Events) FireDelay(name string, args any, delay time.Duration) *Events {
	listeners := x.listeners[name]
	if len(listeners) == 0 {
		return x
	}
	s := x.runtime.scheduler()
	if s == nil {
		x.runtime.logger().Err().
			Str(`event`, name).
			Err(ErrNoScheduler).
			Log(`mixin: failed to schedule delayed event`)
		return x
	}
	positional := spread(args)
	for _, fn := range listeners {
		if _, err := s.ScheduleTimer(delay, func() { fn.Call(x.host, positional...) }); err != nil {
			x.runtime.logger().Err().
				Str(`event`, name).
				Err(err).
				Log(`mixin: failed to schedule delayed event`)
		}
	}
	return x
}

// Remove removes every occurrence of fn from name's listeners.
func (x *Events) Remove(name string, fn *value.Func) *Events {
	listeners, ok := x.listeners[name]
	if !ok {
		return x
	}
	kept := make([]*value.Func, 0, len(listeners))
	for _, v := range listeners {
		if v != fn {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(x.listeners, name)
	} else {
		x.listeners[name] = kept
	}
	return x
}

// RemoveAll removes all of name's listeners, or every listener if name is
// empty.
func (x *Events) RemoveAll(name string) *Events {
	if name == `` {
		clear(x.listeners)
	} else {
		delete(x.listeners, name)
	}
	return x
}

// Has reports whether name has at least one listener.
func (x *Events) Has(name string) bool {
	return len(x.listeners[name]) != 0
}

// Count returns the number of listeners registered under name.
func (x *Events) Count(name string) int {
	return len(x.listeners[name])
}

func spread(args any) []any {
	switch args := args.(type) {
	case nil:
		return nil
	case []any:
		return args
	default:
		return []any{args}
	}
}
