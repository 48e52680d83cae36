// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package mixin

import (
	"errors"

	"github.com/joeycumines/go-classkit/eventloop"
	"github.com/joeycumines/logiface"
)

type (
	// Eventable is implemented by hosts exposing the Events capability. A nil
	// return indicates the host does not (currently) support events.
	Eventable interface {
		Events() *Events
	}

	// Chainable is implemented by hosts exposing the Chain capability.
	Chainable interface {
		Chain() *Chain
	}

	// Configurable is implemented by hosts exposing the Options capability.
	Configurable interface {
		Options() *Options
	}

	// Runtime models the collaborators shared by the capabilities of a host.
	// A nil Runtime, or nil fields, are valid: deferred operations fail with
	// ErrNoScheduler, and logging is disabled.
	Runtime struct {
		// Scheduler runs deferred listeners and chain continuations.
		Scheduler eventloop.Scheduler

		// Logger receives scheduling failures that cannot be returned.
		Logger *logiface.Logger[logiface.Event]
	}
)

// ErrNoScheduler is returned by deferred operations if the Runtime has no
// Scheduler.
var ErrNoScheduler = errors.New(`mixin: no scheduler`)

func (x *Runtime) scheduler() eventloop.Scheduler {
	if x == nil {
		return nil
	}
	return x.Scheduler
}

func (x *Runtime) logger() *logiface.Logger[logiface.Event] {
	if x == nil {
		return nil
	}
	return x.Logger
}
