// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package mixin implements the capabilities composed into classkit hosts:
// named event listeners ([Events]), a queue of deferred follow-up tasks
// ([Chain]), and mergeable configuration that doubles as declarative event
// bindings ([Options]).
//
// Each capability is an independent struct owning its own state. A host
// exposes them by implementing [Eventable], [Chainable], and/or
// [Configurable], holding the capability as a field.
//
// None of the capabilities are safe for concurrent use. They are intended
// to be used from the goroutine running the [eventloop.Scheduler] they were
// given, which is also where any deferred work they schedule runs.
package mixin
