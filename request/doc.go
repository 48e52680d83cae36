// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package request implements a reusable, event-driven request life cycle,
// over an abstract Transport.
//
// A Request moves between the states Idle, Running, and one of Succeeded,
// Failed, or Cancelled. Outcomes are reported only via events ("onRequest",
// "onSuccess", "onFailure", "onCancel"), and a successful completion advances
// the request's chain. A Request is owned by the goroutine of its scheduler:
// every method, and every Transport callback, must run there.
//
// [Ajax] and [Remote] are specialisations, respectively binding a url with
// form data, and exchanging JSON payloads via the codec package.
//
// [HTTPClient] provides the HTTP Transport implementation.
package request
