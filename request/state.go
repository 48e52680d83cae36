// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package request

// State is the life cycle state of a Request.
type State int

const (
	// StateIdle is the initial state, prior to the first Send.
	StateIdle State = iota
	// StateRunning indicates an exchange is in flight.
	StateRunning
	// StateSucceeded indicates the last exchange was classified as a
	// success.
	StateSucceeded
	// StateFailed indicates the last exchange was classified as a failure.
	StateFailed
	// StateCancelled indicates the last exchange was cancelled.
	StateCancelled
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
