// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"errors"
	"fmt"
)

var (
	// ErrLoopAlreadyRunning is returned when Run is called on a loop that is
	// already running.
	ErrLoopAlreadyRunning = errors.New("eventloop: loop is already running")

	// ErrLoopTerminated is returned when operations are attempted on a loop
	// that has been shut down.
	ErrLoopTerminated = errors.New("eventloop: loop has been terminated")

	// ErrTimerNotFound is returned by CancelTimer for unknown, fired, or
	// already canceled timers.
	ErrTimerNotFound = errors.New("eventloop: timer not found")
)

// TypeError represents an invalid argument, e.g. a nil callback.
type TypeError struct {
	Cause   error
	Message string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	if e.Message == "" {
		return "type error"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *TypeError) Unwrap() error {
	return e.Cause
}

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("eventloop: task panicked: %v", e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

var errNilCallback = &TypeError{Message: "eventloop: nil callback"}
