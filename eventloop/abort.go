// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"fmt"
	"sync"
)

// AbortSignal reports whether an operation has been aborted, via its
// AbortController, and runs registered handlers exactly once on abort.
//
// Thread Safety:
// AbortSignal is safe for concurrent use. Handlers run on the goroutine that
// called AbortController.Abort (or OnAbort, if already aborted).
type AbortSignal struct { //nolint:govet // betteralign:ignore
	handlers []func(reason any)
	reason   any
	mu       sync.RWMutex
	aborted  bool
}

// AbortController aborts its Signal.
//
// Usage:
//
//	controller := eventloop.NewAbortController()
//	controller.Signal().OnAbort(func(reason any) {
//	    cancel()
//	})
//	controller.Abort(nil)
type AbortController struct {
	signal *AbortSignal
}

// AbortError is the default abort reason, and the error returned by
// AbortSignal.ThrowIfAborted.
type AbortError struct {
	Reason any
}

// NewAbortController creates a new, unaborted controller.
func NewAbortController() *AbortController {
	return &AbortController{signal: &AbortSignal{}}
}

// Signal returns the controller's signal.
func (c *AbortController) Signal() *AbortSignal {
	return c.signal
}

// Abort aborts the signal. A nil reason is replaced with an *AbortError.
// Subsequent calls have no effect.
func (c *AbortController) Abort(reason any) {
	if reason == nil {
		reason = &AbortError{Reason: "Aborted"}
	}
	c.signal.abort(reason)
}

// Aborted reports whether the signal has been aborted.
func (s *AbortSignal) Aborted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aborted
}

// Reason returns the abort reason, or nil.
func (s *AbortSignal) Reason() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reason
}

// OnAbort registers a handler. If the signal is already aborted, the handler
// is invoked immediately.
func (s *AbortSignal) OnAbort(handler func(reason any)) {
	if handler == nil {
		return
	}

	s.mu.Lock()
	if s.aborted {
		reason := s.reason
		s.mu.Unlock()
		handler(reason)
		return
	}

	s.handlers = append(s.handlers, handler)
	s.mu.Unlock()
}

// ThrowIfAborted returns an *AbortError if the signal has been aborted.
func (s *AbortSignal) ThrowIfAborted() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.aborted {
		if err, ok := s.reason.(*AbortError); ok {
			return err
		}
		return &AbortError{Reason: s.reason}
	}
	return nil
}

func (s *AbortSignal) abort(reason any) {
	s.mu.Lock()

	if s.aborted {
		s.mu.Unlock()
		return
	}

	s.aborted = true
	s.reason = reason

	handlers := s.handlers
	s.handlers = nil
	s.mu.Unlock()

	for _, handler := range handlers {
		handler(reason)
	}
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	if e.Reason == nil {
		return "AbortError: The operation was aborted"
	}
	return fmt.Sprintf("AbortError: %v", e.Reason)
}

// Is matches any *AbortError.
func (e *AbortError) Is(target error) bool {
	_, ok := target.(*AbortError)
	return ok
}

// Unwrap returns the reason, if it is an error.
func (e *AbortError) Unwrap() error {
	if err, ok := e.Reason.(error); ok {
		if _, self := err.(*AbortError); !self {
			return err
		}
	}
	return nil
}
