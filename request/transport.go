// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package request

import (
	"fmt"
	"net/http"
)

type (
	// Transport is a transport handle, performing one exchange at a time.
	//
	// Every method is called on the scheduler goroutine. A Request calls
	// Open, then SetHeader (any number of times), then Send. Abort may be
	// called at any point after Open, and the handle is never reused after
	// it is aborted.
	Transport interface {
		// Open prepares an exchange. The method is upper case.
		Open(method, url string, async bool) error

		// SetHeader sets a request header for the prepared exchange.
		SetHeader(name, value string)

		// Send starts the exchange. An empty body means no body.
		//
		// The done callback must be called exactly once, unless an error is
		// returned, or the exchange is aborted (in which case it may or may
		// not be called). It must be called either on the scheduler
		// goroutine, after Send returns, or (if the exchange is synchronous)
		// before Send returns.
		Send(body string, done func(c Completion)) error

		// Abort stops the exchange.
		Abort()
	}

	// TransportFactory creates transport handles.
	TransportFactory func() Transport

	// Completion is the completion signal of an exchange.
	Completion struct {
		// Header contains the response headers, if any.
		Header http.Header
		// Err is set if the exchange failed without a response.
		Err error
		// Text is the response body.
		Text string
		// Status is the response status code, 0 if Err is set.
		Status int
	}

	// Response models the response of a successful exchange.
	Response struct {
		Header http.Header
		Text   string
		Status int
	}

	// TransportError describes a failed exchange.
	TransportError struct {
		// Err is the transport error, if there was no response.
		Err error
		// Status is the response status code.
		Status int
	}
)

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request: transport: %v", e.Err)
	}
	return fmt.Sprintf("request: unsuccessful status: %d", e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
