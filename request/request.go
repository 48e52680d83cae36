// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package request

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joeycumines/go-classkit/eventloop"
	"github.com/joeycumines/go-classkit/mixin"
	"github.com/joeycumines/go-classkit/value"
	"github.com/joeycumines/logiface"
)

type (
	// Config models the collaborators of a Request, for New.
	Config struct {
		// Scheduler runs chain continuations and delayed events, and is the
		// goroutine transports deliver completions on. Required.
		Scheduler eventloop.Scheduler

		// Transport creates transport handles, one initially, and one
		// after each cancellation. Required.
		Transport TransportFactory

		// Logger receives debug logs for state changes, if non-nil.
		Logger *logiface.Logger[logiface.Event]

		// Metrics records exchange outcomes, if non-nil.
		Metrics *Metrics
	}

	// Request is a reusable request, with at most one exchange in flight.
	//
	// Options (see DefaultOptions) are held by the Options capability, and
	// option keys such as "onSuccess" bind event listeners. Listeners are
	// called with the Request as their receiver:
	//   - onRequest(), after the exchange is opened, prior to sending
	//   - onSuccess(text string, response *Response), followed by CallChain
	//   - onFailure(handle Transport), see also Request.Err
	//   - onCancel()
	//
	// Instances must be initialized using the New factory.
	Request struct {
		// betteralign:ignore
		runtime   *mixin.Runtime
		events    *mixin.Events
		chain     *mixin.Chain
		options   *mixin.Options
		logger    *logiface.Logger[logiface.Event]
		metrics   *Metrics
		factory   TransportFactory
		transport Transport
		exchange  *exchange
		response  *Response
		err       error
		headers   map[string]string
		state     State
		id        uuid.UUID
	}

	// exchange models a single Send, and is compared by identity to detect
	// stale completions.
	exchange struct {
		controller *eventloop.AbortController
		transport  Transport
		started    time.Time
		method     string
	}
)

// DefaultOptions returns the options every Request starts with:
//
//	method      "post", any verb other than "get" or "post" is tunnelled
//	async       true
//	urlEncoded  true, sets a form Content-Type for post requests
//	encoding    "utf-8", the Content-Type charset
//	autoCancel  false, if true Send cancels any running exchange
//	headers     {}, applied over headers set via SetHeader
//	isSuccess   callable(status) bool, default 200 <= status < 300
//	onRequest, onSuccess, onFailure, onCancel
//	            value.Empty
//
// An "initialize" callable option, if provided, is called with the Request
// as its receiver, as the last step of New.
func DefaultOptions() value.Map {
	return value.Map{
		`method`:     `post`,
		`async`:      true,
		`urlEncoded`: true,
		`encoding`:   `utf-8`,
		`autoCancel`: false,
		`headers`:    value.Map{},
		`isSuccess`:  isSuccess,
		`onRequest`:  value.Empty,
		`onSuccess`:  value.Empty,
		`onFailure`:  value.Empty,
		`onCancel`:   value.Empty,
	}
}

var isSuccess = value.F(func(c *value.Call) any {
	status, _ := value.Float64(c.Arg(0))
	return status >= 200 && status < 300
})

// New initializes a Request, applying options over DefaultOptions. A panic
// will occur if config is nil, or is missing a required field.
func New(config *Config, options ...value.Map) *Request {
	return newRequest(config, nil, nil, options)
}

// newRequest is New, with additional defaults (applied over DefaultOptions),
// and a setup hook, called prior to applying options.
func newRequest(config *Config, defaults value.Map, setup func(x *Request), options []value.Map) *Request {
	if config == nil {
		panic(`request: nil config`)
	}
	if config.Scheduler == nil {
		panic(`request: nil scheduler`)
	}
	if config.Transport == nil {
		panic(`request: nil transport factory`)
	}

	x := &Request{
		id:      uuid.New(),
		metrics: config.Metrics,
		factory: config.Transport,
		headers: make(map[string]string),
	}
	x.logger = config.Logger.Clone().
		Str(`request_id`, x.id.String()).
		Logger()
	x.runtime = &mixin.Runtime{Scheduler: config.Scheduler, Logger: x.logger}
	x.events = mixin.NewEvents(x, x.runtime)
	x.chain = mixin.NewChain(x.runtime)
	x.options = mixin.NewOptions(x, value.MergeAll(DefaultOptions(), defaults))
	x.transport = x.newTransport()

	if setup != nil {
		setup(x)
	}
	x.options.SetOptions(options...)

	if x.options.Bool(`urlEncoded`, true) {
		if method, _ := x.method(); method == `POST` {
			contentType := `application/x-www-form-urlencoded`
			if encoding := x.options.String(`encoding`, ``); encoding != `` {
				contentType += `; charset=` + encoding
			}
			x.SetHeader(`Content-Type`, contentType)
		}
	}

	if fn := x.options.Func(`initialize`); fn != nil {
		fn.Call(x)
	}

	return x
}

func (x *Request) newTransport() Transport {
	t := x.factory()
	if t == nil {
		panic(`request: transport factory returned nil`)
	}
	return t
}

// Events returns the Events capability.
func (x *Request) Events() *mixin.Events { return x.events }

// Chain returns the Chain capability, advanced after each success.
func (x *Request) Chain() *mixin.Chain { return x.chain }

// Options returns the Options capability.
func (x *Request) Options() *mixin.Options { return x.options }

// SetOptions is an alias of Options().SetOptions.
func (x *Request) SetOptions(overlays ...value.Map) *Request {
	x.options.SetOptions(overlays...)
	return x
}

// ID returns the unique identifier of the Request, used to correlate logs.
func (x *Request) ID() uuid.UUID { return x.id }

// State returns the current state.
func (x *Request) State() State { return x.state }

// Running reports whether an exchange is in flight.
func (x *Request) Running() bool { return x.state == StateRunning }

// Transport returns the current transport handle.
func (x *Request) Transport() Transport { return x.transport }

// Response returns the response of the most recent successful exchange, or
// nil.
func (x *Request) Response() *Response { return x.response }

// Err returns the *TransportError of the most recent exchange, if it failed.
func (x *Request) Err() error { return x.err }

// Header returns the named header of the most recent successful response, or
// an empty string.
func (x *Request) Header(name string) string {
	if x.response == nil {
		return ``
	}
	return x.response.Header.Get(name)
}

// SetHeader sets a default request header. Headers from the "headers"
// option, and those passed to Send, take precedence.
func (x *Request) SetHeader(name, value string) *Request {
	x.headers[http.CanonicalHeaderKey(name)] = value
	return x
}

// Send starts an exchange, sending data to url.
//
// If a request is already running, Send is a no-op, unless the "autoCancel"
// option is set, in which case the running request is cancelled first.
//
// The data is converted using EncodeData. For get requests it is appended to
// the url, otherwise it is the body. Methods other than get and post are
// sent as post, with a leading "_method=<method>" body parameter. The
// request headers are rebuilt on every call: SetHeader values, then the
// "headers" option, then the given headers, later values winning.
func (x *Request) Send(url string, data any, headers ...map[string]string) *Request {
	if x.options.Bool(`autoCancel`, false) {
		x.Cancel()
	} else if x.state == StateRunning {
		x.logger.Debug().
			Log(`request: send ignored, already running`)
		return x
	}

	method, tunnel := x.method()
	body := EncodeData(data)
	if tunnel != `` {
		if body != `` {
			body = tunnel + `&` + body
		} else {
			body = tunnel
		}
	}
	if method == `GET` && body != `` {
		url = appendQuery(url, body)
		body = ``
	}

	ex := &exchange{
		controller: eventloop.NewAbortController(),
		transport:  x.transport,
		started:    time.Now(),
		method:     method,
	}
	ex.controller.Signal().OnAbort(func(any) { ex.transport.Abort() })
	x.exchange = ex
	x.err = nil
	x.setState(StateRunning)
	x.metrics.start()

	if err := ex.transport.Open(method, url, x.options.Bool(`async`, true)); err != nil {
		x.complete(ex, Completion{Err: err})
		return x
	}
	h := x.requestHeaders(headers)
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		ex.transport.SetHeader(k, h[k])
	}

	x.events.Fire(`onRequest`, nil)
	if x.exchange != ex {
		// a listener cancelled or restarted the request
		return x
	}

	if err := ex.transport.Send(body, func(c Completion) { x.complete(ex, c) }); err != nil {
		x.complete(ex, Completion{Err: err})
	}

	return x
}

// Cancel aborts the running exchange, replacing the transport handle, then
// fires "onCancel". It is a no-op if no request is running. Any completion
// signal from the aborted exchange is ignored.
func (x *Request) Cancel() *Request {
	if x.state != StateRunning {
		return x
	}
	ex := x.exchange
	x.exchange = nil
	ex.controller.Abort(nil)
	x.transport = x.newTransport()
	x.finish(ex, StateCancelled)
	x.events.Fire(`onCancel`, nil)
	return x
}

// complete handles the completion signal of ex, ignoring it if ex is no
// longer the current exchange.
func (x *Request) complete(ex *exchange, c Completion) {
	if x.exchange != ex || x.state != StateRunning || ex.controller.Signal().Aborted() {
		x.logger.Debug().
			Int(`status`, c.Status).
			Log(`request: dropped stale completion`)
		return
	}
	x.exchange = nil

	status := c.Status
	if c.Err != nil {
		status = 0
	}

	if x.isSuccess(status) {
		x.response = &Response{
			Header: c.Header,
			Text:   c.Text,
			Status: c.Status,
		}
		x.finish(ex, StateSucceeded)
		x.events.Fire(`onSuccess`, []any{x.response.Text, x.response})
		if err := x.chain.CallChain(); err != nil {
			x.logger.Warning().
				Err(err).
				Log(`request: failed to advance chain`)
		}
		return
	}

	x.err = &TransportError{Status: status, Err: c.Err}
	x.finish(ex, StateFailed)
	x.events.Fire(`onFailure`, []any{ex.transport})
}

func (x *Request) finish(ex *exchange, state State) {
	x.setState(state)
	x.metrics.end(ex.method, state, time.Since(ex.started))
}

func (x *Request) setState(state State) {
	x.logger.Debug().
		Str(`from`, x.state.String()).
		Str(`to`, state.String()).
		Log(`request: state change`)
	x.state = state
}

func (x *Request) isSuccess(status int) bool {
	fn := x.options.Func(`isSuccess`)
	if fn == nil {
		return status >= 200 && status < 300
	}
	switch v := fn.Call(x, status).(type) {
	case bool:
		return v
	default:
		return value.Check(v)
	}
}

// method returns the upper case method to send, and, if the configured
// method must be tunnelled, the body parameter to do so.
func (x *Request) method() (method, tunnel string) {
	method = strings.ToLower(x.options.String(`method`, `post`))
	switch method {
	case `get`, `post`:
		return strings.ToUpper(method), ``
	default:
		return `POST`, `_method=` + method
	}
}

func (x *Request) requestHeaders(overrides []map[string]string) map[string]string {
	h := make(map[string]string, len(x.headers))
	for k, v := range x.headers {
		h[k] = v
	}
	for k, v := range x.options.Map(`headers`) {
		if value.Defined(v) {
			h[http.CanonicalHeaderKey(k)] = queryValue(v)
		}
	}
	for _, o := range overrides {
		for k, v := range o {
			h[http.CanonicalHeaderKey(k)] = v
		}
	}
	return h
}
