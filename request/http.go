// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package request

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-classkit/eventloop"
	"github.com/joeycumines/logiface"
	"golang.org/x/time/rate"
)

var (
	// ErrNotOpen is returned by HTTPTransport.Send if Open was not called.
	ErrNotOpen = errors.New(`request: transport not open`)

	// ErrAborted is returned by HTTPTransport.Open after Abort.
	ErrAborted = errors.New(`request: transport aborted`)
)

type (
	// HTTPClient performs HTTP exchanges for HTTPTransport handles, sharing
	// connections, rate limits, and retry policy between them.
	//
	// Instances must be initialized using the NewHTTPClient factory.
	HTTPClient struct {
		resty     *resty.Client
		limiter   *rate.Limiter
		hosts     *catrate.Limiter
		scheduler eventloop.Scheduler
		logger    *logiface.Logger[logiface.Event]
	}

	// HTTPTransport is the HTTP Transport, see HTTPClient.Transport.
	//
	// Asynchronous exchanges run on their own goroutine, and complete via
	// the client's scheduler. Synchronous exchanges block Send, which calls
	// done before returning.
	HTTPTransport struct {
		client  *HTTPClient
		header  http.Header
		cancel  context.CancelFunc
		method  string
		url     string
		async   bool
		opened  bool
		aborted bool
	}
)

// NewHTTPClient initializes an HTTPClient, completing exchanges via
// scheduler. The config and logger may be nil. A panic will occur if
// scheduler is nil, or the config is invalid, see HTTPConfig.Validate.
func NewHTTPClient(scheduler eventloop.Scheduler, config *HTTPConfig, logger *logiface.Logger[logiface.Event]) *HTTPClient {
	if scheduler == nil {
		panic(`request: nil scheduler`)
	}
	var cfg HTTPConfig
	if config != nil {
		cfg = *config
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == `` {
		cfg.UserAgent = `classkit`
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = cfg.RetryWaitMax
	}
	retryClient.Logger = nil
	// the final response is classified by the Request, not retryablehttp
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetHeader(`User-Agent`, cfg.UserAgent)
	if cfg.Timeout > 0 {
		restyClient.SetTimeout(cfg.Timeout)
	}

	x := &HTTPClient{
		resty:     restyClient,
		limiter:   rate.NewLimiter(rate.Inf, 0),
		scheduler: scheduler,
		logger:    logger,
	}
	if cfg.Rate > 0 {
		x.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)
	}
	if len(cfg.HostRates) != 0 {
		x.hosts = catrate.NewLimiter(cfg.HostRates)
	}
	return x
}

// Transport returns a new transport handle, implementing TransportFactory.
func (x *HTTPClient) Transport() Transport {
	return &HTTPTransport{client: x, header: make(http.Header)}
}

func (x *HTTPClient) do(ctx context.Context, method, rawURL string, header http.Header, body string) Completion {
	start := time.Now()
	c := x.exchange(ctx, method, rawURL, header, body)
	x.logger.Debug().
		Str(`method`, method).
		Str(`url`, rawURL).
		Int(`status`, c.Status).
		Call(func(b *logiface.Builder[logiface.Event]) {
			if c.Err != nil {
				b.Err(c.Err)
			}
		}).
		Dur(`elapsed`, time.Since(start)).
		Log(`request: http exchange`)
	return c
}

func (x *HTTPClient) exchange(ctx context.Context, method, rawURL string, header http.Header, body string) Completion {
	if err := x.wait(ctx, rawURL); err != nil {
		return Completion{Err: err}
	}
	req := x.resty.R().SetContext(ctx)
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if body != `` {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, rawURL)
	if err != nil {
		return Completion{Err: err}
	}
	return Completion{
		Header: resp.Header(),
		Text:   resp.String(),
		Status: resp.StatusCode(),
	}
}

// wait blocks until both the global and per-host rate limits allow an
// exchange with rawURL.
func (x *HTTPClient) wait(ctx context.Context, rawURL string) error {
	if err := x.limiter.Wait(ctx); err != nil {
		return err
	}
	if x.hosts == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	for {
		next, ok := x.hosts.Allow(u.Host)
		if ok {
			return nil
		}
		timer := time.NewTimer(max(time.Until(next), time.Millisecond))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (x *HTTPTransport) Open(method, rawURL string, async bool) error {
	if x.aborted {
		return ErrAborted
	}
	if _, err := url.Parse(rawURL); err != nil {
		return err
	}
	x.method = method
	x.url = rawURL
	x.async = async
	x.header = make(http.Header)
	x.opened = true
	return nil
}

func (x *HTTPTransport) SetHeader(name, value string) {
	x.header.Set(name, value)
}

func (x *HTTPTransport) Send(body string, done func(c Completion)) error {
	if !x.opened {
		return ErrNotOpen
	}
	x.opened = false

	ctx, cancel := context.WithCancel(context.Background())
	x.cancel = cancel
	client, method, rawURL, header := x.client, x.method, x.url, x.header

	if !x.async {
		defer cancel()
		done(client.do(ctx, method, rawURL, header, body))
		return nil
	}

	go func() {
		defer cancel()
		c := client.do(ctx, method, rawURL, header, body)
		if err := client.scheduler.Submit(func() { done(c) }); err != nil {
			client.logger.Warning().
				Err(err).
				Str(`url`, rawURL).
				Log(`request: failed to deliver completion`)
		}
	}()

	return nil
}

func (x *HTTPTransport) Abort() {
	x.aborted = true
	x.opened = false
	if x.cancel != nil {
		x.cancel()
	}
}
