// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package request

import (
	"math"
	"time"

	"github.com/joeycumines/go-classkit/value"
)

// AjaxCompleteDelay is the delay between a successful Ajax exchange, and its
// "onComplete" event.
const AjaxCompleteDelay = 20 * time.Millisecond

// Ajax is a Request bound to a url, identifying itself as an
// XMLHttpRequest.
//
// In addition to the Request options, it supports:
//
//	data        the data sent by Submit, if it is called without any
//	onComplete  fired AjaxCompleteDelay after each success, with the
//	            arguments (text string, response *Response)
type Ajax struct {
	*Request
	url string
}

// NewAjax initializes an Ajax for url, see also New.
func NewAjax(config *Config, url string, options ...value.Map) *Ajax {
	x := &Ajax{url: url}
	x.Request = newRequest(config, value.Map{
		`data`:       nil,
		`onComplete`: value.Empty,
	}, func(r *Request) {
		r.events.Add(`onSuccess`, value.F(func(c *value.Call) any {
			r.events.FireDelay(`onComplete`, c.Args, AjaxCompleteDelay)
			return nil
		}))
	}, options)
	x.SetHeader(`X-Requested-With`, `XMLHttpRequest`)
	x.SetHeader(`Accept`, `text/javascript, text/html, application/xml, text/xml, */*`)
	return x
}

// URL returns the bound url.
func (x *Ajax) URL() string { return x.url }

// Submit sends data to the bound url, or the "data" option, if data is
// none, false, empty text, zero, or NaN.
func (x *Ajax) Submit(data any) *Ajax {
	if !truthy(data) {
		data = x.options.Get(`data`)
	}
	x.Send(x.url, data)
	return x
}

func truthy(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if f, ok := value.Float64(v); ok && math.IsNaN(f) {
		return false
	}
	return value.Check(v)
}
