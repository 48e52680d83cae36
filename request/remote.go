// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package request

import (
	"net/url"

	"github.com/joeycumines/go-classkit/codec"
	"github.com/joeycumines/go-classkit/value"
)

// Remote is a Request bound to a url, exchanging JSON payloads.
//
// In addition to the Request options, it supports:
//
//	secure      if true, responses are decoded strictly
//	onComplete  fired after each success, with the decoded response, which
//	            is nil if it was malformed
type Remote struct {
	*Request
	url string
}

// NewRemote initializes a Remote for url, see also New.
func NewRemote(config *Config, url string, options ...value.Map) *Remote {
	x := &Remote{url: url}
	x.Request = newRequest(config, value.Map{
		`secure`:     false,
		`onComplete`: value.Empty,
	}, func(r *Request) {
		r.events.Add(`onSuccess`, value.F(func(c *value.Call) any {
			text, _ := c.Arg(0).(string)
			r.events.Fire(`onComplete`, []any{codec.Decode(text, r.options.Bool(`secure`, false))})
			return nil
		}))
	}, options)
	x.SetHeader(`X-Request`, `JSON`)
	return x
}

// URL returns the bound url.
func (x *Remote) URL() string { return x.url }

// Send encodes v using codec.Encode, and sends it to the bound url, as the
// "json" parameter.
func (x *Remote) Send(v any) *Remote {
	x.Request.Send(x.url, `json=`+url.QueryEscape(codec.Encode(v)))
	return x
}
