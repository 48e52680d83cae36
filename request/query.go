// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package request

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/joeycumines/go-classkit/codec"
	"github.com/joeycumines/go-classkit/value"
)

// EncodeData converts request data to a form-encoded string.
//
// Text is used as-is. Mapping-objects, map[string]string, and url.Values are
// query-encoded, with sorted keys. Within a mapping-object, array values
// produce one pair per element, none values are omitted, and callables
// encode as empty text. Anything else
// is converted as if it were a single query value.
func EncodeData(data any) string {
	switch data := data.(type) {
	case nil:
		return ``
	case string:
		return data
	case url.Values:
		return data.Encode()
	case map[string]string:
		q := make(url.Values, len(data))
		for k, v := range data {
			q.Set(k, v)
		}
		return q.Encode()
	case map[string]any:
		q := make(url.Values, len(data))
		for k, v := range data {
			switch v := v.(type) {
			case nil:
			case []any:
				for _, e := range v {
					q.Add(k, queryValue(e))
				}
			default:
				q.Add(k, queryValue(v))
			}
		}
		return q.Encode()
	default:
		return queryValue(data)
	}
}

func queryValue(v any) string {
	switch value.Classify(v) {
	case value.KindNone, value.KindCallable:
		return ``
	case value.KindText:
		return v.(string)
	case value.KindBoolean:
		return strconv.FormatBool(v.(bool))
	case value.KindPattern:
		return v.(*regexp.Regexp).String()
	case value.KindMap, value.KindArray, value.KindInstance:
		return codec.Encode(v)
	default:
		return fmt.Sprint(v)
	}
}

// appendQuery appends the query string q to rawURL.
func appendQuery(rawURL, q string) string {
	if strings.Contains(rawURL, `?`) {
		return rawURL + `&` + q
	}
	return rawURL + `?` + q
}
