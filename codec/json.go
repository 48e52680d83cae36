// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package codec

import (
	"math"
	"regexp"
	"slices"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/joeycumines/go-classkit/value"
	"github.com/joeycumines/go-utilpkg/jsonenc"
)

// securePattern accepts only text made of JSON tokens, applied by strict
// decoding before parsing.
var securePattern = regexp.MustCompile(`^("(\\.|[^"\\\n\r])*?"|[,:{}\[\]0-9.\-+Eaeflnr-u \n\r\t])+?$`)

// Encode returns the JSON text for v.
//
// Non-finite numbers, none, callables, and values of unknown kind encode as
// null. Patterns encode as their source text, and class instances as their
// own fields. Object keys are sorted.
func Encode(v any) string {
	return string(Append(nil, v))
}

// Append appends the JSON text for v to dst, see Encode.
func Append(dst []byte, v any) []byte {
	switch value.Classify(v) {
	case value.KindText:
		return jsonenc.AppendString(dst, v.(string))
	case value.KindNumeric:
		return appendNumber(dst, v)
	case value.KindBoolean:
		return strconv.AppendBool(dst, v.(bool))
	case value.KindArray:
		dst = append(dst, '[')
		for i, e := range v.([]any) {
			if i != 0 {
				dst = append(dst, ',')
			}
			dst = Append(dst, e)
		}
		return append(dst, ']')
	case value.KindMap:
		return appendMap(dst, v.(map[string]any))
	case value.KindPattern:
		return jsonenc.AppendString(dst, v.(*regexp.Regexp).String())
	case value.KindInstance:
		return appendMap(dst, v.(value.Instance).Fields())
	default:
		return append(dst, `null`...)
	}
}

func appendMap(dst []byte, m map[string]any) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	dst = append(dst, '{')
	for i, k := range keys {
		if i != 0 {
			dst = append(dst, ',')
		}
		dst = jsonenc.AppendString(dst, k)
		dst = append(dst, ':')
		dst = Append(dst, m[k])
	}
	return append(dst, '}')
}

func appendNumber(dst []byte, v any) []byte {
	switch v := v.(type) {
	case int:
		return strconv.AppendInt(dst, int64(v), 10)
	case int8:
		return strconv.AppendInt(dst, int64(v), 10)
	case int16:
		return strconv.AppendInt(dst, int64(v), 10)
	case int32:
		return strconv.AppendInt(dst, int64(v), 10)
	case int64:
		return strconv.AppendInt(dst, v, 10)
	case uint:
		return strconv.AppendUint(dst, uint64(v), 10)
	case uint8:
		return strconv.AppendUint(dst, uint64(v), 10)
	case uint16:
		return strconv.AppendUint(dst, uint64(v), 10)
	case uint32:
		return strconv.AppendUint(dst, uint64(v), 10)
	case uint64:
		return strconv.AppendUint(dst, v, 10)
	case uintptr:
		return strconv.AppendUint(dst, uint64(v), 10)
	case float32:
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return append(dst, `null`...)
		}
		return jsonenc.AppendFloat32(dst, v)
	default:
		f, _ := value.Float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return append(dst, `null`...)
		}
		return jsonenc.AppendFloat64(dst, f)
	}
}

// Decode parses JSON text, returning nil if it is malformed. Objects decode
// as value.Map, arrays as value.Array, and numbers as float64.
//
// Strict decoding additionally rejects text containing anything but JSON
// tokens (checked before parsing), and strings that are not valid UTF-8.
func Decode(text string, strict bool) any {
	api := sonic.ConfigDefault
	if strict {
		if !securePattern.MatchString(text) {
			return nil
		}
		api = sonic.ConfigStd
	}
	var v any
	if err := api.UnmarshalFromString(text, &v); err != nil {
		return nil
	}
	return v
}
