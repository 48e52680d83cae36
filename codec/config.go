// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeycumines/go-classkit/value"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNotMapping is returned when a document's root is not a
	// mapping-object.
	ErrNotMapping = errors.New(`codec: document root is not a mapping`)

	// ErrUnsupportedFormat is returned by LoadFile for unknown extensions.
	ErrUnsupportedFormat = errors.New(`codec: unsupported file format`)
)

// DecodeYAML parses a YAML document into a mapping-object. An empty document
// decodes to an empty map.
func DecodeYAML(b []byte) (value.Map, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf(`codec: yaml: %w`, err)
	}
	return rootMap(v)
}

// DecodeTOML parses a TOML document into a mapping-object.
func DecodeTOML(b []byte) (value.Map, error) {
	var v map[string]any
	if err := toml.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return nil, fmt.Errorf(`codec: toml: %w`, err)
	}
	return rootMap(v)
}

// LoadFile reads and decodes a configuration file, selecting the format
// by extension: .json, .yaml, .yml, or .toml. JSON files are decoded
// strictly.
func LoadFile(path string) (value.Map, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case `.yaml`, `.yml`:
		return DecodeYAML(b)
	case `.toml`:
		return DecodeTOML(b)
	case `.json`:
		v := Decode(string(b), true)
		if v == nil {
			return nil, fmt.Errorf(`codec: json: malformed document: %s`, path)
		}
		return rootMap(v)
	default:
		return nil, fmt.Errorf(`%w: %q`, ErrUnsupportedFormat, ext)
	}
}

func rootMap(v any) (value.Map, error) {
	switch v := normalize(v).(type) {
	case nil:
		return value.Map{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, fmt.Errorf(`%w: %s`, ErrNotMapping, value.Classify(v))
	}
}

// normalize converts decoder output to value kinds, e.g. YAML mappings with
// non-string keys, and date types, which become text.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = normalize(e)
		}
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range v {
			v[i] = normalize(e)
		}
		return v
	case []map[string]any:
		s := make([]any, len(v))
		for i, e := range v {
			s[i] = normalize(e)
		}
		return s
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case fmt.Stringer:
		if value.Classify(v) == value.KindUnknown {
			return v.String()
		}
		return v
	default:
		return v
	}
}
