// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package codec converts classkit values to and from text.
//
// [Encode] and [Decode] implement the JSON payload format used by request
// remotes. Decoding never fails loudly: malformed input decodes to nil, which
// callers must check for.
//
// [DecodeYAML], [DecodeTOML], and [LoadFile] read configuration documents as
// mapping-objects, suitable for mixin.Options.SetOptions.
package codec
