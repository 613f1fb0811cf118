// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bencode implements the Bencode wire format defined in BEP 3:
// byte strings, integers, lists, and dictionaries, with no delimiters
// other than type and length prefixes.
//
// The encoder always produces canonical output: dictionary entries are
// emitted in byte-lexicographic key order with duplicates removed,
// regardless of the order in which they were supplied. Same logical
// data always produces identical bytes. The decoder is deliberately
// more permissive and accepts dictionaries whose keys are unsorted or
// duplicated, because real-world metainfo and peer-wire traffic
// contains both.
//
// For buffer-oriented operations:
//
//	data, err := bencode.Marshal(value)
//	err = bencode.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := bencode.NewEncoder(conn)
//	decoder := bencode.NewDecoder(conn)
//
// Unmarshal and NewDecoderBytes operate on an in-memory slice and
// never copy byte-string payloads while scanning; NewDecoder accepts
// any io.Reader and buffers at most one lookahead byte.
//
// # Raw capture
//
// A field of type RawMessage receives the verbatim source bytes of the
// corresponding value, including its structural delimiters. This is
// how the BitTorrent info-hash is computed: the digest covers the raw
// encoded bytes of the "info" dictionary exactly as they appeared on
// the wire, not a re-serialization of them. The pull-style
// Decoder.ReadRaw exposes the same capability without reflection.
//
// # Errors
//
// Every decode or encode failure is an *Error carrying an ErrorKind
// and the byte offset at which the problem was detected (offset 0
// means the offset is unknown or not applicable). Malformed input
// never panics and never yields a partial result.
package bencode
