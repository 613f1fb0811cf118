// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Bencode-inspect decodes a bencode document and prints it as JSON,
// or prints the info-hash of a torrent file. It reads from a file
// argument or from stdin, making it usable as a pipeline building
// block and as a debugging lens on .torrent files and tracker
// responses.
//
// Byte strings that are valid UTF-8 print as JSON strings; anything
// else prints as {"base64": "..."}. Integers print as JSON number
// literals, including values outside the int64 range.
//
// Exit codes:
//
//	0  input decoded cleanly
//	1  input is not well-formed bencode (offset printed to stderr)
//	2  usage or I/O error
package main
