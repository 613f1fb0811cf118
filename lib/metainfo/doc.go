// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package metainfo reads and writes BitTorrent metainfo (.torrent)
// files on top of the bencode package.
//
// The info dictionary is carried as raw bencode rather than being
// re-encoded from parsed fields: the info-hash that identifies a
// torrent is a SHA-1 digest over the exact bytes of that dictionary
// as they appear in the file, so a parse/re-encode cycle through this
// package never changes the hash.
package metainfo
