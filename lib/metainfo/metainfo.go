// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metainfo

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/bureau-foundation/bencode/lib/bencode"
)

// File is the top level of a metainfo file. The info dictionary is
// kept as verbatim bencode; call Info to parse it and InfoHash to
// digest it.
type File struct {
	Announce     string             `bencode:"announce,omitempty"`
	AnnounceList [][]string         `bencode:"announce-list,omitempty"`
	Comment      string             `bencode:"comment,omitempty"`
	CreatedBy    string             `bencode:"created by,omitempty"`
	CreationDate int64              `bencode:"creation date,omitempty"`
	Encoding     string             `bencode:"encoding,omitempty"`
	URLList      []string           `bencode:"url-list,omitempty"`
	InfoBytes    bencode.RawMessage `bencode:"info"`
}

// Info is the parsed info dictionary. Exactly one of Length (single
// file) and Files (multi file) is set in a well-formed torrent.
type Info struct {
	Name        string      `bencode:"name"`
	PieceLength int64       `bencode:"piece length"`
	Pieces      []byte      `bencode:"pieces"`
	Length      int64       `bencode:"length,omitempty"`
	Files       []FileEntry `bencode:"files,omitempty"`
	Private     int64       `bencode:"private,omitempty"`
}

// FileEntry is one file of a multi-file torrent. Path holds the
// components of the file's path below the torrent's name directory.
type FileEntry struct {
	Length int64    `bencode:"length"`
	Path   []string `bencode:"path"`
}

// InfoHash is the SHA-1 digest of the raw info dictionary, the
// identity of a torrent on the wire and in magnet links.
type InfoHash [sha1.Size]byte

// String returns the conventional lowercase hex rendering.
func (h InfoHash) String() string {
	return hex.EncodeToString(h[:])
}

// Parse decodes a metainfo file from data. Trailing bytes after the
// top-level dictionary are an error.
func Parse(data []byte) (*File, error) {
	var f File
	if err := bencode.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing metainfo: %w", err)
	}
	if len(f.InfoBytes) == 0 {
		return nil, fmt.Errorf("metainfo has no info dictionary")
	}
	return &f, nil
}

// ParseReader decodes a metainfo file from a stream. Like Parse, it
// requires the input to hold exactly one value: trailing bytes after
// the top-level dictionary are an error.
func ParseReader(r io.Reader) (*File, error) {
	var f File
	decoder := bencode.NewDecoder(r)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing metainfo: %w", err)
	}
	if err := decoder.End(); err != nil {
		return nil, fmt.Errorf("parsing metainfo: %w", err)
	}
	if len(f.InfoBytes) == 0 {
		return nil, fmt.Errorf("metainfo has no info dictionary")
	}
	return &f, nil
}

// Info parses the raw info dictionary.
func (f *File) Info() (*Info, error) {
	var info Info
	if err := bencode.Unmarshal(f.InfoBytes, &info); err != nil {
		return nil, fmt.Errorf("parsing info dictionary: %w", err)
	}
	return &info, nil
}

// InfoHash digests the raw info dictionary bytes.
func (f *File) InfoHash() InfoHash {
	return sha1.Sum(f.InfoBytes)
}

// Encode serializes the metainfo file as canonical bencode. The info
// dictionary passes through byte-for-byte, so the info-hash of the
// output equals the info-hash of the input.
func (f *File) Encode() ([]byte, error) {
	data, err := bencode.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encoding metainfo: %w", err)
	}
	return data, nil
}

// TotalLength returns the sum of all file lengths.
func (i *Info) TotalLength() int64 {
	if len(i.Files) == 0 {
		return i.Length
	}
	var total int64
	for _, entry := range i.Files {
		total += entry.Length
	}
	return total
}

// PieceHashes splits the pieces blob into its 20-byte SHA-1 entries.
func (i *Info) PieceHashes() ([]InfoHash, error) {
	if len(i.Pieces)%sha1.Size != 0 {
		return nil, fmt.Errorf("pieces length %d is not a multiple of %d", len(i.Pieces), sha1.Size)
	}
	hashes := make([]InfoHash, len(i.Pieces)/sha1.Size)
	for idx := range hashes {
		copy(hashes[idx][:], i.Pieces[idx*sha1.Size:])
	}
	return hashes, nil
}
