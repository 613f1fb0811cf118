// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bencode

import "io"

// Reader is the byte source driven by a Decoder. End of input is
// reported as io.EOF from both Next and Peek. Repeated Peek calls with
// no intervening Next return the same byte, and Peek never advances
// the offset.
//
// Most callers never touch this interface: NewDecoderBytes and
// NewDecoder construct the right implementation. It is exported for
// callers that drive the grammar engine directly.
type Reader interface {
	// Next consumes and returns the next byte.
	Next() (byte, error)
	// Peek returns the next byte without consuming it.
	Peek() (byte, error)
	// ByteOffset returns the number of bytes consumed so far.
	ByteOffset() int
}

// SliceReader reads from an in-memory byte slice. It supports
// zero-copy extraction of any consumed range, so byte strings and raw
// captures decoded through it alias the input instead of copying.
type SliceReader struct {
	data   []byte
	offset int
}

// NewSliceReader returns a reader over data. The slice must not be
// mutated while the reader is in use; decoded references alias it.
func NewSliceReader(data []byte) *SliceReader {
	return &SliceReader{data: data}
}

// Next implements Reader.
func (r *SliceReader) Next() (byte, error) {
	if r.offset >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.offset]
	r.offset++
	return b, nil
}

// Peek implements Reader.
func (r *SliceReader) Peek() (byte, error) {
	if r.offset >= len(r.data) {
		return 0, io.EOF
	}
	return r.data[r.offset], nil
}

// ByteOffset implements Reader.
func (r *SliceReader) ByteOffset() int { return r.offset }

// take consumes n bytes and returns them as a subslice of the input,
// without copying. It reports false if fewer than n bytes remain; the
// cursor then stays at the end of the input so the error offset
// reflects the last successfully available byte.
func (r *SliceReader) take(n int) ([]byte, bool) {
	if n > len(r.data)-r.offset {
		r.offset = len(r.data)
		return nil, false
	}
	span := r.data[r.offset : r.offset+n]
	r.offset += n
	return span, true
}

// window returns the consumed range [start, current offset) as a
// subslice of the input, without copying.
func (r *SliceReader) window(start int) []byte {
	return r.data[start:r.offset]
}

// StreamReader reads from an io.Reader one byte at a time, caching at
// most a single lookahead byte for Peek. It performs no other
// buffering; wrap the underlying reader in a bufio.Reader when
// syscall-per-byte overhead matters.
type StreamReader struct {
	r       io.Reader
	scratch [1]byte
	peeked  byte
	hasPeek bool
	offset  int
}

// NewStreamReader returns a reader over r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

// Next implements Reader.
func (r *StreamReader) Next() (byte, error) {
	if r.hasPeek {
		r.hasPeek = false
		r.offset++
		return r.peeked, nil
	}
	if _, err := io.ReadFull(r.r, r.scratch[:]); err != nil {
		return 0, err
	}
	r.offset++
	return r.scratch[0], nil
}

// Peek implements Reader.
func (r *StreamReader) Peek() (byte, error) {
	if r.hasPeek {
		return r.peeked, nil
	}
	if _, err := io.ReadFull(r.r, r.scratch[:]); err != nil {
		return 0, err
	}
	r.peeked = r.scratch[0]
	r.hasPeek = true
	return r.peeked, nil
}

// ByteOffset implements Reader. The cached lookahead byte is not
// counted until it is consumed.
func (r *StreamReader) ByteOffset() int { return r.offset }

// readFull fills buf from the stream, draining the lookahead byte
// first. Short reads surface as io.ErrUnexpectedEOF.
func (r *StreamReader) readFull(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if r.hasPeek {
		buf[0] = r.peeked
		r.hasPeek = false
		r.offset++
		buf = buf[1:]
	}
	n, err := io.ReadFull(r.r, buf)
	r.offset += n
	if err == io.EOF && len(buf) > 0 {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// Ref is the result of a byte-string read or a raw capture. The bytes
// are either borrowed from the original input (slice-backed decoding)
// or buffered in the decoder's scratch space (stream-backed decoding).
//
// A borrowed Ref stays valid for the lifetime of the input slice. A
// buffered Ref is invalidated by the next read on the same decoder;
// call Clone before retaining it.
type Ref struct {
	data     []byte
	borrowed bool
}

// Bytes returns the referenced bytes. The slice must not be mutated.
func (r Ref) Bytes() []byte { return r.data }

// Borrowed reports whether the bytes alias the original input rather
// than the decoder's scratch buffer.
func (r Ref) Borrowed() bool { return r.borrowed }

// Clone returns an owned copy of the referenced bytes, safe to retain
// past the next decoder call.
func (r Ref) Clone() []byte {
	if r.data == nil {
		return []byte{}
	}
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out
}

// borrowedRef tags bytes that alias the decoder's input.
func borrowedRef(data []byte) Ref { return Ref{data: data, borrowed: true} }

// bufferedRef tags bytes that live in the decoder's scratch buffer.
func bufferedRef(data []byte) Ref { return Ref{data: data} }
