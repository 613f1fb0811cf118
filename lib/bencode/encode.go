// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bencode

import (
	"io"
	"sort"
	"strconv"
)

// Encoder writes canonical bencode to an io.Writer. Integers, byte
// strings, and lists are emitted in call order; dictionary entries are
// buffered per dictionary and emitted in byte-lexicographic key order
// when the dictionary is closed, whatever order WriteKey was called
// in. Duplicate keys collapse to the last value written. Same logical
// data always produces identical bytes.
//
// The pull-style Write methods mirror the Decoder's read methods; the
// Encode method accepts arbitrary Go values via reflection, and
// EncodeValue accepts a Value tree.
//
// An Encoder owns its output sink and entry buffers; distinct encoders
// can run concurrently, but a single Encoder must not be shared
// between goroutines.
type Encoder struct {
	w       io.Writer
	frames  []encoderFrame
	scratch []byte
}

// encoderFrame tracks one open container. List frames exist only for
// misuse detection; dictionary frames buffer their entries so the
// close can sort them.
type encoderFrame struct {
	dict *dictFrame // nil for a list frame
}

type dictFrame struct {
	entries []rawEntry
	key     string
	hasKey  bool
	value   []byte
}

// rawEntry is a buffered dictionary entry: the raw key bytes and the
// fully encoded value bytes. Sorting happens on the raw key, not its
// encoded form, because the length prefix would break lexicographic
// order ("10:..." sorts before "3:...").
type rawEntry struct {
	key   string
	value []byte
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteInteger emits i<decimal>e. The minus sign appears only for
// negative values; negative zero normalizes to 0.
func (e *Encoder) WriteInteger(n Number) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.scratch = append(e.scratch[:0], 'i')
	e.scratch = n.appendTo(e.scratch)
	e.scratch = append(e.scratch, 'e')
	if err := e.writeBytes(e.scratch); err != nil {
		return err
	}
	e.endValue()
	return nil
}

// WriteByteString emits <length>:<raw bytes>. The payload is written
// verbatim; bencode byte strings are not required to be UTF-8.
func (e *Encoder) WriteByteString(payload []byte) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.scratch = strconv.AppendInt(e.scratch[:0], int64(len(payload)), 10)
	e.scratch = append(e.scratch, ':')
	if err := e.writeBytes(e.scratch); err != nil {
		return err
	}
	if err := e.writeBytes(payload); err != nil {
		return err
	}
	e.endValue()
	return nil
}

// WriteString emits the bytes of s as a byte string.
func (e *Encoder) WriteString(s string) error {
	return e.WriteByteString([]byte(s))
}

// WriteListStart opens a list. Elements written before WriteListEnd
// are emitted in call order.
func (e *Encoder) WriteListStart() error {
	if err := e.beginValue(); err != nil {
		return err
	}
	if err := e.writeBytes([]byte{'l'}); err != nil {
		return err
	}
	e.frames = append(e.frames, encoderFrame{})
	return nil
}

// WriteListEnd closes the innermost open list.
func (e *Encoder) WriteListEnd() error {
	frame := e.top()
	if frame == nil || frame.dict != nil {
		return newErrorf(ErrEncode, 0, "WriteListEnd outside a list")
	}
	e.frames = e.frames[:len(e.frames)-1]
	if err := e.writeBytes([]byte{'e'}); err != nil {
		return err
	}
	e.endValue()
	return nil
}

// WriteDictStart opens a dictionary. Entries are buffered and sorted;
// nothing after the 'd' reaches the sink until WriteDictEnd.
func (e *Encoder) WriteDictStart() error {
	if err := e.beginValue(); err != nil {
		return err
	}
	if err := e.writeBytes([]byte{'d'}); err != nil {
		return err
	}
	e.frames = append(e.frames, encoderFrame{dict: &dictFrame{}})
	return nil
}

// WriteKey supplies the key for the next value in the innermost open
// dictionary. Keys are byte strings by construction; any Go string
// (holding arbitrary bytes) is a valid key.
func (e *Encoder) WriteKey(key string) error {
	frame := e.top()
	if frame == nil || frame.dict == nil {
		return newErrorf(ErrEncode, 0, "WriteKey outside a dictionary")
	}
	if frame.dict.hasKey {
		return newError(ErrKeyWithoutValue, 0)
	}
	frame.dict.key = key
	frame.dict.hasKey = true
	return nil
}

// WriteDictEnd closes the innermost open dictionary, emitting its
// entries in byte-lexicographic key order with duplicates collapsed
// to the last written value.
func (e *Encoder) WriteDictEnd() error {
	frame := e.top()
	if frame == nil || frame.dict == nil {
		return newErrorf(ErrEncode, 0, "WriteDictEnd outside a dictionary")
	}
	dict := frame.dict
	if dict.hasKey {
		return newError(ErrKeyWithoutValue, 0)
	}
	e.frames = e.frames[:len(e.frames)-1]

	// Stable sort so that among duplicate keys the last written entry
	// is the last of its run.
	sort.SliceStable(dict.entries, func(i, j int) bool {
		return dict.entries[i].key < dict.entries[j].key
	})
	for i, entry := range dict.entries {
		if i+1 < len(dict.entries) && dict.entries[i+1].key == entry.key {
			continue
		}
		e.scratch = strconv.AppendInt(e.scratch[:0], int64(len(entry.key)), 10)
		e.scratch = append(e.scratch, ':')
		e.scratch = append(e.scratch, entry.key...)
		if err := e.writeBytes(e.scratch); err != nil {
			return err
		}
		if err := e.writeBytes(entry.value); err != nil {
			return err
		}
	}
	if err := e.writeBytes([]byte{'e'}); err != nil {
		return err
	}
	e.endValue()
	return nil
}

// WriteRaw emits pre-encoded bencode as a single value. The bytes are
// validated to hold exactly one well-formed value before anything is
// written; raw captures pass through byte-for-byte, which is what
// keeps digests over re-emitted sub-values stable.
func (e *Encoder) WriteRaw(raw []byte) error {
	validator := NewDecoderBytes(raw)
	if err := validator.Skip(); err != nil {
		return newErrorf(ErrEncode, 0, "invalid raw value: %w", err)
	}
	if err := validator.End(); err != nil {
		return newErrorf(ErrEncode, 0, "invalid raw value: %w", err)
	}
	if err := e.beginValue(); err != nil {
		return err
	}
	if err := e.writeBytes(raw); err != nil {
		return err
	}
	e.endValue()
	return nil
}

// EncodeValue writes a Value tree. The zero Value (and any other
// category with no bencode production) fails with an
// unsupported-type error.
func (e *Encoder) EncodeValue(v Value) error {
	switch v.kind {
	case KindByteString:
		return e.WriteByteString(v.str)
	case KindInteger:
		return e.WriteInteger(v.num)
	case KindList:
		if err := e.WriteListStart(); err != nil {
			return err
		}
		for _, item := range v.list {
			if err := e.EncodeValue(item); err != nil {
				return err
			}
		}
		return e.WriteListEnd()
	case KindDict:
		if err := e.WriteDictStart(); err != nil {
			return err
		}
		for _, entry := range v.dict.sorted() {
			if err := e.WriteKey(entry.Key); err != nil {
				return err
			}
			if err := e.EncodeValue(entry.Value); err != nil {
				return err
			}
		}
		return e.WriteDictEnd()
	default:
		return newError(ErrUnsupportedType, 0)
	}
}

// top returns the innermost open container frame, or nil at the top
// level.
func (e *Encoder) top() *encoderFrame {
	if len(e.frames) == 0 {
		return nil
	}
	return &e.frames[len(e.frames)-1]
}

// innermostDict returns the deepest open dictionary frame, which is
// where value bytes accumulate, or nil when output goes straight to
// the sink.
func (e *Encoder) innermostDict() *dictFrame {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if e.frames[i].dict != nil {
			return e.frames[i].dict
		}
	}
	return nil
}

// beginValue validates that a value may be written here: inside a
// dictionary, every value needs a pending key.
func (e *Encoder) beginValue() error {
	frame := e.top()
	if frame != nil && frame.dict != nil && !frame.dict.hasKey {
		return newError(ErrValueWithoutKey, 0)
	}
	return nil
}

// endValue commits a completed value: when it was written directly
// under a dictionary, the buffered bytes become that key's entry.
func (e *Encoder) endValue() {
	frame := e.top()
	if frame == nil || frame.dict == nil || !frame.dict.hasKey {
		return
	}
	dict := frame.dict
	dict.entries = append(dict.entries, rawEntry{key: dict.key, value: dict.value})
	dict.value = nil
	dict.key = ""
	dict.hasKey = false
}

// writeBytes routes output: into the deepest open dictionary's entry
// buffer when one exists, otherwise to the sink.
func (e *Encoder) writeBytes(p []byte) error {
	if dict := e.innermostDict(); dict != nil {
		dict.value = append(dict.value, p...)
		return nil
	}
	if _, err := e.w.Write(p); err != nil {
		return ioError(err, 0)
	}
	return nil
}
