// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bencode

import (
	"io"
	"math"
)

// DefaultMaxDepth is the nesting depth limit applied to new decoders.
// Bencode from the wild is untrusted input; without a limit, a few
// hundred bytes of "lllll..." can exhaust the goroutine stack through
// recursive descent. Real metainfo nests a handful of levels deep.
const DefaultMaxDepth = 1000

// Decoder reads bencode values from a byte source. It exposes a
// pull-style API for callers that know the shape of the data
// (ReadInteger, ReadByteString, ReadListStart, ...), DecodeValue for
// materializing an arbitrary value tree, ReadRaw for capturing the
// verbatim bytes of a value, and Decode for reflection-based
// unmarshaling into Go types.
//
// A Decoder owns its reader and scratch buffer; distinct decoders can
// run concurrently with no coordination, but a single Decoder must not
// be shared between goroutines.
type Decoder struct {
	r Reader

	// sr and stream are set when r is the corresponding concrete
	// implementation, enabling zero-copy spans and bulk payload reads.
	sr     *SliceReader
	stream *StreamReader

	// buf is the scratch buffer backing buffered Refs. Its contents
	// are invalidated by every read call.
	buf []byte

	maxDepth int
	depth    int
}

// NewDecoder returns a decoder reading from r. Byte strings and raw
// captures are copied into the decoder's scratch buffer, because a
// stream cannot be re-read.
func NewDecoder(r io.Reader) *Decoder {
	return NewDecoderReader(NewStreamReader(r))
}

// NewDecoderBytes returns a decoder over an in-memory slice. Byte
// strings and raw captures are returned as zero-copy references into
// data, which must not be mutated while any such reference is live.
func NewDecoderBytes(data []byte) *Decoder {
	return NewDecoderReader(NewSliceReader(data))
}

// NewDecoderReader returns a decoder driving a caller-supplied Reader.
func NewDecoderReader(r Reader) *Decoder {
	d := &Decoder{r: r, maxDepth: DefaultMaxDepth}
	switch reader := r.(type) {
	case *SliceReader:
		d.sr = reader
	case *StreamReader:
		d.stream = reader
	}
	return d
}

// SetMaxDepth overrides the nesting depth limit. Values below 1 are
// treated as 1.
func (d *Decoder) SetMaxDepth(limit int) {
	if limit < 1 {
		limit = 1
	}
	d.maxDepth = limit
}

// ByteOffset returns the number of input bytes consumed so far. After
// decoding a value embedded in a larger stream, this is where the
// trailing data begins.
func (d *Decoder) ByteOffset() int { return d.r.ByteOffset() }

// End verifies that the input is exhausted. It is opt-in rather than
// automatic so that bencode can be embedded in a larger stream; call
// it after the top-level value when trailing data would be an error.
func (d *Decoder) End() error {
	_, err := d.r.Peek()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return ioError(err, d.r.ByteOffset())
	}
	return newError(ErrTrailingData, d.r.ByteOffset())
}

// PeekKind reports the kind of the next value without consuming
// anything.
func (d *Decoder) PeekKind() (Kind, error) {
	b, err := d.peekByte()
	if err != nil {
		return KindInvalid, err
	}
	switch {
	case b >= '0' && b <= '9':
		return KindByteString, nil
	case b == 'i':
		return KindInteger, nil
	case b == 'l':
		return KindList, nil
	case b == 'd':
		return KindDict, nil
	default:
		return KindInvalid, newError(ErrExpectedValue, d.r.ByteOffset())
	}
}

// ReadInteger consumes an i...e integer production.
func (d *Decoder) ReadInteger() (Number, error) {
	kind, err := d.PeekKind()
	if err != nil {
		return Number{}, err
	}
	if kind != KindInteger {
		return Number{}, d.typeMismatch("integer", kind)
	}
	if _, err := d.nextByte(); err != nil {
		return Number{}, err
	}
	return d.readIntegerBody()
}

// readIntegerBody parses the sign, digits, and terminating 'e' after
// the leading 'i' has been consumed. Accumulation is overflow-checked;
// a value past the 64-bit magnitude range is an invalid integer, never
// a silent wraparound.
func (d *Decoder) readIntegerBody() (Number, error) {
	b, err := d.peekByte()
	if err != nil {
		return Number{}, err
	}
	negative := false
	if b == '-' {
		if _, err := d.nextByte(); err != nil {
			return Number{}, err
		}
		negative = true
	}
	b, err = d.peekByte()
	if err != nil {
		return Number{}, err
	}
	if b < '0' || b > '9' {
		return Number{}, newError(ErrInvalidInteger, d.r.ByteOffset())
	}

	var magnitude uint64
	for {
		c, err := d.nextByte()
		if err != nil {
			return Number{}, err
		}
		switch {
		case c == 'e':
			return Number{negative: negative, magnitude: magnitude}, nil
		case c >= '0' && c <= '9':
			digit := uint64(c - '0')
			if magnitude > (math.MaxUint64-digit)/10 {
				return Number{}, newError(ErrInvalidInteger, d.r.ByteOffset())
			}
			magnitude = magnitude*10 + digit
		default:
			return Number{}, newError(ErrInvalidInteger, d.r.ByteOffset())
		}
	}
}

// ReadByteString consumes a <length>:<payload> production. On a
// slice-backed decoder the returned Ref aliases the input; otherwise
// it aliases the scratch buffer and is invalidated by the next read.
func (d *Decoder) ReadByteString() (Ref, error) {
	kind, err := d.PeekKind()
	if err != nil {
		return Ref{}, err
	}
	if kind != KindByteString {
		return Ref{}, d.typeMismatch("byte string", kind)
	}
	length, err := d.readLength()
	if err != nil {
		return Ref{}, err
	}
	return d.readPayload(length)
}

// readLength parses the decimal length prefix and its ':' terminator.
// The first byte has already been verified to be a digit. Leading
// zeros are tolerated; the engine does not police non-canonical
// lengths on input.
func (d *Decoder) readLength() (int, error) {
	var length uint64
	for {
		c, err := d.nextByte()
		if err != nil {
			return 0, err
		}
		switch {
		case c == ':':
			if length > math.MaxInt {
				return 0, newError(ErrInvalidLength, d.r.ByteOffset())
			}
			return int(length), nil
		case c >= '0' && c <= '9':
			digit := uint64(c - '0')
			if length > (math.MaxUint64-digit)/10 {
				return 0, newError(ErrInvalidLength, d.r.ByteOffset())
			}
			length = length*10 + digit
		default:
			return 0, newError(ErrInvalidLength, d.r.ByteOffset())
		}
	}
}

// readPayload consumes length payload bytes, borrowing from the input
// when possible and copying into the scratch buffer otherwise.
func (d *Decoder) readPayload(length int) (Ref, error) {
	if d.sr != nil {
		span, ok := d.sr.take(length)
		if !ok {
			return Ref{}, newError(ErrEOF, d.sr.ByteOffset())
		}
		return borrowedRef(span), nil
	}

	if cap(d.buf) < length {
		d.buf = make([]byte, length)
	}
	d.buf = d.buf[:length]

	if d.stream != nil {
		if err := d.stream.readFull(d.buf); err != nil {
			return Ref{}, d.readErr(err)
		}
		return bufferedRef(d.buf), nil
	}
	for i := range d.buf {
		c, err := d.nextByte()
		if err != nil {
			return Ref{}, err
		}
		d.buf[i] = c
	}
	return bufferedRef(d.buf), nil
}

// ReadListStart consumes the 'l' opening a list.
func (d *Decoder) ReadListStart() error {
	return d.readContainerStart(KindList)
}

// ReadDictStart consumes the 'd' opening a dictionary.
func (d *Decoder) ReadDictStart() error {
	return d.readContainerStart(KindDict)
}

func (d *Decoder) readContainerStart(want Kind) error {
	kind, err := d.PeekKind()
	if err != nil {
		return err
	}
	if kind != want {
		errKind := ErrInvalidList
		if want == KindDict {
			errKind = ErrInvalidDict
		}
		return newErrorf(errKind, d.r.ByteOffset(), "cannot decode %s: input holds a %s", want, kind)
	}
	if _, err := d.nextByte(); err != nil {
		return err
	}
	return d.push()
}

// More reports whether the current list or dictionary has another
// element before its terminating 'e'. It never consumes input.
func (d *Decoder) More() (bool, error) {
	b, err := d.peekByte()
	if err != nil {
		return false, err
	}
	return b != 'e', nil
}

// ReadListEnd consumes the 'e' terminating a list. Anything else at
// the cursor is an invalid-list error.
func (d *Decoder) ReadListEnd() error {
	return d.readContainerEnd(ErrInvalidList)
}

// ReadDictEnd consumes the 'e' terminating a dictionary.
func (d *Decoder) ReadDictEnd() error {
	return d.readContainerEnd(ErrInvalidDict)
}

func (d *Decoder) readContainerEnd(kind ErrorKind) error {
	b, err := d.peekByte()
	if err != nil {
		return err
	}
	if b != 'e' {
		return newError(kind, d.r.ByteOffset())
	}
	if _, err := d.nextByte(); err != nil {
		return err
	}
	d.depth--
	return nil
}

// ReadKey consumes a dictionary key. A key production that is not a
// byte string is a grammar error, not a type mismatch.
func (d *Decoder) ReadKey() (Ref, error) {
	b, err := d.peekByte()
	if err != nil {
		return Ref{}, err
	}
	if b < '0' || b > '9' {
		return Ref{}, newError(ErrKeyNotByteString, d.r.ByteOffset())
	}
	length, err := d.readLength()
	if err != nil {
		return Ref{}, err
	}
	return d.readPayload(length)
}

// DecodeValue materializes the next value as a fully owned Value
// tree. Duplicate dictionary keys are accepted; the last occurrence
// wins. On any grammar violation the partial tree is discarded and
// only the error is returned.
func (d *Decoder) DecodeValue() (Value, error) {
	kind, err := d.PeekKind()
	if err != nil {
		return Value{}, err
	}
	switch kind {
	case KindByteString:
		ref, err := d.ReadByteString()
		if err != nil {
			return Value{}, err
		}
		return ByteStringValue(ref.Bytes()), nil
	case KindInteger:
		number, err := d.ReadInteger()
		if err != nil {
			return Value{}, err
		}
		return IntegerValue(number), nil
	case KindList:
		if err := d.ReadListStart(); err != nil {
			return Value{}, err
		}
		var items []Value
		for {
			more, err := d.More()
			if err != nil {
				return Value{}, err
			}
			if !more {
				break
			}
			item, err := d.DecodeValue()
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		if err := d.ReadListEnd(); err != nil {
			return Value{}, err
		}
		return ListValue(items...), nil
	case KindDict:
		if err := d.ReadDictStart(); err != nil {
			return Value{}, err
		}
		dict := NewDict()
		for {
			more, err := d.More()
			if err != nil {
				return Value{}, err
			}
			if !more {
				break
			}
			key, err := d.ReadKey()
			if err != nil {
				return Value{}, err
			}
			name := string(key.Bytes())
			item, err := d.DecodeValue()
			if err != nil {
				return Value{}, err
			}
			dict.Set(name, item)
		}
		if err := d.ReadDictEnd(); err != nil {
			return Value{}, err
		}
		return DictValue(dict), nil
	default:
		return Value{}, newError(ErrExpectedValue, d.r.ByteOffset())
	}
}

// ReadRaw captures the exact source bytes of the next value, including
// its structural delimiters. Nested lists and dictionaries are walked
// only far enough to find the matching terminators; integer digits and
// byte-string payloads are copied verbatim without interpretation.
// This is the primitive behind info-hash computation: a digest over a
// raw capture covers the bytes as they appeared on the wire, which a
// semantic re-encoding cannot guarantee.
//
// On a slice-backed decoder the Ref aliases the input; otherwise it
// aliases the scratch buffer.
func (d *Decoder) ReadRaw() (Ref, error) {
	if d.sr != nil {
		start := d.sr.ByteOffset()
		if err := d.walkValue(nil); err != nil {
			return Ref{}, err
		}
		return borrowedRef(d.sr.window(start)), nil
	}
	d.buf = d.buf[:0]
	if err := d.walkValue(&d.buf); err != nil {
		return Ref{}, err
	}
	return bufferedRef(d.buf), nil
}

// Skip consumes the next value without materializing it.
func (d *Decoder) Skip() error {
	return d.walkValue(nil)
}

// walkValue structurally consumes one value, appending every consumed
// byte to sink when it is non-nil.
func (d *Decoder) walkValue(sink *[]byte) error {
	b, err := d.peekByte()
	if err != nil {
		return err
	}
	switch {
	case b >= '0' && b <= '9':
		return d.walkByteString(sink)
	case b == 'i':
		return d.walkInteger(sink)
	case b == 'l':
		return d.walkContainer(sink, false)
	case b == 'd':
		return d.walkContainer(sink, true)
	default:
		return newError(ErrExpectedValue, d.r.ByteOffset())
	}
}

// walkInteger consumes i<sign?><digits>e, validating shape but not
// magnitude: raw capture must preserve representations (leading
// zeros, -0) that a semantic parse might normalize or reject.
func (d *Decoder) walkInteger(sink *[]byte) error {
	c, err := d.nextByte() // the 'i'
	if err != nil {
		return err
	}
	emit(sink, c)
	b, err := d.peekByte()
	if err != nil {
		return err
	}
	if b == '-' {
		c, err = d.nextByte()
		if err != nil {
			return err
		}
		emit(sink, c)
	}
	b, err = d.peekByte()
	if err != nil {
		return err
	}
	if b < '0' || b > '9' {
		return newError(ErrInvalidInteger, d.r.ByteOffset())
	}
	for {
		c, err = d.nextByte()
		if err != nil {
			return err
		}
		switch {
		case c == 'e':
			emit(sink, c)
			return nil
		case c >= '0' && c <= '9':
			emit(sink, c)
		default:
			return newError(ErrInvalidInteger, d.r.ByteOffset())
		}
	}
}

// walkByteString consumes <length>:<payload>, copying delimiter,
// digits, and payload verbatim.
func (d *Decoder) walkByteString(sink *[]byte) error {
	var length uint64
	for {
		c, err := d.nextByte()
		if err != nil {
			return err
		}
		switch {
		case c == ':':
			emit(sink, c)
			if length > math.MaxInt {
				return newError(ErrInvalidLength, d.r.ByteOffset())
			}
			return d.walkPayload(sink, int(length))
		case c >= '0' && c <= '9':
			emit(sink, c)
			digit := uint64(c - '0')
			if length > (math.MaxUint64-digit)/10 {
				return newError(ErrInvalidLength, d.r.ByteOffset())
			}
			length = length*10 + digit
		default:
			return newError(ErrInvalidLength, d.r.ByteOffset())
		}
	}
}

// walkPayload consumes length payload bytes into sink (or discards
// them when sink is nil).
func (d *Decoder) walkPayload(sink *[]byte, length int) error {
	if d.sr != nil {
		span, ok := d.sr.take(length)
		if !ok {
			return newError(ErrEOF, d.sr.ByteOffset())
		}
		if sink != nil {
			*sink = append(*sink, span...)
		}
		return nil
	}
	if sink != nil {
		base := len(*sink)
		*sink = append(*sink, make([]byte, length)...)
		target := (*sink)[base:]
		if d.stream != nil {
			if err := d.stream.readFull(target); err != nil {
				return d.readErr(err)
			}
			return nil
		}
		for i := range target {
			c, err := d.nextByte()
			if err != nil {
				return err
			}
			target[i] = c
		}
		return nil
	}
	// Discard without retaining.
	if d.stream != nil {
		var chunk [512]byte
		for length > 0 {
			n := min(length, len(chunk))
			if err := d.stream.readFull(chunk[:n]); err != nil {
				return d.readErr(err)
			}
			length -= n
		}
		return nil
	}
	for ; length > 0; length-- {
		if _, err := d.nextByte(); err != nil {
			return err
		}
	}
	return nil
}

// walkContainer consumes l...e or d...e, recursing into children. For
// dictionaries, keys are still required to be byte strings even though
// nothing else about them is interpreted.
func (d *Decoder) walkContainer(sink *[]byte, isDict bool) error {
	c, err := d.nextByte() // the 'l' or 'd'
	if err != nil {
		return err
	}
	emit(sink, c)
	if err := d.push(); err != nil {
		return err
	}
	for {
		b, err := d.peekByte()
		if err != nil {
			return err
		}
		if b == 'e' {
			c, err = d.nextByte()
			if err != nil {
				return err
			}
			emit(sink, c)
			d.depth--
			return nil
		}
		if isDict {
			if b < '0' || b > '9' {
				return newError(ErrKeyNotByteString, d.r.ByteOffset())
			}
			if err := d.walkByteString(sink); err != nil {
				return err
			}
		}
		if err := d.walkValue(sink); err != nil {
			return err
		}
	}
}

// push enters one nesting level, enforcing the depth limit.
func (d *Decoder) push() error {
	d.depth++
	if d.depth > d.maxDepth {
		return newError(ErrDepthExceeded, d.r.ByteOffset())
	}
	return nil
}

// typeMismatch reports that the next value's kind does not match what
// the caller asked for.
func (d *Decoder) typeMismatch(want string, found Kind) error {
	return newErrorf(ErrDecode, d.r.ByteOffset(), "cannot decode %s: input holds a %s", want, found)
}

// peekByte peeks one byte, mapping end-of-input to an EOF-kind error
// at the current offset.
func (d *Decoder) peekByte() (byte, error) {
	b, err := d.r.Peek()
	if err != nil {
		return 0, d.readErr(err)
	}
	return b, nil
}

// nextByte consumes one byte, mapping end-of-input to an EOF-kind
// error at the current offset.
func (d *Decoder) nextByte() (byte, error) {
	b, err := d.r.Next()
	if err != nil {
		return 0, d.readErr(err)
	}
	return b, nil
}

// readErr classifies a reader failure: end-of-input mid-value versus
// an underlying I/O failure.
func (d *Decoder) readErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return newError(ErrEOF, d.r.ByteOffset())
	}
	return ioError(err, d.r.ByteOffset())
}

// emit appends b to the sink when one is attached.
func emit(sink *[]byte, b byte) {
	if sink != nil {
		*sink = append(*sink, b)
	}
}
