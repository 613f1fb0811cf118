// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bencode

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a bencode encode or decode failure.
type ErrorKind int

const (
	// ErrEOF: the input ended in the middle of a value.
	ErrEOF ErrorKind = iota + 1
	// ErrExpectedValue: a value was expected but the leading byte does
	// not start any bencode production.
	ErrExpectedValue
	// ErrInvalidInteger: an integer was malformed (no digits, a bare
	// minus sign, a non-digit byte, or 64-bit overflow).
	ErrInvalidInteger
	// ErrInvalidLength: a byte-string length prefix was malformed.
	ErrInvalidLength
	// ErrInvalidList: a list was not terminated correctly.
	ErrInvalidList
	// ErrInvalidDict: a dictionary was not terminated correctly.
	ErrInvalidDict
	// ErrKeyNotByteString: a dictionary key was not a byte string.
	ErrKeyNotByteString
	// ErrKeyWithoutValue: a dictionary key was written with no value.
	ErrKeyWithoutValue
	// ErrValueWithoutKey: a dictionary value was written with no
	// pending key.
	ErrValueWithoutKey
	// ErrTrailingData: unconsumed bytes remain after the value.
	ErrTrailingData
	// ErrUnsupportedType: the value category has no bencode production
	// (booleans, floats, nil, and so on).
	ErrUnsupportedType
	// ErrDepthExceeded: nesting went past the decoder's depth limit.
	ErrDepthExceeded
	// ErrDecode: a general decode failure, usually a mismatch between
	// the wire value and the requested Go type.
	ErrDecode
	// ErrEncode: a general encode failure, usually misuse of the
	// pull-style writer.
	ErrEncode
	// ErrIO: the underlying reader or writer failed.
	ErrIO
)

// String returns a short description of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrEOF:
		return "unexpected end of input while parsing value"
	case ErrExpectedValue:
		return "expected a bencode value"
	case ErrInvalidInteger:
		return "invalid integer"
	case ErrInvalidLength:
		return "invalid byte string length"
	case ErrInvalidList:
		return "invalid list"
	case ErrInvalidDict:
		return "invalid dictionary"
	case ErrKeyNotByteString:
		return "dictionary key must be a byte string"
	case ErrKeyWithoutValue:
		return "dictionary key without value"
	case ErrValueWithoutKey:
		return "dictionary value without key"
	case ErrTrailingData:
		return "trailing data after value"
	case ErrUnsupportedType:
		return "unsupported type"
	case ErrDepthExceeded:
		return "maximum nesting depth exceeded"
	case ErrDecode:
		return "decode error"
	case ErrEncode:
		return "encode error"
	case ErrIO:
		return "i/o error"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error is the error type returned by every decode and encode
// operation in this package. Callers can use errors.As to extract the
// structured information:
//
//	var bencodeErr *bencode.Error
//	if errors.As(err, &bencodeErr) {
//	    if bencodeErr.Kind == bencode.ErrInvalidInteger { ... }
//	}
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// ByteOffset is the offset at which the failure was detected,
	// counted from the start of the input or output. Usually the
	// offset is just past the offending byte. A value of 0 means the
	// offset is unknown or not applicable.
	ByteOffset int
	// Err is the underlying cause, if any (an I/O failure, a message
	// describing a type mismatch, and so on).
	Err error
}

func (e *Error) Error() string {
	message := e.Kind.String()
	if e.Err != nil {
		message = e.Err.Error()
	}
	if e.ByteOffset == 0 {
		return "bencode: " + message
	}
	return fmt.Sprintf("bencode: %s at byte offset %d", message, e.ByteOffset)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind checks whether err is a *Error with the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var bencodeErr *Error
	if errors.As(err, &bencodeErr) {
		return bencodeErr.Kind == kind
	}
	return false
}

// newError constructs an error with a kind and byte offset.
func newError(kind ErrorKind, byteOffset int) *Error {
	return &Error{Kind: kind, ByteOffset: byteOffset}
}

// newErrorf constructs an error whose message replaces the kind's
// generic description.
func newErrorf(kind ErrorKind, byteOffset int, format string, args ...any) *Error {
	return &Error{Kind: kind, ByteOffset: byteOffset, Err: fmt.Errorf(format, args...)}
}

// ioError wraps a failure of the underlying reader or writer.
func ioError(err error, byteOffset int) *Error {
	return &Error{Kind: ErrIO, ByteOffset: byteOffset, Err: err}
}
