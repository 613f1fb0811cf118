// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bencode

import (
	"bytes"
	"sort"
	"strconv"
)

// Kind identifies one of the four bencode productions.
type Kind uint8

const (
	// KindInvalid is the kind of the zero Value. It has no encoding.
	KindInvalid Kind = iota
	// KindByteString is a length-prefixed byte string.
	KindByteString
	// KindInteger is an i...e integer.
	KindInteger
	// KindList is an l...e list.
	KindList
	// KindDict is a d...e dictionary.
	KindDict
)

// String returns the production name.
func (k Kind) String() string {
	switch k {
	case KindByteString:
		return "byte string"
	case KindInteger:
		return "integer"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	default:
		return "invalid"
	}
}

// Number is a bencode integer. The wire grammar does not distinguish
// signed from unsigned, but the full unsigned 64-bit range and the
// full signed 64-bit range both appear in practice, so Number keeps
// the sign as a tag over a 64-bit magnitude rather than forcing every
// value through int64.
type Number struct {
	negative  bool
	magnitude uint64
}

// Int returns the Number for a signed integer.
func Int(v int64) Number {
	if v < 0 {
		// Negating math.MinInt64 directly overflows; go through the
		// unsigned complement instead.
		return Number{negative: true, magnitude: -uint64(v)}
	}
	return Number{magnitude: uint64(v)}
}

// Uint returns the Number for an unsigned integer.
func Uint(v uint64) Number {
	return Number{magnitude: v}
}

// Negative reports whether the number was written with a leading
// minus sign.
func (n Number) Negative() bool { return n.negative }

// Int64 returns the value as an int64. It reports false when the
// magnitude does not fit.
func (n Number) Int64() (int64, bool) {
	if n.negative {
		// -2^63 is representable even though 2^63 is not.
		if n.magnitude > 1<<63 {
			return 0, false
		}
		return -int64(n.magnitude), true
	}
	if n.magnitude > 1<<63-1 {
		return 0, false
	}
	return int64(n.magnitude), true
}

// Uint64 returns the value as a uint64. It reports false for negative
// numbers.
func (n Number) Uint64() (uint64, bool) {
	if n.negative {
		return 0, false
	}
	return n.magnitude, true
}

// String returns the canonical decimal representation, the exact
// digits the encoder emits between 'i' and 'e'.
func (n Number) String() string {
	return string(n.appendTo(nil))
}

// appendTo appends the canonical decimal representation to dst.
func (n Number) appendTo(dst []byte) []byte {
	if n.negative && n.magnitude != 0 {
		dst = append(dst, '-')
	}
	return strconv.AppendUint(dst, n.magnitude, 10)
}

// Value is a bencode value of any kind, used when the shape of the
// data is not known before decoding. A Value owns all of its nested
// data; nothing in the tree aliases the decoded input.
//
// The zero Value has KindInvalid and cannot be encoded.
type Value struct {
	kind Kind
	str  []byte
	num  Number
	list []Value
	dict *Dict
}

// ByteStringValue returns a byte-string Value owning a copy of b.
func ByteStringValue(b []byte) Value {
	owned := make([]byte, len(b))
	copy(owned, b)
	return Value{kind: KindByteString, str: owned}
}

// StringValue returns a byte-string Value holding the bytes of s.
func StringValue(s string) Value {
	return Value{kind: KindByteString, str: []byte(s)}
}

// IntegerValue returns an integer Value.
func IntegerValue(n Number) Value {
	return Value{kind: KindInteger, num: n}
}

// ListValue returns a list Value holding items.
func ListValue(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// DictValue returns a dictionary Value backed by d. A nil d behaves
// as an empty dictionary.
func DictValue(d *Dict) Value {
	if d == nil {
		d = NewDict()
	}
	return Value{kind: KindDict, dict: d}
}

// Kind returns the value's production kind.
func (v Value) Kind() Kind { return v.kind }

// ByteString returns the byte-string payload. It reports false when
// the value is not a byte string.
func (v Value) ByteString() ([]byte, bool) {
	if v.kind != KindByteString {
		return nil, false
	}
	return v.str, true
}

// Integer returns the integer payload. It reports false when the
// value is not an integer.
func (v Value) Integer() (Number, bool) {
	if v.kind != KindInteger {
		return Number{}, false
	}
	return v.num, true
}

// List returns the list items. It reports false when the value is not
// a list.
func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// Dict returns the dictionary. It reports false when the value is not
// a dictionary.
func (v Value) Dict() (*Dict, bool) {
	if v.kind != KindDict {
		return nil, false
	}
	return v.dict, true
}

// Equal reports whether two values are structurally identical: same
// kind, and byte-wise equal payloads all the way down.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindByteString:
		return bytes.Equal(v.str, other.str)
	case KindInteger:
		return v.num == other.num
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindDict:
		a, b := v.dict.sorted(), other.dict.sorted()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i].Key != b[i].Key || !a[i].Value.Equal(b[i].Value) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// DictEntry is one key/value pair of a Dict. Keys are Go strings
// holding arbitrary bytes; comparison and ordering are byte-wise.
type DictEntry struct {
	Key   string
	Value Value
}

// Dict is a bencode dictionary. Entries are kept in byte-lexicographic
// key order at all times, whatever the insertion order, so encoding a
// Dict is a straight forward walk and lookups are binary searches.
// This is the slice-and-search rendering of an ordered map; bencode
// dictionaries are small enough that the O(n) insert does not matter.
type Dict struct {
	entries []DictEntry
}

// NewDict returns an empty dictionary.
func NewDict() *Dict { return &Dict{} }

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// search returns the insertion index for key and whether an entry with
// that exact key is already present.
func (d *Dict) search(key string) (int, bool) {
	index := sort.Search(len(d.entries), func(i int) bool {
		return d.entries[i].Key >= key
	})
	return index, index < len(d.entries) && d.entries[index].Key == key
}

// Set inserts or replaces the entry for key.
func (d *Dict) Set(key string, value Value) {
	i, found := d.search(key)
	if found {
		d.entries[i].Value = value
		return
	}
	d.entries = append(d.entries, DictEntry{})
	copy(d.entries[i+1:], d.entries[i:])
	d.entries[i] = DictEntry{Key: key, Value: value}
}

// Get returns the value for key. It reports false when the key is
// absent.
func (d *Dict) Get(key string) (Value, bool) {
	if d == nil {
		return Value{}, false
	}
	i, found := d.search(key)
	if !found {
		return Value{}, false
	}
	return d.entries[i].Value, true
}

// Delete removes the entry for key, if present.
func (d *Dict) Delete(key string) {
	i, found := d.search(key)
	if !found {
		return
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
}

// Keys returns the keys in byte-lexicographic order.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, len(d.entries))
	for i, entry := range d.entries {
		keys[i] = entry.Key
	}
	return keys
}

// Entries returns a copy of the entries in byte-lexicographic key
// order.
func (d *Dict) Entries() []DictEntry {
	if d == nil {
		return nil
	}
	entries := make([]DictEntry, len(d.entries))
	copy(entries, d.entries)
	return entries
}

// sorted returns the internal entry slice, which is always in key
// order. Callers must not modify it.
func (d *Dict) sorted() []DictEntry {
	if d == nil {
		return nil
	}
	return d.entries
}
