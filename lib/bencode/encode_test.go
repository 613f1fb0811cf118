// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bencode

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestWriteInteger(t *testing.T) {
	cases := []struct {
		number Number
		want   string
	}{
		{Int(0), "i0e"},
		{Int(42), "i42e"},
		{Int(-42), "i-42e"},
		{Int(math.MinInt64), "i-9223372036854775808e"},
		{Uint(math.MaxUint64), "i18446744073709551615e"},
	}
	for _, tc := range cases {
		var buffer bytes.Buffer
		encoder := NewEncoder(&buffer)
		if err := encoder.WriteInteger(tc.number); err != nil {
			t.Fatalf("WriteInteger(%v): %v", tc.number, err)
		}
		if buffer.String() != tc.want {
			t.Errorf("WriteInteger(%v) = %q, want %q", tc.number, buffer.String(), tc.want)
		}
	}
}

func TestWriteByteString(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	if err := encoder.WriteByteString([]byte("spam")); err != nil {
		t.Fatal(err)
	}
	if err := encoder.WriteString(""); err != nil {
		t.Fatal(err)
	}
	if err := encoder.WriteByteString([]byte{0x00, 0xff}); err != nil {
		t.Fatal(err)
	}
	want := "4:spam0:2:\x00\xff"
	if buffer.String() != want {
		t.Errorf("got %q, want %q", buffer.String(), want)
	}
}

func TestDictKeysSortedOnOutput(t *testing.T) {
	// Keys are written in whatever order the caller produces them; the
	// encoder emits the dictionary in canonical byte order.
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	if err := encoder.WriteDictStart(); err != nil {
		t.Fatal(err)
	}
	for _, entry := range []struct{ key, value string }{
		{"pieces", "ab"},
		{"length", "x"},
		{"name", "f"},
	} {
		if err := encoder.WriteKey(entry.key); err != nil {
			t.Fatalf("WriteKey(%q): %v", entry.key, err)
		}
		if err := encoder.WriteString(entry.value); err != nil {
			t.Fatalf("value for %q: %v", entry.key, err)
		}
	}
	if err := encoder.WriteDictEnd(); err != nil {
		t.Fatal(err)
	}
	want := "d6:length1:x4:name1:f6:pieces2:abe"
	if buffer.String() != want {
		t.Errorf("got %q, want %q", buffer.String(), want)
	}
}

func TestDictRawByteKeyOrder(t *testing.T) {
	// Ordering compares raw key bytes, not encoded <len>:<key> forms.
	// Under encoded-form comparison "10:..." would sort before "9:...".
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	if err := encoder.WriteDictStart(); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"aaaaaaaaaa", "z"} {
		if err := encoder.WriteKey(key); err != nil {
			t.Fatal(err)
		}
		if err := encoder.WriteInteger(Int(1)); err != nil {
			t.Fatal(err)
		}
	}
	if err := encoder.WriteDictEnd(); err != nil {
		t.Fatal(err)
	}
	want := "d10:aaaaaaaaaai1e1:zi1ee"
	if buffer.String() != want {
		t.Errorf("got %q, want %q", buffer.String(), want)
	}
}

func TestDictDuplicateKeyLastWins(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	if err := encoder.WriteDictStart(); err != nil {
		t.Fatal(err)
	}
	for i, key := range []string{"a", "b", "a"} {
		if err := encoder.WriteKey(key); err != nil {
			t.Fatal(err)
		}
		if err := encoder.WriteInteger(Int(int64(i))); err != nil {
			t.Fatal(err)
		}
	}
	if err := encoder.WriteDictEnd(); err != nil {
		t.Fatal(err)
	}
	want := "d1:ai2e1:bi1ee"
	if buffer.String() != want {
		t.Errorf("got %q, want %q", buffer.String(), want)
	}
}

func TestNestedContainers(t *testing.T) {
	// A dictionary nested inside a list inside a dictionary; inner
	// dictionary keys sort independently of the outer ones.
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(encoder.WriteDictStart())
	must(encoder.WriteKey("files"))
	must(encoder.WriteListStart())
	must(encoder.WriteDictStart())
	must(encoder.WriteKey("path"))
	must(encoder.WriteString("a.txt"))
	must(encoder.WriteKey("length"))
	must(encoder.WriteInteger(Int(1)))
	must(encoder.WriteDictEnd())
	must(encoder.WriteListEnd())
	must(encoder.WriteKey("comment"))
	must(encoder.WriteString("x"))
	must(encoder.WriteDictEnd())

	want := "d7:comment1:x5:filesld6:lengthi1e4:path5:a.txteee"
	if buffer.String() != want {
		t.Errorf("got %q, want %q", buffer.String(), want)
	}
}

func TestWriterMisuse(t *testing.T) {
	t.Run("key outside dictionary", func(t *testing.T) {
		encoder := NewEncoder(&bytes.Buffer{})
		assertErrorKind(t, encoder.WriteKey("a"), ErrEncode)
	})
	t.Run("list end outside list", func(t *testing.T) {
		encoder := NewEncoder(&bytes.Buffer{})
		assertErrorKind(t, encoder.WriteListEnd(), ErrEncode)
	})
	t.Run("dict end outside dictionary", func(t *testing.T) {
		encoder := NewEncoder(&bytes.Buffer{})
		assertErrorKind(t, encoder.WriteDictEnd(), ErrEncode)
	})
	t.Run("two keys in a row", func(t *testing.T) {
		encoder := NewEncoder(&bytes.Buffer{})
		if err := encoder.WriteDictStart(); err != nil {
			t.Fatal(err)
		}
		if err := encoder.WriteKey("a"); err != nil {
			t.Fatal(err)
		}
		assertErrorKind(t, encoder.WriteKey("b"), ErrKeyWithoutValue)
	})
	t.Run("dict end with pending key", func(t *testing.T) {
		encoder := NewEncoder(&bytes.Buffer{})
		if err := encoder.WriteDictStart(); err != nil {
			t.Fatal(err)
		}
		if err := encoder.WriteKey("a"); err != nil {
			t.Fatal(err)
		}
		assertErrorKind(t, encoder.WriteDictEnd(), ErrKeyWithoutValue)
	})
	t.Run("value without key", func(t *testing.T) {
		encoder := NewEncoder(&bytes.Buffer{})
		if err := encoder.WriteDictStart(); err != nil {
			t.Fatal(err)
		}
		assertErrorKind(t, encoder.WriteInteger(Int(1)), ErrValueWithoutKey)
	})
}

func TestWriteRaw(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	if err := encoder.WriteDictStart(); err != nil {
		t.Fatal(err)
	}
	if err := encoder.WriteKey("info"); err != nil {
		t.Fatal(err)
	}
	if err := encoder.WriteRaw([]byte("d6:lengthi2ee")); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	if err := encoder.WriteDictEnd(); err != nil {
		t.Fatal(err)
	}
	want := "d4:infod6:lengthi2eee"
	if buffer.String() != want {
		t.Errorf("got %q, want %q", buffer.String(), want)
	}
}

func TestWriteRawRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "i1", "x", "i1ei2e", "d1:ae"} {
		encoder := NewEncoder(&bytes.Buffer{})
		err := encoder.WriteRaw([]byte(raw))
		assertErrorKind(t, err, ErrEncode)
	}
}

func TestEncodeValueRoundtrip(t *testing.T) {
	inputs := []string{
		"i0e",
		"i3e",
		"i-3e",
		"4:spam",
		"le",
		"de",
		"l4:spam4:eggse",
		"d3:cow3:moo4:spam4:eggse",
		"l4:spami-7eld1:a1:beee",
		"d8:announce3:bar4:infod6:lengthi2e4:name3:fooee",
	}
	for _, input := range inputs {
		value, err := NewDecoderBytes([]byte(input)).DecodeValue()
		if err != nil {
			t.Fatalf("%q: DecodeValue: %v", input, err)
		}
		var buffer bytes.Buffer
		if err := NewEncoder(&buffer).EncodeValue(value); err != nil {
			t.Fatalf("%q: EncodeValue: %v", input, err)
		}
		if buffer.String() != input {
			t.Errorf("roundtrip %q produced %q", input, buffer.String())
		}
	}
}

func TestEncodeValueCanonicalizes(t *testing.T) {
	// Unsorted input decodes permissively and re-encodes in canonical
	// order.
	value, err := NewDecoderBytes([]byte("d1:bi1e1:ai2ee")).DecodeValue()
	if err != nil {
		t.Fatal(err)
	}
	var buffer bytes.Buffer
	if err := NewEncoder(&buffer).EncodeValue(value); err != nil {
		t.Fatal(err)
	}
	want := "d1:ai2e1:bi1ee"
	if buffer.String() != want {
		t.Errorf("got %q, want %q", buffer.String(), want)
	}
}

func TestEncodeValueInvalidKind(t *testing.T) {
	var value Value
	err := NewEncoder(&bytes.Buffer{}).EncodeValue(value)
	assertErrorKind(t, err, ErrUnsupportedType)
}

// failWriter fails every write, simulating a full disk or closed pipe.
type failWriter struct{ err error }

func (w failWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestWriterErrorPropagates(t *testing.T) {
	broken := errors.New("pipe closed")
	encoder := NewEncoder(failWriter{err: broken})
	err := encoder.WriteInteger(Int(1))
	assertErrorKind(t, err, ErrIO)
	if !errors.Is(err, broken) {
		t.Errorf("underlying error not wrapped: %v", err)
	}
}

func TestDictBuffersUntilEnd(t *testing.T) {
	// The opening 'd' is written eagerly, but entries are buffered
	// until the dictionary closes; they cannot be emitted before the
	// full key set is known.
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	if err := encoder.WriteDictStart(); err != nil {
		t.Fatal(err)
	}
	if err := encoder.WriteKey("a"); err != nil {
		t.Fatal(err)
	}
	if err := encoder.WriteInteger(Int(1)); err != nil {
		t.Fatal(err)
	}
	if buffer.String() != "d" {
		t.Fatalf("writer saw %q before WriteDictEnd", buffer.String())
	}
	if err := encoder.WriteDictEnd(); err != nil {
		t.Fatal(err)
	}
	if buffer.String() != "d1:ai1ee" {
		t.Errorf("got %q", buffer.String())
	}
}

func BenchmarkEncodeValue(b *testing.B) {
	value, err := NewDecoderBytes([]byte("d8:announce30:http://tracker.example.org:804:infod6:lengthi1048576e4:name8:test.iso12:piece lengthi262144eee")).DecodeValue()
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var buffer bytes.Buffer
		if err := NewEncoder(&buffer).EncodeValue(value); err != nil {
			b.Fatal(err)
		}
	}
}
