// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bencode

import (
	"errors"
	"testing"
)

type torrentInfo struct {
	Length      int64  `bencode:"length"`
	Name        string `bencode:"name"`
	PieceLength int64  `bencode:"piece length"`
	Pieces      []byte `bencode:"pieces"`
	Private     int64  `bencode:"private,omitempty"`
}

func TestMarshalStruct(t *testing.T) {
	data, err := Marshal(torrentInfo{
		Length:      2,
		Name:        "foo",
		PieceLength: 16384,
		Pieces:      []byte("xxxxxxxxxxxxxxxxxxxx"),
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := "d6:lengthi2e4:name3:foo12:piece lengthi16384e6:pieces20:xxxxxxxxxxxxxxxxxxxxe"
	if string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}
}

func TestMarshalOmitempty(t *testing.T) {
	withPrivate, err := Marshal(torrentInfo{Name: "a", Pieces: []byte("y"), Private: 1})
	if err != nil {
		t.Fatal(err)
	}
	withoutPrivate, err := Marshal(torrentInfo{Name: "a", Pieces: []byte("y")})
	if err != nil {
		t.Fatal(err)
	}
	if len(withoutPrivate) >= len(withPrivate) {
		t.Errorf("omitempty not effective: without=%q, with=%q", withoutPrivate, withPrivate)
	}
}

func TestMarshalScalars(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{"spam", "4:spam"},
		{[]byte{0x00, 0x01}, "2:\x00\x01"},
		{int(42), "i42e"},
		{int8(-7), "i-7e"},
		{uint64(18446744073709551615), "i18446744073709551615e"},
		{[]string{"a", "b"}, "l1:a1:be"},
		{[2]int{1, 2}, "li1ei2ee"},
		{[3]byte{'a', 'b', 'c'}, "3:abc"},
		{map[string]int{"b": 2, "a": 1}, "d1:ai1e1:bi2ee"},
		{Int(-3), "i-3e"},
		{StringValue("v"), "1:v"},
		{RawMessage("le"), "le"},
	}
	for _, tc := range cases {
		data, err := Marshal(tc.value)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", tc.value, err)
		}
		if string(data) != tc.want {
			t.Errorf("Marshal(%v) = %q, want %q", tc.value, data, tc.want)
		}
	}
}

func TestMarshalUnsupported(t *testing.T) {
	for _, value := range []any{nil, true, 3.14, make(chan int), map[int]string{}} {
		_, err := Marshal(value)
		assertErrorKind(t, err, ErrUnsupportedType)
	}
}

func TestMarshalNestedPointers(t *testing.T) {
	type inner struct {
		N int `bencode:"n"`
	}
	type outer struct {
		Inner *inner `bencode:"inner"`
	}
	data, err := Marshal(outer{Inner: &inner{N: 5}})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "d5:innerd1:ni5eee" {
		t.Errorf("got %q", data)
	}

	// A nil pointer field has no production.
	_, err = Marshal(outer{})
	assertErrorKind(t, err, ErrUnsupportedType)
}

func TestMarshalEmbeddedStruct(t *testing.T) {
	type base struct {
		Announce string `bencode:"announce"`
	}
	type extended struct {
		base
		Comment string `bencode:"comment"`
	}
	data, err := Marshal(extended{base: base{Announce: "http://t"}, Comment: "c"})
	if err != nil {
		t.Fatal(err)
	}
	want := "d8:announce8:http://t7:comment1:ce"
	if string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}
}

func TestMarshalSkippedAndUntaggedFields(t *testing.T) {
	type record struct {
		Kept    string `bencode:"kept"`
		Dropped string `bencode:"-"`
		Plain   int
	}
	data, err := Marshal(record{Kept: "k", Dropped: "d", Plain: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := "d5:Plaini1e4:kept1:ke"
	if string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}
}

type digestValue struct{ payload string }

func (d digestValue) MarshalBencode() ([]byte, error) {
	return Marshal(d.payload)
}

type failingMarshaler struct{}

func (failingMarshaler) MarshalBencode() ([]byte, error) {
	return nil, errors.New("not today")
}

func TestMarshalerInterface(t *testing.T) {
	data, err := Marshal(digestValue{payload: "spam"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "4:spam" {
		t.Errorf("got %q", data)
	}

	_, err = Marshal(failingMarshaler{})
	assertErrorKind(t, err, ErrEncode)
}

func TestMarshalerOutputValidated(t *testing.T) {
	// A Marshaler returning malformed bytes must not corrupt the
	// surrounding output.
	_, err := Marshal(RawMessage("i1"))
	assertErrorKind(t, err, ErrEncode)
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{
		"announce": "http://tracker.example.org:80",
		"info": map[string]any{
			"length": int64(1048576),
			"name":   "test.iso",
		},
	}
	first, err := Marshal(value)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("non-deterministic encoding: %q != %q", first, second)
	}
}

func BenchmarkMarshalStruct(b *testing.B) {
	info := torrentInfo{
		Length:      1048576,
		Name:        "test.iso",
		PieceLength: 262144,
		Pieces:      make([]byte, 80),
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Marshal(info); err != nil {
			b.Fatal(err)
		}
	}
}
