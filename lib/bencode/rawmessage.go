// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bencode

// RawMessage is a raw encoded bencode value. Use it to delay decoding
// or to pre-encode output.
//
// On unmarshal, a RawMessage destination captures the verbatim source
// bytes of the value, including structural delimiters, whatever its
// kind. This is how the BitTorrent info-hash is computed: declare the
// "info" field as a RawMessage and digest it directly.
//
// On marshal, the bytes are validated to hold exactly one well-formed
// value and then emitted as-is.
type RawMessage []byte

// MarshalBencode implements Marshaler by returning the raw bytes
// unchanged.
func (m RawMessage) MarshalBencode() ([]byte, error) {
	if len(m) == 0 {
		return nil, newErrorf(ErrEncode, 0, "empty RawMessage")
	}
	return m, nil
}

// UnmarshalBencode implements Unmarshaler by storing a copy of the
// raw bytes.
func (m *RawMessage) UnmarshalBencode(raw []byte) error {
	*m = append((*m)[:0], raw...)
	return nil
}
