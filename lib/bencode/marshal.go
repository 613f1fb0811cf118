// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bencode

import (
	"bytes"
	"reflect"
)

// Marshaler is implemented by types that encode themselves. The
// returned bytes must hold exactly one well-formed bencode value; they
// are validated before emission.
type Marshaler interface {
	MarshalBencode() ([]byte, error)
}

// Marshal encodes v as canonical bencode.
//
// Strings and []byte encode as byte strings; integer types encode as
// integers; slices and arrays encode as lists; string-keyed maps and
// structs encode as dictionaries with canonically sorted keys. Struct
// fields use the `bencode:"name,omitempty"` tag convention ("-" skips
// a field; the field name is the default key). Value, *Dict, Number,
// and RawMessage encode as their respective productions.
//
// Booleans, floats, nil pointers, and other categories with no
// bencode production fail with an unsupported-type error rather than
// being coerced.
func Marshal(v any) ([]byte, error) {
	var buffer bytes.Buffer
	if err := NewEncoder(&buffer).Encode(v); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Encode writes v to the encoder's sink using the Marshal mapping.
func (e *Encoder) Encode(v any) error {
	return e.encodeReflect(reflect.ValueOf(v))
}

func (e *Encoder) encodeReflect(rv reflect.Value) error {
	if !rv.IsValid() {
		return newErrorf(ErrUnsupportedType, 0, "cannot encode nil")
	}

	switch v := rv.Interface().(type) {
	case Value:
		return e.EncodeValue(v)
	case *Dict:
		return e.EncodeValue(DictValue(v))
	case Number:
		return e.WriteInteger(v)
	case RawMessage:
		return e.WriteRaw(v)
	case Marshaler:
		return e.writeMarshaler(v)
	}
	// A Marshaler with a pointer receiver on an addressable value.
	if rv.Kind() != reflect.Pointer && rv.CanAddr() {
		if m, ok := rv.Addr().Interface().(Marshaler); ok {
			return e.writeMarshaler(m)
		}
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return newErrorf(ErrUnsupportedType, 0, "cannot encode nil %s", rv.Type())
		}
		return e.encodeReflect(rv.Elem())

	case reflect.String:
		return e.WriteString(rv.String())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.WriteInteger(Int(rv.Int()))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return e.WriteInteger(Uint(rv.Uint()))

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return e.WriteByteString(rv.Bytes())
		}
		return e.encodeList(rv)

	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			payload := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(payload), rv)
			return e.WriteByteString(payload)
		}
		return e.encodeList(rv)

	case reflect.Map:
		return e.encodeMap(rv)

	case reflect.Struct:
		return e.encodeStruct(rv)

	default:
		return newErrorf(ErrUnsupportedType, 0, "cannot encode %s", rv.Type())
	}
}

func (e *Encoder) writeMarshaler(m Marshaler) error {
	raw, err := m.MarshalBencode()
	if err != nil {
		return newErrorf(ErrEncode, 0, "MarshalBencode: %w", err)
	}
	return e.WriteRaw(raw)
}

func (e *Encoder) encodeList(rv reflect.Value) error {
	if err := e.WriteListStart(); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := e.encodeReflect(rv.Index(i)); err != nil {
			return err
		}
	}
	return e.WriteListEnd()
}

func (e *Encoder) encodeMap(rv reflect.Value) error {
	if rv.Type().Key().Kind() != reflect.String {
		return newErrorf(ErrUnsupportedType, 0, "map key type %s is not a string", rv.Type().Key())
	}
	if err := e.WriteDictStart(); err != nil {
		return err
	}
	// Iteration order does not matter: the encoder sorts entries when
	// the dictionary is closed.
	iterator := rv.MapRange()
	for iterator.Next() {
		if err := e.WriteKey(iterator.Key().String()); err != nil {
			return err
		}
		if err := e.encodeReflect(iterator.Value()); err != nil {
			return err
		}
	}
	return e.WriteDictEnd()
}

func (e *Encoder) encodeStruct(rv reflect.Value) error {
	if err := e.WriteDictStart(); err != nil {
		return err
	}
	for _, field := range cachedFields(rv.Type()) {
		value := fieldByIndex(rv, field.index)
		if field.omitEmpty && isEmptyValue(value) {
			continue
		}
		if err := e.WriteKey(field.name); err != nil {
			return err
		}
		if err := e.encodeReflect(value); err != nil {
			return err
		}
	}
	return e.WriteDictEnd()
}
