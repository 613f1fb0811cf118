// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bencode

import (
	"reflect"
)

// Unmarshaler is implemented by types that decode themselves from the
// verbatim bytes of one bencode value.
type Unmarshaler interface {
	UnmarshalBencode([]byte) error
}

// Unmarshal decodes data into v, which must be a non-nil pointer.
//
// Byte strings decode into strings and []byte; integers into integer
// types (range-checked); lists into slices and arrays; dictionaries
// into string-keyed maps and structs (using the same `bencode` tags
// as Marshal; unknown keys are skipped for forward compatibility). A
// *Value destination materializes the generic tree, a *RawMessage
// destination captures the verbatim value bytes, and an `any`
// destination produces string / int64 (uint64 above the int64 range) /
// []any / map[string]any.
//
// The entire input must be consumed: trailing data after the value is
// an error. Use Decoder.Decode when bencode is embedded in a larger
// stream.
func Unmarshal(data []byte, v any) error {
	decoder := NewDecoderBytes(data)
	if err := decoder.Decode(v); err != nil {
		return err
	}
	return decoder.End()
}

// Decode reads the next value into v using the Unmarshal mapping. It
// does not check for trailing data.
func (d *Decoder) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newErrorf(ErrDecode, 0, "unmarshal target must be a non-nil pointer, got %T", v)
	}
	return d.decodeReflect(rv.Elem())
}

func (d *Decoder) decodeReflect(rv reflect.Value) error {
	if rv.CanAddr() {
		switch target := rv.Addr().Interface().(type) {
		case *Value:
			value, err := d.DecodeValue()
			if err != nil {
				return err
			}
			*target = value
			return nil
		case *Number:
			number, err := d.ReadInteger()
			if err != nil {
				return err
			}
			*target = number
			return nil
		case *Dict:
			return d.decodeDictTree(target)
		case Unmarshaler:
			ref, err := d.ReadRaw()
			if err != nil {
				return err
			}
			if err := target.UnmarshalBencode(ref.Clone()); err != nil {
				return newErrorf(ErrDecode, 0, "UnmarshalBencode: %w", err)
			}
			return nil
		}
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return d.decodeReflect(rv.Elem())

	case reflect.String:
		ref, err := d.ReadByteString()
		if err != nil {
			return err
		}
		rv.SetString(string(ref.Bytes()))
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		start := d.ByteOffset()
		number, err := d.ReadInteger()
		if err != nil {
			return err
		}
		value, ok := number.Int64()
		if !ok || rv.OverflowInt(value) {
			return newErrorf(ErrDecode, start, "integer %s overflows %s", number, rv.Type())
		}
		rv.SetInt(value)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		start := d.ByteOffset()
		number, err := d.ReadInteger()
		if err != nil {
			return err
		}
		value, ok := number.Uint64()
		if !ok || rv.OverflowUint(value) {
			return newErrorf(ErrDecode, start, "integer %s overflows %s", number, rv.Type())
		}
		rv.SetUint(value)
		return nil

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			ref, err := d.ReadByteString()
			if err != nil {
				return err
			}
			rv.SetBytes(ref.Clone())
			return nil
		}
		return d.decodeSlice(rv)

	case reflect.Array:
		return d.decodeArray(rv)

	case reflect.Map:
		return d.decodeMap(rv)

	case reflect.Struct:
		return d.decodeStruct(rv)

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return newErrorf(ErrDecode, d.ByteOffset(), "cannot decode into non-empty interface %s", rv.Type())
		}
		generic, err := d.decodeAny()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(generic))
		return nil

	default:
		return newErrorf(ErrUnsupportedType, d.ByteOffset(), "cannot decode into %s", rv.Type())
	}
}

func (d *Decoder) decodeSlice(rv reflect.Value) error {
	if err := d.ReadListStart(); err != nil {
		return err
	}
	out := reflect.MakeSlice(rv.Type(), 0, 0)
	elemType := rv.Type().Elem()
	for {
		more, err := d.More()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		elem := reflect.New(elemType).Elem()
		if err := d.decodeReflect(elem); err != nil {
			return err
		}
		out = reflect.Append(out, elem)
	}
	if err := d.ReadListEnd(); err != nil {
		return err
	}
	rv.Set(out)
	return nil
}

func (d *Decoder) decodeArray(rv reflect.Value) error {
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		start := d.ByteOffset()
		ref, err := d.ReadByteString()
		if err != nil {
			return err
		}
		if len(ref.Bytes()) != rv.Len() {
			return newErrorf(ErrDecode, start, "byte string length %d does not fit [%d]byte",
				len(ref.Bytes()), rv.Len())
		}
		reflect.Copy(rv, reflect.ValueOf(ref.Bytes()))
		return nil
	}

	if err := d.ReadListStart(); err != nil {
		return err
	}
	index := 0
	for {
		more, err := d.More()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		if index < rv.Len() {
			if err := d.decodeReflect(rv.Index(index)); err != nil {
				return err
			}
		} else if err := d.Skip(); err != nil {
			return err
		}
		index++
	}
	for ; index < rv.Len(); index++ {
		rv.Index(index).SetZero()
	}
	return d.ReadListEnd()
}

func (d *Decoder) decodeMap(rv reflect.Value) error {
	keyType := rv.Type().Key()
	if keyType.Kind() != reflect.String {
		return newErrorf(ErrUnsupportedType, d.ByteOffset(), "map key type %s is not a string", keyType)
	}
	if err := d.ReadDictStart(); err != nil {
		return err
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(rv.Type()))
	}
	elemType := rv.Type().Elem()
	for {
		more, err := d.More()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		key, err := d.ReadKey()
		if err != nil {
			return err
		}
		name := string(key.Bytes())
		elem := reflect.New(elemType).Elem()
		if err := d.decodeReflect(elem); err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(name).Convert(keyType), elem)
	}
	return d.ReadDictEnd()
}

func (d *Decoder) decodeStruct(rv reflect.Value) error {
	if err := d.ReadDictStart(); err != nil {
		return err
	}
	fields := cachedFields(rv.Type())
	for {
		more, err := d.More()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		key, err := d.ReadKey()
		if err != nil {
			return err
		}
		name := string(key.Bytes())

		var match *structField
		for i := range fields {
			if fields[i].name == name {
				match = &fields[i]
				break
			}
		}
		if match == nil {
			// Unknown keys are skipped for forward compatibility.
			if err := d.Skip(); err != nil {
				return err
			}
			continue
		}
		if err := d.decodeReflect(fieldByIndex(rv, match.index)); err != nil {
			return err
		}
	}
	return d.ReadDictEnd()
}

// decodeDictTree decodes a dictionary production into a Dict.
func (d *Decoder) decodeDictTree(target *Dict) error {
	start := d.ByteOffset()
	value, err := d.DecodeValue()
	if err != nil {
		return err
	}
	dict, ok := value.Dict()
	if !ok {
		return newErrorf(ErrDecode, start, "cannot decode %s into Dict", value.Kind())
	}
	*target = *dict
	return nil
}

// decodeAny materializes the next value as native Go types: string,
// int64 (uint64 when the value does not fit), []any, map[string]any.
func (d *Decoder) decodeAny() (any, error) {
	kind, err := d.PeekKind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindByteString:
		ref, err := d.ReadByteString()
		if err != nil {
			return nil, err
		}
		return string(ref.Bytes()), nil
	case KindInteger:
		start := d.ByteOffset()
		number, err := d.ReadInteger()
		if err != nil {
			return nil, err
		}
		if value, ok := number.Int64(); ok {
			return value, nil
		}
		if value, ok := number.Uint64(); ok {
			return value, nil
		}
		return nil, newErrorf(ErrDecode, start, "integer %s does not fit any native type", number)
	case KindList:
		if err := d.ReadListStart(); err != nil {
			return nil, err
		}
		items := []any{}
		for {
			more, err := d.More()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			item, err := d.decodeAny()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if err := d.ReadListEnd(); err != nil {
			return nil, err
		}
		return items, nil
	case KindDict:
		if err := d.ReadDictStart(); err != nil {
			return nil, err
		}
		entries := map[string]any{}
		for {
			more, err := d.More()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			key, err := d.ReadKey()
			if err != nil {
				return nil, err
			}
			name := string(key.Bytes())
			item, err := d.decodeAny()
			if err != nil {
				return nil, err
			}
			entries[name] = item
		}
		if err := d.ReadDictEnd(); err != nil {
			return nil, err
		}
		return entries, nil
	default:
		return nil, newError(ErrExpectedValue, d.ByteOffset())
	}
}
