// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bencode

import (
	"reflect"
	"strings"
	"sync"
)

// structField describes one struct field participating in dictionary
// encoding: its wire key, its index path through embedded structs, and
// its tag options.
type structField struct {
	name      string
	index     []int
	omitEmpty bool
}

// fieldCache memoizes structFields per type. Field resolution walks
// tags and embedded structs; doing that once per type instead of once
// per value is the standard trade.
var fieldCache sync.Map // reflect.Type -> []structField

// cachedFields returns the encodable fields of a struct type.
func cachedFields(t reflect.Type) []structField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]structField)
	}
	fields := appendStructFields(nil, t, nil)
	fieldCache.Store(t, fields)
	return fields
}

// appendStructFields collects fields of t, recursing into anonymous
// embedded structs (flattened into the parent dictionary, matching
// the behavior of encoding/json). Unexported fields and fields tagged
// "-" are skipped.
func appendStructFields(fields []structField, t reflect.Type, prefix []int) []structField {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := make([]int, len(prefix)+1)
		copy(index, prefix)
		index[len(prefix)] = i

		tag := field.Tag.Get("bencode")
		if tag == "-" {
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct && tag == "" {
			fields = appendStructFields(fields, field.Type, index)
			continue
		}
		if !field.IsExported() {
			continue
		}

		name, options, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}
		fields = append(fields, structField{
			name:      name,
			index:     index,
			omitEmpty: tagOptionSet(options, "omitempty"),
		})
	}
	return fields
}

// tagOptionSet reports whether the comma-separated option list
// contains option.
func tagOptionSet(options, option string) bool {
	for options != "" {
		var current string
		current, options, _ = strings.Cut(options, ",")
		if current == option {
			return true
		}
	}
	return false
}

// fieldByIndex resolves an index path produced by appendStructFields.
// The path only traverses value structs (embedded pointers are not
// flattened), so no allocation is ever needed.
func fieldByIndex(rv reflect.Value, index []int) reflect.Value {
	for _, i := range index {
		rv = rv.Field(i)
	}
	return rv
}

// isEmptyValue reports whether a field with the omitempty option
// should be dropped from the output.
func isEmptyValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
