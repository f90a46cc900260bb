// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package descriptor

import (
	"reflect"
	"strings"
)

// Member is one serializable field of a struct.
type Member struct {
	Name      string
	FieldName string
	Type      reflect.Type
	Index     []int

	OmitEmpty bool
	Flow      bool
	// Order is the declaration order within the struct (embedded fields included).
	Order int
}

// Get returns the field; obj must be a struct value. Embedded pointer
// structs that are nil yield an invalid value.
func (m *Member) Get(obj reflect.Value) reflect.Value {
	value, _ := m.field(obj, false)
	return value
}

// GetForSet returns a settable field, allocating nil embedded pointers
// on the way. obj must be addressable.
func (m *Member) GetForSet(obj reflect.Value) reflect.Value {
	value, _ := m.field(obj, true)
	return value
}

func (m *Member) field(obj reflect.Value, alloc bool) (reflect.Value, bool) {
	for i, idx := range m.Index {
		if i > 0 && obj.Kind() == reflect.Ptr {
			if obj.IsNil() {
				if !alloc {
					return reflect.Value{}, false
				}
				obj.Set(reflect.New(obj.Type().Elem()))
			}
			obj = obj.Elem()
		}
		obj = obj.Field(idx)
	}
	return obj, true
}

// ShouldSerialize decides whether the member is written for the given
// field value.
func (m *Member) ShouldSerialize(value reflect.Value, emitDefaultValues bool) bool {
	if !value.IsValid() {
		return false
	}
	if emitDefaultValues && !m.OmitEmpty {
		return true
	}
	return !isEmptyValue(value)
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

type fieldTag struct {
	name      string
	skip      bool
	omitEmpty bool
	flow      bool
	items     bool
	entries   bool
}

func parseFieldTag(field reflect.StructField) fieldTag {
	tag, found := field.Tag.Lookup("yaml")
	if !found {
		return fieldTag{}
	}
	if tag == "-" {
		return fieldTag{skip: true}
	}

	pieces := strings.Split(tag, ",")
	result := fieldTag{name: pieces[0]}

	for _, flag := range pieces[1:] {
		switch flag {
		case "omitempty":
			result.omitEmpty = true
		case "flow":
			result.flow = true
		case "items":
			result.items = true
		case "entries":
			result.entries = true
		}
	}
	return result
}
