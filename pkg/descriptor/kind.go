// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package descriptor

import (
	"encoding"
	"reflect"
	"time"

	"carvel.dev/yamlgraph/pkg/orderedmap"
)

type Kind int

const (
	Unsupported Kind = iota
	Primitive
	Dictionary
	Collection
	Array
	Object
	Pointer
	Interface
)

func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Dictionary:
		return "dictionary"
	case Collection:
		return "collection"
	case Array:
		return "array"
	case Object:
		return "object"
	case Pointer:
		return "pointer"
	case Interface:
		return "interface"
	default:
		return "unsupported"
	}
}

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

	timeType       = reflect.TypeOf(time.Time{})
	bytesType      = reflect.TypeOf([]byte{})
	orderedMapType = reflect.TypeOf(orderedmap.Map{})
)

// IsTextType reports whether typ (or *typ) converts to and from text.
func IsTextType(typ reflect.Type) bool {
	ptrType := reflect.PtrTo(typ)
	return (typ.Implements(textMarshalerType) || ptrType.Implements(textMarshalerType)) &&
		ptrType.Implements(textUnmarshalerType)
}

func kindOf(typ reflect.Type) Kind {
	switch {
	case typ == timeType, typ == bytesType:
		return Primitive
	case typ == orderedMapType:
		return Dictionary
	case typ.Kind() == reflect.Ptr:
		return Pointer
	case typ.Kind() == reflect.Interface:
		return Interface
	case IsTextType(typ):
		return Primitive
	}

	switch typ.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return Primitive
	case reflect.Map:
		return Dictionary
	case reflect.Slice:
		return Collection
	case reflect.Array:
		return Array
	case reflect.Struct:
		return Object
	default:
		return Unsupported
	}
}
