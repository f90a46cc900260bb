// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package descriptor

import (
	"fmt"
	"reflect"
)

// ObjectFactory creates instances to deserialize into. An invalid value
// (with a nil error) means the type cannot be constructed.
type ObjectFactory interface {
	Create(typ reflect.Type) (reflect.Value, error)
}

// DefaultObjectFactory constructs maps, slices, structs and pointers.
// Defaults maps a requested type (typically an interface) to the concrete
// type to construct instead.
type DefaultObjectFactory struct {
	Defaults map[reflect.Type]reflect.Type
}

var _ ObjectFactory = &DefaultObjectFactory{}

func NewDefaultObjectFactory(defaults map[reflect.Type]reflect.Type) *DefaultObjectFactory {
	if defaults == nil {
		defaults = map[reflect.Type]reflect.Type{}
	}
	return &DefaultObjectFactory{Defaults: defaults}
}

// SetDefault registers the concrete type used when iface is requested.
func (f *DefaultObjectFactory) SetDefault(iface, concrete reflect.Type) error {
	if iface.Kind() == reflect.Interface && !concrete.Implements(iface) {
		return fmt.Errorf("%s does not implement %s", concrete, iface)
	}
	f.Defaults[iface] = concrete
	return nil
}

// Create returns addressable values for structs, maps and slices and
// a new pointer for pointer types.
func (f *DefaultObjectFactory) Create(typ reflect.Type) (reflect.Value, error) {
	requested := typ
	if concrete, found := f.Defaults[typ]; found {
		typ = concrete
	}

	var result reflect.Value

	switch typ.Kind() {
	case reflect.Ptr:
		result = reflect.New(typ.Elem())
	case reflect.Struct:
		result = reflect.New(typ).Elem()
	case reflect.Map:
		result = reflect.New(typ).Elem()
		result.Set(reflect.MakeMap(typ))
	case reflect.Slice:
		result = reflect.New(typ).Elem()
		result.Set(reflect.MakeSlice(typ, 0, 0))
	default:
		return reflect.Value{}, nil
	}

	if requested != typ && requested.Kind() == reflect.Interface && !typ.Implements(requested) {
		return reflect.Value{}, fmt.Errorf("default implementation %s does not implement %s", typ, requested)
	}
	return result, nil
}

// InstanceCreationError is returned when an ObjectFactory fails.
type InstanceCreationError struct {
	Type reflect.Type
	Err  error
}

func (e *InstanceCreationError) Error() string {
	return fmt.Sprintf("creating instance of %s: %s", e.Type, e.Err)
}

func (e *InstanceCreationError) Unwrap() error { return e.Err }

// Create calls factory and wraps its errors.
func Create(factory ObjectFactory, typ reflect.Type) (reflect.Value, error) {
	value, err := factory.Create(typ)
	if err != nil {
		return reflect.Value{}, &InstanceCreationError{Type: typ, Err: err}
	}
	return value, nil
}
