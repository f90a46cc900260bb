// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"reflect"

	"carvel.dev/yamlgraph/pkg/descriptor"
)

// Serializable reads and writes values described by an ObjectContext.
//
// ReadYaml consumes exactly one node from the context's reader and returns
// a value of oc.Descriptor.Type (an invalid value stands for nil).
// WriteYaml emits exactly one node for oc.Instance.
type Serializable interface {
	ReadYaml(oc *ObjectContext) (reflect.Value, error)
	WriteYaml(oc *ObjectContext) error
}

// SerializableFactory returns a Serializable for the described type, or
// nil if it does not handle it.
type SerializableFactory interface {
	TryCreate(ctx *SerializerContext, desc *descriptor.TypeDescriptor) Serializable
}

// Profiled factories are only used by serializers whose Settings.Profile
// is one of Profiles. Factories without profiles are always used.
type Profiled interface {
	Profiles() []string
}

// NullReader is implemented by serializers that want to see null scalars
// themselves instead of getting a zero value.
type NullReader interface {
	ReadsNull() bool
}

type typeSerializerFactory struct {
	serializers map[reflect.Type]Serializable
}

var _ SerializableFactory = typeSerializerFactory{}

func (f typeSerializerFactory) TryCreate(_ *SerializerContext, desc *descriptor.TypeDescriptor) Serializable {
	return f.serializers[desc.Type]
}

type kindSerializerFactory struct {
	kind       descriptor.Kind
	serializer Serializable
}

var _ SerializableFactory = kindSerializerFactory{}

func (f kindSerializerFactory) TryCreate(_ *SerializerContext, desc *descriptor.TypeDescriptor) Serializable {
	if desc.Kind == f.kind {
		return f.serializer
	}
	return nil
}

// defaultFactories are consulted after user factories, most specific first.
func defaultFactories() []SerializableFactory {
	return []SerializableFactory{
		nodeSerializerFactory{},
		kindSerializerFactory{descriptor.Pointer, pointerSerializer{}},
		kindSerializerFactory{descriptor.Primitive, primitiveSerializer{}},
		kindSerializerFactory{descriptor.Dictionary, dictionarySerializer{}},
		kindSerializerFactory{descriptor.Collection, collectionSerializer{}},
		kindSerializerFactory{descriptor.Array, arraySerializer{}},
		kindSerializerFactory{descriptor.Object, objectSerializer{}},
	}
}
