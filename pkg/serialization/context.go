// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"fmt"
	"reflect"

	"carvel.dev/yamlgraph/pkg/descriptor"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"carvel.dev/yamlgraph/pkg/yamltags"
	"github.com/go-kit/log"
)

// SerializerContext is the state of one Serialize or Deserialize call.
// It must not be shared between goroutines.
type SerializerContext struct {
	serializer *Serializer

	Reader *yamlevents.Reader
	Writer EventEmitter

	// write side: identity of reference values -> anchor
	objectAnchors map[objectIdentity]string
	usedAnchors   map[string]bool
	anchorCount   int
	// reference values being written when aliases are disabled
	inProgress map[objectIdentity]bool

	// read side: anchor -> value
	anchorValues map[string]reflect.Value
}

func newSerializerContext(serializer *Serializer) *SerializerContext {
	return &SerializerContext{
		serializer:    serializer,
		objectAnchors: map[objectIdentity]string{},
		usedAnchors:   map[string]bool{},
		inProgress:    map[objectIdentity]bool{},
		anchorValues:  map[string]reflect.Value{},
	}
}

func (c *SerializerContext) Serializer() *Serializer      { return c.serializer }
func (c *SerializerContext) Settings() *Settings          { return c.serializer.settings }
func (c *SerializerContext) Logger() log.Logger           { return c.serializer.settings.Logger }
func (c *SerializerContext) Schema() yamltags.Schema      { return c.serializer.settings.Schema }
func (c *SerializerContext) Registry() *yamltags.Registry { return c.serializer.settings.Registry }

func (c *SerializerContext) ObjectFactory() descriptor.ObjectFactory {
	return c.serializer.settings.ObjectFactory
}

func (c *SerializerContext) NamingConvention() descriptor.NamingConvention {
	return c.serializer.settings.NamingConvention
}

// FindTypeDescriptor describes typ; a nil typ stands for interface{}.
func (c *SerializerContext) FindTypeDescriptor(typ reflect.Type) (*descriptor.TypeDescriptor, error) {
	if typ == nil {
		typ = emptyInterfaceType
	}
	return c.serializer.descriptors.Find(typ)
}

func (c *SerializerContext) GetSerializer(desc *descriptor.TypeDescriptor) (Serializable, error) {
	return c.serializer.selector.GetSerializer(c, desc)
}

// NewObjectContext starts reading or writing a value of the expected type.
func (c *SerializerContext) NewObjectContext(instance reflect.Value, expected reflect.Type) (*ObjectContext, error) {
	desc, err := c.FindTypeDescriptor(expected)
	if err != nil {
		return nil, err
	}
	return &ObjectContext{Context: c, Instance: instance, Descriptor: desc, expected: desc.Type}, nil
}

// ReadYaml reads one node through the whole processor chain. The result is
// assignable to the type the context was created for; an invalid value
// stands for nil.
func (c *SerializerContext) ReadYaml(oc *ObjectContext) (reflect.Value, error) {
	value, err := c.serializer.processor.ReadYaml(oc)
	if err != nil {
		return reflect.Value{}, err
	}
	return coerce(value, oc.expected)
}

// WriteYaml writes one node through the whole processor chain.
func (c *SerializerContext) WriteYaml(oc *ObjectContext) error {
	oc.Instance = unwrapInterface(oc.Instance)
	return c.serializer.processor.WriteYaml(oc)
}

func (c *SerializerContext) nextAnchor() string {
	for {
		c.anchorCount++
		anchor := fmt.Sprintf("o%d", c.anchorCount)
		if !c.usedAnchors[anchor] {
			c.usedAnchors[anchor] = true
			return anchor
		}
	}
}

// ObjectContext describes one value being read or written.
type ObjectContext struct {
	Context *SerializerContext

	// Instance is the value to write, or an existing value to read into
	// (invalid when there is none).
	Instance   reflect.Value
	Descriptor *descriptor.TypeDescriptor

	ParentDescriptor *descriptor.TypeDescriptor
	ParentMember     *descriptor.Member

	Tag    string
	Anchor string
	Style  yamlevents.CollectionStyle

	expected reflect.Type
}

// Child describes a nested value of the expected type, e.g. a struct
// member (member may be nil).
func (oc *ObjectContext) Child(instance reflect.Value, expected reflect.Type, member *descriptor.Member) (*ObjectContext, error) {
	child, err := oc.Context.NewObjectContext(instance, expected)
	if err != nil {
		return nil, err
	}
	child.ParentDescriptor = oc.Descriptor
	child.ParentMember = member
	if member != nil && member.Flow {
		child.Style = yamlevents.FlowStyle
	}
	return child, nil
}

// BindInstance makes value available to aliases of this node before the
// node has been read completely, which is how cycles are rebuilt.
func (oc *ObjectContext) BindInstance(value reflect.Value) {
	if oc.Anchor != "" {
		oc.Context.anchorValues[oc.Anchor] = value
	}
}

// ReadChild reads a nested value through the whole processor chain.
func (oc *ObjectContext) ReadChild(existing reflect.Value, expected reflect.Type, member *descriptor.Member) (reflect.Value, error) {
	child, err := oc.Child(existing, expected, member)
	if err != nil {
		return reflect.Value{}, err
	}
	return oc.Context.ReadYaml(child)
}

// WriteChild writes a nested value through the whole processor chain.
func (oc *ObjectContext) WriteChild(value reflect.Value, expected reflect.Type, member *descriptor.Member) error {
	child, err := oc.Child(value, expected, member)
	if err != nil {
		return err
	}
	return oc.Context.WriteYaml(child)
}

func (oc *ObjectContext) objectInfo() ObjectEventInfo {
	return ObjectEventInfo{Anchor: oc.Anchor, Tag: oc.Tag, SourceValue: oc.Instance, SourceType: oc.expected}
}

var emptyInterfaceType = reflect.TypeOf((*interface{})(nil)).Elem()

func unwrapInterface(value reflect.Value) reflect.Value {
	for value.IsValid() && value.Kind() == reflect.Interface {
		if value.IsNil() {
			return reflect.Value{}
		}
		value = value.Elem()
	}
	return value
}

func isNil(value reflect.Value) bool {
	if !value.IsValid() {
		return true
	}
	switch value.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return value.IsNil()
	}
	return false
}

// coerce makes value assignable to expected, following pointers both ways.
func coerce(value reflect.Value, expected reflect.Type) (reflect.Value, error) {
	if expected == nil {
		return value, nil
	}
	if !value.IsValid() {
		if expected.Kind() == reflect.Interface {
			return value, nil
		}
		return reflect.Zero(expected), nil
	}

	typ := value.Type()
	switch {
	case typ.AssignableTo(expected):
		return value, nil

	case expected.Kind() == reflect.Ptr && typ.AssignableTo(expected.Elem()):
		ptr := reflect.New(expected.Elem())
		ptr.Elem().Set(value)
		return ptr, nil

	case typ.Kind() == reflect.Ptr && typ.Elem().AssignableTo(expected):
		if value.IsNil() {
			return reflect.Zero(expected), nil
		}
		return value.Elem(), nil

	case typ.Kind() == expected.Kind() && typ.ConvertibleTo(expected):
		return value.Convert(expected), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot assign %s to %s", typ, expected)
}

// setValue sets target to value, or to its zero value when value is nil.
func setValue(target, value reflect.Value) {
	if !value.IsValid() {
		target.Set(reflect.Zero(target.Type()))
		return
	}
	target.Set(value)
}
