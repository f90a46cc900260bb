// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"reflect"

	"carvel.dev/yamlgraph/pkg/descriptor"
)

type pointerSerializer struct{}

var _ Serializable = pointerSerializer{}

// ReadYaml allocates (or reuses) the pointer and binds it to the node's
// anchor before reading the element, so aliases inside the element can
// refer back to it.
func (pointerSerializer) ReadYaml(oc *ObjectContext) (reflect.Value, error) {
	ctx := oc.Context
	ptrType := oc.Descriptor.Type

	ptr := oc.Instance
	if !ptr.IsValid() || ptr.Type() != ptrType || ptr.IsNil() {
		var err error
		ptr, err = descriptor.Create(ctx.ObjectFactory(), ptrType)
		if err != nil {
			return reflect.Value{}, err
		}
		if !ptr.IsValid() {
			return reflect.Value{}, &descriptor.InstanceCreationError{Type: ptrType, Err: errCannotConstruct}
		}
	}
	oc.BindInstance(ptr)

	elem, err := pointerElement(oc, ptr.Elem(), "")
	if err != nil {
		return reflect.Value{}, err
	}
	serializer, err := ctx.GetSerializer(elem.Descriptor)
	if err != nil {
		return reflect.Value{}, err
	}
	value, err := serializer.ReadYaml(elem)
	if err != nil {
		return reflect.Value{}, err
	}
	setValue(ptr.Elem(), value)
	return ptr, nil
}

func (pointerSerializer) WriteYaml(oc *ObjectContext) error {
	elem, err := pointerElement(oc, oc.Instance.Elem(), oc.Anchor)
	if err != nil {
		return err
	}
	serializer, err := oc.Context.GetSerializer(elem.Descriptor)
	if err != nil {
		return err
	}
	return serializer.WriteYaml(elem)
}

// pointerElement describes the element with the pointer's tag and style;
// anchors and tags were already handled for the pointer itself.
func pointerElement(oc *ObjectContext, elem reflect.Value, anchor string) (*ObjectContext, error) {
	desc, err := oc.Context.FindTypeDescriptor(elem.Type())
	if err != nil {
		return nil, err
	}
	return &ObjectContext{
		Context:          oc.Context,
		Instance:         elem,
		Descriptor:       desc,
		ParentDescriptor: oc.ParentDescriptor,
		ParentMember:     oc.ParentMember,
		Tag:              oc.Tag,
		Anchor:           anchor,
		Style:            oc.Style,
		expected:         desc.Type,
	}, nil
}
