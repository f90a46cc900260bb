// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"reflect"

	"carvel.dev/yamlgraph/pkg/descriptor"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"carvel.dev/yamlgraph/pkg/yamltags"
	"github.com/pkg/errors"
)

// collectionSerializer handles slices and structs with a field tagged
// `yaml:",items"`. Structs with other members are written as mappings
// with their items under Settings.SpecialCollectionMember.
type collectionSerializer struct{}

var _ Serializable = collectionSerializer{}

func (collectionSerializer) ReadYaml(oc *ObjectContext) (reflect.Value, error) {
	ctx := oc.Context
	desc := oc.Descriptor

	if desc.IsPure() {
		_, err := ctx.Reader.Expect(yamlevents.SequenceStart)
		if err != nil {
			return reflect.Value{}, err
		}
	} else {
		_, err := ctx.Reader.Expect(yamlevents.MappingStart)
		if err != nil {
			return reflect.Value{}, err
		}
	}

	obj, err := newInstance(oc)
	if err != nil {
		return reflect.Value{}, err
	}
	items := desc.Items(obj)

	if desc.IsPure() {
		err = readItems(oc, items)
	} else {
		special := ctx.Settings().SpecialCollectionMember
		err = readMembers(oc, obj, func(keyEv *yamlevents.Event) (bool, error) {
			if keyEv.Value != special {
				return false, nil
			}
			_, err := ctx.Reader.Expect(yamlevents.SequenceStart)
			if err != nil {
				return true, err
			}
			return true, readItems(oc, items)
		})
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return obj, nil
}

// readItems replaces the contents of the slice items with the sequence
// items up to and including the SequenceEnd.
func readItems(oc *ObjectContext, items reflect.Value) error {
	if oc.Anchor != "" && oc.Descriptor.ItemsMember == nil && items.Kind() == reflect.Slice {
		return readAnchoredItems(oc, items)
	}

	reader := oc.Context.Reader
	elemType := oc.Descriptor.ElementType

	result := reflect.MakeSlice(items.Type(), 0, 0)
	for !reader.Accept(yamlevents.SequenceEnd) {
		item, err := oc.ReadChild(reflect.Value{}, elemType, nil)
		if err != nil {
			return errors.Wrapf(err, "reading item %d of %s", result.Len(), oc.Descriptor.Type)
		}
		if !item.IsValid() {
			item = reflect.Zero(elemType)
		}
		result = reflect.Append(result, item)
	}
	items.Set(result)

	_, err := reader.Expect(yamlevents.SequenceEnd)
	return err
}

// readAnchoredItems sizes the slice before reading its items so that
// aliases to the sequence from inside it share its backing array.
func readAnchoredItems(oc *ObjectContext, items reflect.Value) error {
	ctx := oc.Context
	elemType := oc.Descriptor.ElementType

	events, count, err := bufferSequence(ctx.Reader)
	if err != nil {
		return err
	}

	items.Set(reflect.MakeSlice(items.Type(), count, count))
	oc.BindInstance(items)

	outer := ctx.Reader
	ctx.Reader = yamlevents.NewReader(yamlevents.NewSliceParser(events...))
	defer func() { ctx.Reader = outer }()

	for i := 0; i < count; i++ {
		item, err := oc.ReadChild(reflect.Value{}, elemType, nil)
		if err != nil {
			return errors.Wrapf(err, "reading item %d of %s", i, oc.Descriptor.Type)
		}
		setValue(items.Index(i), item)
	}

	_, err = ctx.Reader.Expect(yamlevents.SequenceEnd)
	return err
}

// bufferSequence consumes the rest of a sequence whose start has been read,
// returning its events up to and including the closing SequenceEnd and the
// number of items it holds.
func bufferSequence(reader *yamlevents.Reader) ([]*yamlevents.Event, int, error) {
	var events []*yamlevents.Event
	count, depth := 0, 0

	for {
		ev, err := reader.Next()
		if err != nil {
			return nil, 0, err
		}
		events = append(events, ev)

		switch ev.Kind {
		case yamlevents.Scalar, yamlevents.Alias:
			if depth == 0 {
				count++
			}
		case yamlevents.SequenceStart, yamlevents.MappingStart:
			if depth == 0 {
				count++
			}
			depth++
		case yamlevents.SequenceEnd, yamlevents.MappingEnd:
			if depth == 0 {
				return events, count, nil
			}
			depth--
		}
	}
}

func (collectionSerializer) WriteYaml(oc *ObjectContext) error {
	desc := oc.Descriptor
	writer := oc.Context.Writer

	items := oc.Instance
	if desc.ItemsMember != nil {
		items = desc.ItemsMember.Get(oc.Instance)
	}

	if desc.IsPure() {
		return writeSequence(oc, oc.objectInfo(), items)
	}

	err := writer.Emit(&MappingStartEventInfo{
		ObjectEventInfo: oc.objectInfo(),
		IsImplicit:      isImplicitCollection(oc.Tag, yamltags.MapTag),
		Style:           oc.Style,
	})
	if err != nil {
		return err
	}
	err = writeMembers(oc, oc.Instance)
	if err != nil {
		return err
	}
	if items.IsValid() && items.Len() > 0 {
		err = writeKey(oc.Context, oc.Context.Settings().SpecialCollectionMember)
		if err != nil {
			return err
		}
		err = writeSequence(oc, ObjectEventInfo{}, items)
		if err != nil {
			return err
		}
	}
	return writer.Emit(&MappingEndEventInfo{})
}

// writeSequence writes the elements of a slice or an array.
func writeSequence(oc *ObjectContext, info ObjectEventInfo, items reflect.Value) error {
	writer := oc.Context.Writer
	elemType := oc.Descriptor.ElementType

	style, err := sequenceStyle(oc, items)
	if err != nil {
		return err
	}
	err = writer.Emit(&SequenceStartEventInfo{
		ObjectEventInfo: info,
		IsImplicit:      isImplicitCollection(info.Tag, yamltags.SeqTag),
		Style:           style,
	})
	if err != nil {
		return err
	}

	length := 0
	if items.IsValid() {
		length = items.Len()
	}
	for i := 0; i < length; i++ {
		err := oc.WriteChild(items.Index(i), elemType, nil)
		if err != nil {
			return errors.Wrapf(err, "writing item %d of %s", i, oc.Descriptor.Type)
		}
	}
	return writer.Emit(&SequenceEndEventInfo{})
}

// sequenceStyle keeps an explicit flow style and otherwise uses flow style
// for short sequences of primitives (Settings.LimitPrimitiveFlowSequence).
func sequenceStyle(oc *ObjectContext, items reflect.Value) (yamlevents.CollectionStyle, error) {
	if oc.Style == yamlevents.FlowStyle {
		return oc.Style, nil
	}
	limit := oc.Context.Settings().LimitPrimitiveFlowSequence
	if limit == 0 || !items.IsValid() || items.Len() == 0 || items.Len() > limit {
		return oc.Style, nil
	}
	for i := 0; i < items.Len(); i++ {
		item := unwrapInterface(items.Index(i))
		if !item.IsValid() {
			continue
		}
		desc, err := oc.Context.FindTypeDescriptor(item.Type())
		if err != nil {
			return oc.Style, err
		}
		if desc.Kind != descriptor.Primitive {
			return oc.Style, nil
		}
	}
	return yamlevents.FlowStyle, nil
}

// arraySerializer handles fixed size arrays. Missing items are left at
// their zero value.
type arraySerializer struct{}

var _ Serializable = arraySerializer{}

func (arraySerializer) ReadYaml(oc *ObjectContext) (reflect.Value, error) {
	reader := oc.Context.Reader
	desc := oc.Descriptor

	startEv, err := reader.Expect(yamlevents.SequenceStart)
	if err != nil {
		return reflect.Value{}, err
	}

	array := reflect.New(desc.Type).Elem()
	i := 0
	for !reader.Accept(yamlevents.SequenceEnd) {
		if i >= array.Len() {
			return reflect.Value{}, yamlevents.NewError(startEv, "too many items for %s", desc.Type)
		}
		item, err := oc.ReadChild(reflect.Value{}, desc.ElementType, nil)
		if err != nil {
			return reflect.Value{}, errors.Wrapf(err, "reading item %d of %s", i, desc.Type)
		}
		setValue(array.Index(i), item)
		i++
	}

	_, err = reader.Expect(yamlevents.SequenceEnd)
	if err != nil {
		return reflect.Value{}, err
	}
	return array, nil
}

func (arraySerializer) WriteYaml(oc *ObjectContext) error {
	return writeSequence(oc, oc.objectInfo(), oc.Instance)
}
