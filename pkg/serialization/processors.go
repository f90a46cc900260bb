// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"fmt"
	"reflect"
	"strings"

	"carvel.dev/yamlgraph/pkg/descriptor"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"carvel.dev/yamlgraph/pkg/yamlnode"
	"carvel.dev/yamlgraph/pkg/yamltags"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// AnchorSerializer turns aliases into the values their anchors were bound
// to. When writing with Settings.EmitAlias it gives every reference value
// (pointer, map, slice) an anchor and writes later occurrences as aliases;
// anchors nobody refers to are dropped by AnchorEventEmitter. Without
// EmitAlias, writing a cycle fails.
type AnchorSerializer struct {
	Next Serializable
}

var _ Serializable = AnchorSerializer{}

func (s AnchorSerializer) ReadYaml(oc *ObjectContext) (reflect.Value, error) {
	ctx := oc.Context

	ev, err := ctx.Reader.Peek()
	if err != nil {
		return reflect.Value{}, err
	}
	if ev == nil {
		_, err := ctx.Reader.Next()
		return reflect.Value{}, err
	}

	if ev.Kind == yamlevents.Alias {
		_, err := ctx.Reader.Next()
		if err != nil {
			return reflect.Value{}, err
		}
		value, found := ctx.anchorValues[ev.Value]
		if !found {
			return reflect.Value{}, &yamlevents.AnchorNotFoundError{Anchor: ev.Value, Start: ev.Start, End: ev.End}
		}
		return value, nil
	}

	anchor := ev.Anchor
	if anchor != "" {
		if _, found := ctx.anchorValues[anchor]; found {
			return reflect.Value{}, &yamlevents.DuplicateAnchorError{Anchor: anchor, Start: ev.Start, End: ev.End}
		}
		oc.Anchor = anchor
	}

	value, err := s.Next.ReadYaml(oc)
	if err != nil {
		return reflect.Value{}, err
	}
	if anchor != "" {
		ctx.anchorValues[anchor] = value
	}
	return value, nil
}

func (s AnchorSerializer) WriteYaml(oc *ObjectContext) error {
	ctx := oc.Context

	identity, ok := identityOf(oc.Instance)
	if !ok {
		return s.Next.WriteYaml(oc)
	}

	if !ctx.Settings().EmitAlias {
		if ctx.inProgress[identity] {
			return fmt.Errorf("%s refers to itself, which can only be written with aliases enabled", identity.typ)
		}
		ctx.inProgress[identity] = true
		defer delete(ctx.inProgress, identity)
		return s.Next.WriteYaml(oc)
	}

	if anchor, found := ctx.objectAnchors[identity]; found {
		return ctx.Writer.Emit(&AliasEventInfo{Alias: anchor, SourceValue: oc.Instance})
	}

	oc.Anchor = ctx.nextAnchor()
	ctx.objectAnchors[identity] = oc.Anchor
	return s.Next.WriteYaml(oc)
}

type objectIdentity struct {
	typ    reflect.Type
	ptr    uintptr
	length int
}

// identityOf is only defined for values that can be shared: non-nil
// pointers, maps and non-empty slices.
func identityOf(value reflect.Value) (objectIdentity, bool) {
	if !value.IsValid() {
		return objectIdentity{}, false
	}
	switch value.Kind() {
	case reflect.Ptr:
		// distinct zero-sized values may share an address
		if value.IsNil() || value.Type().Elem().Size() == 0 {
			return objectIdentity{}, false
		}
		return objectIdentity{typ: value.Type(), ptr: value.Pointer()}, true
	case reflect.Map:
		if value.IsNil() {
			return objectIdentity{}, false
		}
		return objectIdentity{typ: value.Type(), ptr: value.Pointer()}, true
	case reflect.Slice:
		if value.Len() == 0 {
			return objectIdentity{}, false
		}
		return objectIdentity{typ: value.Type(), ptr: value.Pointer(), length: value.Len()}, true
	}
	return objectIdentity{}, false
}

// TagTypeSerializer decides which type is read from the tag of the next
// node (or, for untagged nodes, from the schema) and which tag is written
// for values whose type differs from the expected one. Null scalars read
// as zero values.
type TagTypeSerializer struct {
	Next Serializable
}

var _ Serializable = TagTypeSerializer{}

var nodeInterfaceType = reflect.TypeOf((*yamlnode.Node)(nil)).Elem()

func (s TagTypeSerializer) ReadYaml(oc *ObjectContext) (reflect.Value, error) {
	ctx := oc.Context

	ev, err := ctx.Reader.Peek()
	if err != nil {
		return reflect.Value{}, err
	}
	if ev == nil {
		_, err := ctx.Reader.Next()
		return reflect.Value{}, err
	}
	oc.Tag = ev.Tag

	direct := oc.Descriptor.Kind != descriptor.Interface || s.isClaimed(ctx, oc.Descriptor)

	if ev.Kind == yamlevents.Scalar && isNullScalar(ctx.Schema(), ev) && !(direct && s.readsNull(ctx, oc.Descriptor)) {
		_, err := ctx.Reader.Next()
		return reflect.Value{}, err
	}

	var typ reflect.Type
	var instance reflect.Value

	if direct {
		typ, err = s.checkTag(ctx, oc.Descriptor, ev)
	} else {
		typ, instance, err = s.resolveType(ctx, oc.Descriptor, ev)
	}
	if err != nil {
		return reflect.Value{}, err
	}

	if typ != oc.Descriptor.Type {
		oc.Descriptor, err = ctx.FindTypeDescriptor(typ)
		if err != nil {
			return reflect.Value{}, err
		}
		existing := unwrapInterface(oc.Instance)
		switch {
		case instance.IsValid():
			oc.Instance = instance
		case existing.IsValid() && existing.Type() == typ:
			oc.Instance = existing
		default:
			oc.Instance = reflect.Value{}
		}
	}

	return s.Next.ReadYaml(oc)
}

func (s TagTypeSerializer) isClaimed(ctx *SerializerContext, desc *descriptor.TypeDescriptor) bool {
	_, err := ctx.GetSerializer(desc)
	return err == nil
}

func (s TagTypeSerializer) readsNull(ctx *SerializerContext, desc *descriptor.TypeDescriptor) bool {
	serializer, err := ctx.GetSerializer(desc)
	if err != nil {
		return false
	}
	nullReader, ok := serializer.(NullReader)
	return ok && nullReader.ReadsNull()
}

// checkTag verifies that an explicit tag agrees with a concrete expected type.
func (s TagTypeSerializer) checkTag(ctx *SerializerContext, desc *descriptor.TypeDescriptor, ev *yamlevents.Event) (reflect.Type, error) {
	expected := desc.Type
	// nodes keep their own tags
	if ev.Tag == "" || desc.Kind == descriptor.Interface || expected.Implements(nodeInterfaceType) {
		return expected, nil
	}
	// schema tags only describe the shape of the node
	if strings.HasPrefix(ctx.Schema().ShortenTag(ev.Tag), "!!") {
		return expected, nil
	}

	tagged, _ := ctx.Registry().TypeFromTag(ev.Tag)
	switch {
	case tagged == nil:
		level.Warn(ctx.Logger()).Log("msg", "ignoring unknown tag", "tag", ev.Tag,
			"type", expected, "position", ev.StartPosition().AsCompactString())
		return expected, nil
	case yamltags.Indirect(tagged) == yamltags.Indirect(expected):
		return expected, nil
	}
	return nil, yamlevents.NewError(ev, "tag '%s' (%s) cannot be read into %s", ev.Tag, tagged, expected)
}

// resolveType picks the concrete type read into an interface.
func (s TagTypeSerializer) resolveType(ctx *SerializerContext, desc *descriptor.TypeDescriptor,
	ev *yamlevents.Event) (reflect.Type, reflect.Value, error) {

	expected := desc.Type

	var typ reflect.Type
	if ev.Tag != "" {
		typ, _ = ctx.Registry().TypeFromTag(ev.Tag)
		if typ == nil {
			level.Warn(ctx.Logger()).Log("msg", "unknown tag, reading a generic value", "tag", ev.Tag,
				"position", ev.StartPosition().AsCompactString())
		}
	}

	if typ == nil && ev.Kind != yamlevents.Scalar {
		instance, err := descriptor.Create(ctx.ObjectFactory(), expected)
		if err != nil {
			return nil, reflect.Value{}, err
		}
		if instance.IsValid() {
			return instance.Type(), instance, nil
		}
	}

	if typ == nil {
		typ = genericType(ctx.Schema(), ev)
	}
	if typ.Kind() == reflect.Struct {
		typ = reflect.PtrTo(typ)
	}
	if !typ.AssignableTo(expected) {
		return nil, reflect.Value{}, yamlevents.NewError(ev, "%s cannot be read into %s", typ, expected)
	}
	return typ, reflect.Value{}, nil
}

// genericType is the type read for nodes without a usable tag.
func genericType(schema yamltags.Schema, ev *yamlevents.Event) reflect.Type {
	switch ev.Kind {
	case yamlevents.MappingStart:
		return yamltags.DefaultMapType
	case yamlevents.SequenceStart:
		return yamltags.DefaultSeqType
	}
	if ev.Tag == "" && isPlain(ev) {
		if typ := schema.TypeForDefaultTag(schema.Resolve(ev.Value)); typ != nil {
			return typ
		}
	}
	return reflect.TypeOf("")
}

func isPlain(ev *yamlevents.Event) bool {
	return ev.Style == yamlevents.PlainStyle || ev.Style == yamlevents.AnyScalarStyle
}

func isNullScalar(schema yamltags.Schema, ev *yamlevents.Event) bool {
	if ev.Tag != "" {
		return schema.ShortenTag(ev.Tag) == yamltags.NullTag
	}
	return isPlain(ev) && schema.Resolve(ev.Value) == yamltags.NullTag
}

func (s TagTypeSerializer) WriteYaml(oc *ObjectContext) error {
	ctx := oc.Context

	if isNil(oc.Instance) {
		return ctx.Writer.Emit(&ScalarEventInfo{
			ObjectEventInfo: ObjectEventInfo{Tag: yamltags.NullTag, SourceType: oc.expected},
			RenderedValue:   "null",
			Style:           yamlevents.PlainStyle,
			IsPlainImplicit: true,
		})
	}

	expected := oc.Descriptor.Type
	actual := oc.Instance.Type()

	if actual != expected {
		desc, err := ctx.FindTypeDescriptor(actual)
		if err != nil {
			return err
		}
		oc.Descriptor = desc
	}

	if ctx.Settings().EmitTags && oc.Tag == "" &&
		yamltags.Indirect(actual) != yamltags.Indirect(expected) && !actual.Implements(nodeInterfaceType) {

		tag, err := ctx.Registry().TagFromType(actual)
		if err != nil {
			return errors.Wrapf(err, "writing tag of %s", actual)
		}
		oc.Tag = tag
	}

	return s.Next.WriteYaml(oc)
}

// RoutingSerializer hands each value to the serializer of its type.
type RoutingSerializer struct{}

var _ Serializable = RoutingSerializer{}

func (RoutingSerializer) ReadYaml(oc *ObjectContext) (reflect.Value, error) {
	serializer, err := oc.Context.GetSerializer(oc.Descriptor)
	if err != nil {
		return reflect.Value{}, err
	}
	return serializer.ReadYaml(oc)
}

func (RoutingSerializer) WriteYaml(oc *ObjectContext) error {
	serializer, err := oc.Context.GetSerializer(oc.Descriptor)
	if err != nil {
		return err
	}
	return serializer.WriteYaml(oc)
}

// newProcessor builds [stages] -> anchors -> tags -> routing.
func newProcessor(settings *Settings) Serializable {
	var processor Serializable = AnchorSerializer{Next: TagTypeSerializer{Next: RoutingSerializer{}}}
	for i := len(settings.Stages) - 1; i >= 0; i-- {
		processor = settings.Stages[i](processor)
	}
	return processor
}
