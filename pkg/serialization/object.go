// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"reflect"

	"carvel.dev/yamlgraph/pkg/descriptor"
	"carvel.dev/yamlgraph/pkg/spell"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"carvel.dev/yamlgraph/pkg/yamltags"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// objectSerializer writes structs as mappings of their members.
type objectSerializer struct{}

var _ Serializable = objectSerializer{}

func (objectSerializer) ReadYaml(oc *ObjectContext) (reflect.Value, error) {
	_, err := oc.Context.Reader.Expect(yamlevents.MappingStart)
	if err != nil {
		return reflect.Value{}, err
	}
	obj, err := newInstance(oc)
	if err != nil {
		return reflect.Value{}, err
	}
	err = readMembers(oc, obj, nil)
	if err != nil {
		return reflect.Value{}, err
	}
	return obj, nil
}

func (objectSerializer) WriteYaml(oc *ObjectContext) error {
	writer := oc.Context.Writer

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
	return writer.Emit(&MappingEndEventInfo{})
}

// newInstance returns an addressable value of the described type to read
// into: the existing instance when possible, otherwise a new one from the
// object factory. Types the factory cannot construct are only readable
// into an existing instance.
func newInstance(oc *ObjectContext) (reflect.Value, error) {
	typ := oc.Descriptor.Type

	existing := oc.Instance
	hasExisting := existing.IsValid() && existing.Type() == typ
	if hasExisting && existing.CanSet() {
		return existing, nil
	}

	value, err := descriptor.Create(oc.Context.ObjectFactory(), typ)
	if err != nil {
		return reflect.Value{}, err
	}
	switch {
	case !value.IsValid() && hasExisting:
		copied := reflect.New(typ).Elem()
		copied.Set(existing)
		return copied, nil
	case !value.IsValid():
		return reflect.Value{}, &descriptor.InstanceCreationError{Type: typ, Err: errCannotConstruct}
	case value.Type() == typ && value.CanSet():
		return value, nil
	case value.Kind() == reflect.Ptr && value.Type().Elem() == typ:
		return value.Elem(), nil
	}
	return reflect.Value{}, &descriptor.InstanceCreationError{
		Type: typ,
		Err:  errors.Errorf("object factory returned %s", value.Type()),
	}
}

var errCannotConstruct = errors.New("object factory cannot construct it and no instance was given")

// specialMemberReader handles a member that is not a struct field (e.g. the
// items of a non-pure collection). It reports whether it consumed the value.
type specialMemberReader func(key *yamlevents.Event) (bool, error)

// readMembers reads mapping entries into the members of obj up to and
// including the MappingEnd.
func readMembers(oc *ObjectContext, obj reflect.Value, special specialMemberReader) error {
	ctx := oc.Context
	reader := ctx.Reader

	for !reader.Accept(yamlevents.MappingEnd) {
		keyEv, err := reader.Expect(yamlevents.Scalar)
		if err != nil {
			return err
		}

		if special != nil {
			handled, err := special(keyEv)
			if err != nil {
				return err
			}
			if handled {
				continue
			}
		}

		member := oc.Descriptor.Member(keyEv.Value)
		if member == nil {
			if ctx.Settings().IgnoreUnmatchedProperties {
				level.Debug(ctx.Logger()).Log("msg", "ignoring unknown member", "member", keyEv.Value,
					"type", oc.Descriptor.Type, "position", keyEv.StartPosition().AsCompactString())
				err := reader.Skip()
				if err != nil {
					return err
				}
				continue
			}
			return unknownMemberError(oc.Descriptor, keyEv)
		}

		field := member.GetForSet(obj)
		value, err := oc.ReadChild(field, member.Type, member)
		if err != nil {
			return errors.Wrapf(err, "reading member '%s' of %s", member.Name, oc.Descriptor.Type)
		}
		setValue(field, value)
	}

	_, err := reader.Expect(yamlevents.MappingEnd)
	return err
}

// writeMembers writes key/value pairs for the members of obj that should
// be serialized.
func writeMembers(oc *ObjectContext, obj reflect.Value) error {
	emitDefaultValues := oc.Context.Settings().EmitDefaultValues

	for _, member := range oc.Descriptor.Members {
		value := member.Get(obj)
		if !member.ShouldSerialize(value, emitDefaultValues) {
			continue
		}
		err := writeKey(oc.Context, member.Name)
		if err != nil {
			return err
		}
		err = oc.WriteChild(value, member.Type, member)
		if err != nil {
			return errors.Wrapf(err, "writing member '%s' of %s", member.Name, oc.Descriptor.Type)
		}
	}
	return nil
}

var stringType = reflect.TypeOf("")

// writeKey writes a member name (or the special collection member).
func writeKey(ctx *SerializerContext, name string) error {
	info := &ScalarEventInfo{
		ObjectEventInfo:  ObjectEventInfo{SourceValue: reflect.ValueOf(name), SourceType: stringType},
		RenderedValue:    name,
		IsPlainImplicit:  true,
		IsQuotedImplicit: true,
	}
	if ctx.Schema().Resolve(name) != yamltags.StrTag {
		info.Tag = yamltags.StrTag
		info.IsPlainImplicit = false
	}
	return ctx.Writer.Emit(info)
}

// isImplicitCollection reports whether a collection with tag can be
// written without it.
func isImplicitCollection(tag, schemaTag string) bool {
	return tag == "" || tag == schemaTag
}

func unknownMemberError(desc *descriptor.TypeDescriptor, keyEv *yamlevents.Event) error {
	var names []string
	for _, member := range desc.Members {
		names = append(names, member.Name)
	}
	if suggestion := spell.Suggest(keyEv.Value, names); suggestion != "" {
		return yamlevents.NewError(keyEv, "%s has no member '%s' (did you mean '%s'?)", desc.Type, keyEv.Value, suggestion)
	}
	return yamlevents.NewError(keyEv, "%s has no member '%s'", desc.Type, keyEv.Value)
}
