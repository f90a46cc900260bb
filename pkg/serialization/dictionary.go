// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"fmt"
	"reflect"
	"sort"

	"carvel.dev/yamlgraph/pkg/orderedmap"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"carvel.dev/yamlgraph/pkg/yamltags"
	"github.com/pkg/errors"
)

var orderedMapType = reflect.TypeOf(orderedmap.Map{})

// dictionarySerializer handles Go maps, orderedmap.Map and structs with a
// field tagged `yaml:",entries"`. Structs with other members are written
// with their entries under Settings.SpecialCollectionMember.
type dictionarySerializer struct{}

var _ Serializable = dictionarySerializer{}

func (dictionarySerializer) ReadYaml(oc *ObjectContext) (reflect.Value, error) {
	ctx := oc.Context

	_, err := ctx.Reader.Expect(yamlevents.MappingStart)
	if err != nil {
		return reflect.Value{}, err
	}
	obj, err := newInstance(oc)
	if err != nil {
		return reflect.Value{}, err
	}

	entries := oc.Descriptor.Items(obj)
	if entries.Kind() == reflect.Map {
		if entries.IsNil() {
			entries.Set(reflect.MakeMap(entries.Type()))
		}
		if obj.Kind() == reflect.Map {
			oc.BindInstance(obj)
		}
	}

	if oc.Descriptor.IsPure() {
		err = readEntries(oc, entries)
	} else {
		special := ctx.Settings().SpecialCollectionMember
		err = readMembers(oc, obj, func(keyEv *yamlevents.Event) (bool, error) {
			if keyEv.Value != special {
				return false, nil
			}
			_, err := ctx.Reader.Expect(yamlevents.MappingStart)
			if err != nil {
				return true, err
			}
			return true, readEntries(oc, entries)
		})
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return obj, nil
}

// readEntries reads key/value pairs into entries (a Go map or an
// orderedmap.Map) up to and including the MappingEnd. Entries already
// present in an existing instance are overwritten.
func readEntries(oc *ObjectContext, entries reflect.Value) error {
	reader := oc.Context.Reader
	desc := oc.Descriptor

	var ordered *orderedmap.Map
	if entries.Type() == orderedMapType {
		ordered = entries.Addr().Interface().(*orderedmap.Map)
	}
	seen := newKeySet()

	for !reader.Accept(yamlevents.MappingEnd) {
		keyEv, err := reader.Peek()
		if err != nil {
			return err
		}
		key, err := oc.ReadChild(reflect.Value{}, desc.KeyType, nil)
		if err != nil {
			return errors.Wrapf(err, "reading key of %s", desc.Type)
		}
		if !key.IsValid() {
			key = reflect.Zero(desc.KeyType)
		}
		if ordered == nil && !isHashable(key) {
			return yamlevents.NewError(keyEv, "key of type %s cannot be used in %s", unwrapInterface(key).Type(), desc.Type)
		}
		if !seen.add(key.Interface()) {
			return yamlevents.NewError(keyEv, "duplicate key '%v'", key.Interface())
		}

		value, err := oc.ReadChild(reflect.Value{}, desc.ElementType, nil)
		if err != nil {
			return errors.Wrapf(err, "reading value of key '%v'", key.Interface())
		}

		if ordered != nil {
			ordered.Set(key.Interface(), interfaceOf(value))
			continue
		}
		if !value.IsValid() {
			value = reflect.Zero(desc.ElementType)
		}
		entries.SetMapIndex(key, value)
	}

	_, err := reader.Expect(yamlevents.MappingEnd)
	return err
}

// keySet tracks the keys of one mapping. Keys that cannot be hashed
// (e.g. sequences read into interface{}) are compared structurally.
type keySet struct {
	hashed map[interface{}]struct{}
	other  *orderedmap.Map
}

func newKeySet() *keySet {
	return &keySet{hashed: map[interface{}]struct{}{}, other: orderedmap.NewMap()}
}

// add reports false if key was already present.
func (s *keySet) add(key interface{}) bool {
	if key == nil || reflect.TypeOf(key).Comparable() {
		if _, found := s.hashed[key]; found {
			return false
		}
		s.hashed[key] = struct{}{}
		return true
	}
	if _, found := s.other.Get(key); found {
		return false
	}
	s.other.Set(key, true)
	return true
}

func isHashable(key reflect.Value) bool {
	value := unwrapInterface(key)
	return !value.IsValid() || value.Type().Comparable()
}

func interfaceOf(value reflect.Value) interface{} {
	if !value.IsValid() {
		return nil
	}
	return value.Interface()
}

func (dictionarySerializer) WriteYaml(oc *ObjectContext) error {
	ctx := oc.Context
	writer := ctx.Writer
	desc := oc.Descriptor
	obj := oc.Instance

	err := writer.Emit(&MappingStartEventInfo{
		ObjectEventInfo: oc.objectInfo(),
		IsImplicit:      isImplicitCollection(oc.Tag, yamltags.MapTag),
		Style:           oc.Style,
	})
	if err != nil {
		return err
	}

	entries := obj
	if desc.ItemsMember != nil {
		entries = desc.ItemsMember.Get(obj)
	}

	if desc.IsPure() {
		err = writeEntries(oc, entries)
	} else {
		err = writeMembers(oc, obj)
		if err == nil && entries.IsValid() && entryCount(entries) > 0 {
			err = writeSpecialEntries(oc, entries)
		}
	}
	if err != nil {
		return err
	}
	return writer.Emit(&MappingEndEventInfo{})
}

func writeSpecialEntries(oc *ObjectContext, entries reflect.Value) error {
	ctx := oc.Context

	err := writeKey(ctx, ctx.Settings().SpecialCollectionMember)
	if err != nil {
		return err
	}
	err = ctx.Writer.Emit(&MappingStartEventInfo{IsImplicit: true, Style: oc.Style})
	if err != nil {
		return err
	}
	err = writeEntries(oc, entries)
	if err != nil {
		return err
	}
	return ctx.Writer.Emit(&MappingEndEventInfo{})
}

func entryCount(entries reflect.Value) int {
	if entries.Type() == orderedMapType {
		return orderedMapOf(entries).Len()
	}
	return entries.Len()
}

func orderedMapOf(value reflect.Value) *orderedmap.Map {
	if value.CanAddr() {
		return value.Addr().Interface().(*orderedmap.Map)
	}
	copied := value.Interface().(orderedmap.Map)
	return &copied
}

// writeEntries writes key/value pairs. Go maps are always written in
// sorted key order; ordered maps keep insertion order unless
// Settings.SortKeyForMapping is set.
func writeEntries(oc *ObjectContext, entries reflect.Value) error {
	desc := oc.Descriptor
	settings := oc.Context.Settings()

	if entries.Type() == orderedMapType {
		items := orderedMapOf(entries).Items()
		if settings.SortKeyForMapping {
			less := keyComparer(settings.ComparerForKeySorting)
			sort.SliceStable(items, func(i, j int) bool {
				return less(reflect.ValueOf(items[i].Key), reflect.ValueOf(items[j].Key))
			})
		}
		for _, item := range items {
			err := writeEntry(oc, reflect.ValueOf(&item.Key).Elem(), reflect.ValueOf(&item.Value).Elem())
			if err != nil {
				return err
			}
		}
		return nil
	}

	keys := entries.MapKeys()
	less := keyComparer(settings.ComparerForKeySorting)
	sort.SliceStable(keys, func(i, j int) bool { return less(keys[i], keys[j]) })

	for _, key := range keys {
		err := writeEntry(oc, key, entries.MapIndex(key))
		if err != nil {
			return errors.Wrapf(err, "writing %s", desc.Type)
		}
	}
	return nil
}

func writeEntry(oc *ObjectContext, key, value reflect.Value) error {
	desc := oc.Descriptor

	err := oc.WriteChild(key, desc.KeyType, nil)
	if err != nil {
		return err
	}
	err = oc.WriteChild(value, desc.ElementType, nil)
	if err != nil {
		return errors.Wrapf(err, "writing value of key '%v'", interfaceOf(unwrapInterface(key)))
	}
	return nil
}

// keyComparer orders numeric keys by value and everything else by the
// text comparer. Numbers sort before text.
func keyComparer(text func(a, b string) bool) func(a, b reflect.Value) bool {
	return func(a, b reflect.Value) bool {
		a, b = unwrapInterface(a), unwrapInterface(b)
		an, aNumeric := numericKey(a)
		bn, bNumeric := numericKey(b)
		switch {
		case aNumeric && bNumeric:
			return an < bn
		case aNumeric != bNumeric:
			return aNumeric
		}
		return text(keyText(a), keyText(b))
	}
}

func numericKey(value reflect.Value) (float64, bool) {
	if !value.IsValid() {
		return 0, false
	}
	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(value.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(value.Uint()), true
	case reflect.Float32, reflect.Float64:
		return value.Float(), true
	}
	return 0, false
}

func keyText(value reflect.Value) string {
	if !value.IsValid() {
		return ""
	}
	if value.Kind() == reflect.String {
		return value.String()
	}
	return fmt.Sprint(value.Interface())
}
