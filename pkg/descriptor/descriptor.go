// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package descriptor

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

type TypeDescriptor struct {
	Type reflect.Type
	Kind Kind

	// Members are the serializable struct fields (without the items/entries field).
	Members []*Member

	// KeyType and ElementType describe dictionaries (including orderedmap.Map),
	// collections, arrays and pointers.
	KeyType     reflect.Type
	ElementType reflect.Type

	// ItemsMember holds the items of a struct collection or dictionary.
	ItemsMember *Member

	membersByName map[string]*Member
}

// Member finds a member by its serialized name.
func (d *TypeDescriptor) Member(name string) *Member {
	return d.membersByName[name]
}

// IsPure reports whether a collection or dictionary carries nothing but its
// items, so that it can be written as a plain sequence or mapping.
func (d *TypeDescriptor) IsPure() bool {
	return d.ItemsMember == nil || len(d.Members) == 0
}

// Items returns the value holding a collection's or dictionary's items.
func (d *TypeDescriptor) Items(obj reflect.Value) reflect.Value {
	if d.ItemsMember == nil {
		return obj
	}
	return d.ItemsMember.GetForSet(obj)
}

func (d *TypeDescriptor) String() string {
	return fmt.Sprintf("%s (%s)", d.Type, d.Kind)
}

type FactoryOpts struct {
	NamingConvention NamingConvention
	// SortMembers orders members with Less instead of declaration order.
	SortMembers bool
	Less        func(a, b string) bool
}

// Factory builds and caches descriptors. It is safe for concurrent use.
type Factory struct {
	opts FactoryOpts

	lock        sync.RWMutex
	descriptors map[reflect.Type]*TypeDescriptor
}

func NewFactory(opts FactoryOpts) *Factory {
	if opts.NamingConvention == nil {
		opts.NamingConvention = DefaultNamingConvention{}
	}
	if opts.Less == nil {
		opts.Less = func(a, b string) bool { return a < b }
	}
	return &Factory{opts: opts, descriptors: map[reflect.Type]*TypeDescriptor{}}
}

func (f *Factory) Find(typ reflect.Type) (*TypeDescriptor, error) {
	if typ == nil {
		return nil, fmt.Errorf("expected non-nil type")
	}

	f.lock.RLock()
	desc, found := f.descriptors[typ]
	f.lock.RUnlock()
	if found {
		return desc, nil
	}

	desc, err := f.build(typ)
	if err != nil {
		return nil, err
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	if existing, found := f.descriptors[typ]; found {
		return existing, nil
	}
	f.descriptors[typ] = desc
	return desc, nil
}

func (f *Factory) build(typ reflect.Type) (*TypeDescriptor, error) {
	desc := &TypeDescriptor{Type: typ, Kind: kindOf(typ), membersByName: map[string]*Member{}}

	switch desc.Kind {
	case Dictionary:
		if typ == orderedMapType {
			desc.KeyType = emptyInterfaceType
			desc.ElementType = emptyInterfaceType
		} else {
			desc.KeyType, desc.ElementType = typ.Key(), typ.Elem()
		}

	case Collection, Array, Pointer:
		desc.ElementType = typ.Elem()

	case Object:
		err := f.collectMembers(desc, typ, nil, map[reflect.Type]bool{})
		if err != nil {
			return nil, err
		}
		if desc.ItemsMember != nil {
			itemsType := desc.ItemsMember.Type
			switch {
			case itemsType.Kind() == reflect.Slice:
				desc.Kind = Collection
				desc.ElementType = itemsType.Elem()
			case itemsType.Kind() == reflect.Map:
				desc.Kind = Dictionary
				desc.KeyType, desc.ElementType = itemsType.Key(), itemsType.Elem()
			default:
				return nil, fmt.Errorf("field '%s' of %s holds items, but is not a slice or a map",
					desc.ItemsMember.FieldName, typ)
			}
		}
		f.orderMembers(desc)
	}

	return desc, nil
}

var emptyInterfaceType = reflect.TypeOf((*interface{})(nil)).Elem()

func (f *Factory) collectMembers(desc *TypeDescriptor, typ reflect.Type, index []int, visiting map[reflect.Type]bool) error {
	if visiting[typ] {
		return nil
	}
	visiting[typ] = true
	defer delete(visiting, typ)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := parseFieldTag(field)
		if tag.skip {
			continue
		}

		fieldIndex := append(append([]int{}, index...), i)

		if field.Anonymous && tag.name == "" {
			embedded := field.Type
			if embedded.Kind() == reflect.Ptr {
				if !field.IsExported() {
					// cannot be allocated through reflection
					continue
				}
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				err := f.collectMembers(desc, embedded, fieldIndex, visiting)
				if err != nil {
					return err
				}
				continue
			}
		}

		if !field.IsExported() {
			continue
		}

		member := &Member{
			Name:      tag.name,
			FieldName: field.Name,
			Type:      field.Type,
			Index:     fieldIndex,
			OmitEmpty: tag.omitEmpty,
			Flow:      tag.flow,
			Order:     len(desc.Members),
		}
		if member.Name == "" {
			member.Name = f.opts.NamingConvention.Convert(field.Name)
		}

		if tag.items || tag.entries {
			if desc.ItemsMember != nil {
				return fmt.Errorf("%s has more than one items field", desc.Type)
			}
			desc.ItemsMember = member
			continue
		}

		if existing, found := desc.membersByName[member.Name]; found {
			// the shallower field wins, like Go's own field promotion
			if len(existing.Index) <= len(member.Index) {
				continue
			}
			desc.Members = removeMember(desc.Members, existing)
		}

		desc.Members = append(desc.Members, member)
		desc.membersByName[member.Name] = member
	}
	return nil
}

func (f *Factory) orderMembers(desc *TypeDescriptor) {
	for i, member := range desc.Members {
		member.Order = i
	}
	if f.opts.SortMembers {
		sort.SliceStable(desc.Members, func(i, j int) bool {
			return f.opts.Less(desc.Members[i].Name, desc.Members[j].Name)
		})
	}
}

func removeMember(members []*Member, toRemove *Member) []*Member {
	var result []*Member
	for _, member := range members {
		if member != toRemove {
			result = append(result, member)
		}
	}
	return result
}
