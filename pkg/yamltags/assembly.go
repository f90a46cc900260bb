// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamltags

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

const BuiltinAssemblyName = "go"

// Assembly is a named set of Go types that tags may refer to, plus the tag
// mappings those types declare.
type Assembly struct {
	name string

	types     map[string]reflect.Type
	instances map[string][]reflect.Type
	tags      []TagMapping
}

type TagMapping struct {
	Tag     string
	Type    reflect.Type
	IsAlias bool
}

func NewAssembly(name string) *Assembly {
	if name == "" || strings.ContainsAny(name, ",[]") {
		panic(fmt.Sprintf("Invalid assembly name '%s'", name))
	}
	return &Assembly{
		name:      name,
		types:     map[string]reflect.Type{},
		instances: map[string][]reflect.Type{},
	}
}

func (a *Assembly) Name() string { return a.name }

// Register adds the types of the given samples. A sample is either a value,
// a pointer to a value (e.g. (*Shape)(nil) for an interface) or a reflect.Type.
func (a *Assembly) Register(samples ...interface{}) *Assembly {
	for _, sample := range samples {
		a.RegisterType(TypeOf(sample))
	}
	return a
}

func (a *Assembly) RegisterType(typ reflect.Type) *Assembly {
	typ = Indirect(typ)
	if typ.Name() == "" {
		panic(fmt.Sprintf("Expected a named type, but was %s", typ))
	}

	a.types[typeKey(typ)] = typ

	base, args := splitGoTypeName(typ.Name())
	if len(args) > 0 {
		key := typ.PkgPath() + "." + base
		for _, existing := range a.instances[key] {
			if existing == typ {
				return a
			}
		}
		a.instances[key] = append(a.instances[key], typ)
	}
	return a
}

// RegisterTag registers the sample's type and maps tag to it. An alias tag
// is understood when reading but never chosen when writing.
func (a *Assembly) RegisterTag(tag string, sample interface{}, isAlias bool) *Assembly {
	typ := Indirect(TypeOf(sample))
	a.RegisterType(typ)
	a.tags = append(a.tags, TagMapping{Tag: tag, Type: typ, IsAlias: isAlias})
	return a
}

func (a *Assembly) TagMappings() []TagMapping {
	return append([]TagMapping{}, a.tags...)
}

// Types lists registered types ordered by qualified name.
func (a *Assembly) Types() []reflect.Type {
	var keys []string
	for key := range a.types {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var result []reflect.Type
	for _, key := range keys {
		result = append(result, a.types[key])
	}
	return result
}

func (a *Assembly) Contains(typ reflect.Type) bool {
	found, ok := a.types[typeKey(typ)]
	return ok && found == typ
}

// lookup finds a non generic type by "namespace.Name".
func (a *Assembly) lookup(name string) reflect.Type {
	return a.types[name]
}

// lookupGoName finds a type by the name Go's reflection gives it
// ("path/to/pkg.Name[args]"), falling back to the package name alone.
func (a *Assembly) lookupGoName(name string) reflect.Type {
	if typ, found := a.types[name]; found {
		return typ
	}
	for _, typ := range a.types {
		if shortTypeKey(typ) == name {
			return typ
		}
	}
	return nil
}

func TypeOf(sample interface{}) reflect.Type {
	if typ, ok := sample.(reflect.Type); ok {
		return typ
	}
	typ := reflect.TypeOf(sample)
	if typ == nil {
		panic("Expected non-nil sample")
	}
	return typ
}

// Indirect strips pointers: *T and T share a tag.
func Indirect(typ reflect.Type) reflect.Type {
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ
}

func typeKey(typ reflect.Type) string {
	if typ.PkgPath() == "" {
		return typ.Name()
	}
	return typ.PkgPath() + "." + typ.Name()
}

func shortTypeKey(typ reflect.Type) string {
	pkgPath := typ.PkgPath()
	if idx := strings.LastIndex(pkgPath, "/"); idx >= 0 {
		pkgPath = pkgPath[idx+1:]
	}
	if pkgPath == "" {
		return typ.Name()
	}
	return pkgPath + "." + typ.Name()
}

var emptyInterfaceType = reflect.TypeOf((*interface{})(nil)).Elem()

func newBuiltinAssembly() *Assembly {
	a := NewAssembly(BuiltinAssemblyName)
	a.Register(
		false, "",
		int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0), uintptr(0),
		float32(0), float64(0), complex64(0), complex128(0),
		reflect.TypeOf((*error)(nil)).Elem(),
	)
	a.types["any"] = emptyInterfaceType
	return a
}

var goAliases = map[string]string{"byte": "uint8", "rune": "int32", "interface {}": "any", "interface{}": "any"}
