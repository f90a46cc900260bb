// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamltags

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Registry maps tags to types and back. It is shared by every operation of a
// serializer, so all tables sit behind a single mutex.
type Registry struct {
	schema Schema

	lock         sync.Mutex
	assemblies   []*Assembly
	tagToType    map[string]mappedType
	typeToTag    map[reflect.Type]string
	instanceArgs map[reflect.Type][]reflect.Type
}

type mappedType struct {
	typ     reflect.Type
	isAlias bool
}

func NewRegistry(schema Schema) *Registry {
	if schema == nil {
		schema = NewCoreSchema()
	}
	return &Registry{
		schema:       schema,
		assemblies:   []*Assembly{newBuiltinAssembly()},
		tagToType:    map[string]mappedType{},
		typeToTag:    map[reflect.Type]string{},
		instanceArgs: map[reflect.Type][]reflect.Type{},
	}
}

func (r *Registry) Schema() Schema { return r.schema }

// RegisterAssembly makes the assembly's types resolvable and applies its tag
// mappings. Registering the same assembly again is a no-op.
func (r *Registry) RegisterAssembly(assembly *Assembly) error {
	r.lock.Lock()
	for _, existing := range r.assemblies {
		if existing.name != assembly.name {
			continue
		}
		r.lock.Unlock()
		if existing == assembly {
			return nil
		}
		return fmt.Errorf("another assembly named '%s' is already registered", assembly.name)
	}
	r.assemblies = append(r.assemblies, assembly)
	r.lock.Unlock()

	for _, mapping := range assembly.tags {
		r.RegisterTagMapping(mapping.Tag, mapping.Type, mapping.IsAlias)
	}
	return nil
}

// RegisterTagMapping maps tag to typ. Tags are prefixed with "!" and
// tag:yaml.org,2002: tags are shortened to "!!" (and taught to the schema).
// An alias mapping never changes the tag written for typ.
func (r *Registry) RegisterTagMapping(tag string, typ reflect.Type, isAlias bool) {
	if tag == "" {
		panic("Expected non-empty tag")
	}
	if typ == nil {
		panic("Expected non-nil type")
	}

	if strings.HasPrefix(tag, "tag:") {
		shortTag := "!!" + tag[strings.LastIndexByte(tag, ':')+1:]
		r.schema.RegisterTag(shortTag, tag)
		tag = shortTag
	}
	if !strings.HasPrefix(tag, "!") {
		tag = "!" + tag
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	r.tagToType[tag] = mappedType{typ: typ, isAlias: isAlias}
	if !isAlias {
		r.typeToTag[typ] = tag
	}
}

// TypeFromTag returns nil for tags that map to nothing (which includes !!null).
func (r *Registry) TypeFromTag(tag string) (reflect.Type, bool) {
	if tag == "" {
		return nil, false
	}

	shortTag := r.schema.ShortenTag(tag)
	if shortTag != tag || strings.HasPrefix(shortTag, "!!") {
		if typ := r.schema.TypeForDefaultTag(shortTag); typ != nil {
			return typ, false
		}
	}

	shortTag, err := UnescapeTag(shortTag)
	if err != nil {
		return nil, false
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if mapped, found := r.tagToType[shortTag]; found {
		return mapped.typ, mapped.isAlias
	}

	typ := r.resolveType(strings.TrimPrefix(shortTag, "!"))
	if typ != nil {
		r.tagToType[shortTag] = mappedType{typ: typ}
		if _, found := r.typeToTag[typ]; !found && r.schema.DefaultTag(typ) == "" {
			r.typeToTag[typ] = shortTag
		}
	}
	return typ, false
}

// TagFromType returns the (escaped) tag written for values of typ.
func (r *Registry) TagFromType(typ reflect.Type) (string, error) {
	if typ == nil {
		return NullTag, nil
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	candidates := []reflect.Type{typ}
	if indirect := Indirect(typ); indirect != typ {
		candidates = append(candidates, indirect)
	}

	for _, candidate := range candidates {
		if tag, found := r.typeToTag[candidate]; found {
			return EscapeTag(tag), nil
		}
		if tag := r.schema.DefaultTag(candidate); tag != "" {
			r.typeToTag[candidate] = tag
			return EscapeTag(tag), nil
		}
	}

	name, err := r.qualifiedName(typ)
	if err != nil {
		return "", err
	}
	tag := "!" + name
	r.typeToTag[typ] = tag
	return EscapeTag(tag), nil
}

// QualifiedName renders typ as namespace.Name[[arg],...][]...,assembly.
func (r *Registry) QualifiedName(typ reflect.Type) (string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.qualifiedName(typ)
}

// ResolveType finds the type named by a qualified name; nil when unknown.
func (r *Registry) ResolveType(name string) reflect.Type {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.resolveType(name)
}

func (r *Registry) qualifiedName(typ reflect.Type) (string, error) {
	var sb strings.Builder
	err := r.writeQualifiedName(typ, &sb)
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (r *Registry) writeQualifiedName(typ reflect.Type, sb *strings.Builder) error {
	typ = Indirect(typ)

	rank := 0
	for typ.Kind() == reflect.Slice && typ.Name() == "" {
		typ = Indirect(typ.Elem())
		rank++
	}

	var assemblyName string

	switch {
	case typ.Kind() == reflect.Map && typ.Name() == "":
		sb.WriteString("map[[")
		err := r.writeQualifiedName(typ.Key(), sb)
		if err != nil {
			return err
		}
		sb.WriteString("],[")
		err = r.writeQualifiedName(typ.Elem(), sb)
		if err != nil {
			return err
		}
		sb.WriteString("]]")
		assemblyName = BuiltinAssemblyName

	case typ == emptyInterfaceType:
		sb.WriteString("any")
		assemblyName = BuiltinAssemblyName

	case typ.Name() == "":
		return fmt.Errorf("type %s has no qualified name", typ)

	case typ.PkgPath() == "":
		sb.WriteString(typ.Name())
		assemblyName = BuiltinAssemblyName

	default:
		base, goArgs := splitGoTypeName(typ.Name())
		sb.WriteString(typ.PkgPath() + "." + base)

		if len(goArgs) > 0 {
			args, err := r.typeArguments(typ)
			if err != nil {
				return err
			}
			sb.WriteString("[[")
			for i, arg := range args {
				if i > 0 {
					sb.WriteString("],[")
				}
				err := r.writeQualifiedName(arg, sb)
				if err != nil {
					return err
				}
			}
			sb.WriteString("]]")
		}
		assemblyName = r.assemblyNameOf(typ)
	}

	for ; rank > 0; rank-- {
		sb.WriteString("[]")
	}
	if assemblyName != "" {
		sb.WriteString("," + assemblyName)
	}
	return nil
}

// typeArguments recovers the type arguments of a generic instantiation from
// its reflected name.
func (r *Registry) typeArguments(typ reflect.Type) ([]reflect.Type, error) {
	if args, found := r.instanceArgs[typ]; found {
		return args, nil
	}

	_, goArgs := splitGoTypeName(typ.Name())

	var args []reflect.Type
	for _, goArg := range goArgs {
		parser := &goTypeParser{src: goArg, lookup: r.lookupGoName}
		arg, err := parser.parse()
		if err != nil {
			return nil, fmt.Errorf("resolving type argument '%s' of %s: %s", goArg, typ, err)
		}
		args = append(args, arg)
	}

	r.instanceArgs[typ] = args
	return args, nil
}

func (r *Registry) assemblyNameOf(typ reflect.Type) string {
	for _, assembly := range r.assemblies {
		if assembly.Contains(typ) {
			return assembly.name
		}
	}
	return ""
}

func (r *Registry) lookupGoName(name string) reflect.Type {
	for _, assembly := range r.assemblies {
		if typ := assembly.lookupGoName(name); typ != nil {
			return typ
		}
	}
	return nil
}

func (r *Registry) resolveType(name string) reflect.Type {
	definition, args, rank := SplitGenericArguments(name)
	typeName, assemblyName := ParseType(definition)

	var typ reflect.Type

	if args != nil {
		var argTypes []reflect.Type
		for _, arg := range args {
			argType := r.resolveType(arg)
			if argType == nil {
				return nil
			}
			argTypes = append(argTypes, argType)
		}
		typ = r.instantiate(typeName, assemblyName, argTypes)
	} else {
		for _, assembly := range r.assemblies {
			if assemblyName != "" && assembly.name != assemblyName {
				continue
			}
			if typ = assembly.lookup(typeName); typ != nil {
				break
			}
		}
	}

	if typ == nil {
		return nil
	}
	for ; rank > 0; rank-- {
		typ = reflect.SliceOf(typ)
	}
	return typ
}

func (r *Registry) instantiate(typeName, assemblyName string, args []reflect.Type) reflect.Type {
	if typeName == "map" && (assemblyName == "" || assemblyName == BuiltinAssemblyName) {
		if len(args) != 2 || !args[0].Comparable() {
			return nil
		}
		return reflect.MapOf(args[0], args[1])
	}

	for _, assembly := range r.assemblies {
		if assemblyName != "" && assembly.name != assemblyName {
			continue
		}
		for _, instance := range assembly.instances[typeName] {
			instanceArgs, err := r.typeArguments(instance)
			if err != nil || !sameTypes(instanceArgs, args) {
				continue
			}
			return instance
		}
	}
	return nil
}

func sameTypes(a, b []reflect.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if Indirect(a[i]) != Indirect(b[i]) {
			return false
		}
	}
	return true
}
