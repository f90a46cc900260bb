// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"fmt"
	"reflect"
	"strings"

	"carvel.dev/yamlgraph/pkg/descriptor"
	"carvel.dev/yamlgraph/pkg/yamltags"
	"github.com/go-kit/log"
)

const DefaultSpecialCollectionMember = "~Items"

// Stage wraps the processor chain, e.g. to observe or replace values on
// their way in and out. Stages run before anchors and tags are handled.
type Stage func(next Serializable) Serializable

// Settings configure a Serializer. They must not be changed once the
// Serializer has been created.
type Settings struct {
	// PreferredIndent is the number of spaces per nesting level.
	PreferredIndent int

	// EmitAlias writes values reachable more than once (including cycles)
	// as anchors and aliases.
	EmitAlias bool
	EmitTags  bool

	SortKeyForMapping  bool
	EmitJSONCompatible bool

	// LimitPrimitiveFlowSequence writes sequences of primitives with at
	// most this many items in flow style. 0 disables it.
	LimitPrimitiveFlowSequence int

	EmitDefaultValues bool

	// SpecialCollectionMember is the key holding the items of a
	// collection or dictionary struct that also has other members.
	SpecialCollectionMember string

	NamingConvention      descriptor.NamingConvention
	ComparerForKeySorting func(a, b string) bool

	IgnoreUnmatchedProperties bool

	// Profile selects which profiled serializer factories are used.
	Profile string

	Schema        yamltags.Schema
	Registry      *yamltags.Registry
	ObjectFactory descriptor.ObjectFactory

	Stages []Stage

	Logger  log.Logger
	Metrics *Metrics

	serializers map[reflect.Type]Serializable
	factories   []SerializableFactory
}

func NewSettings() *Settings {
	return &Settings{
		PreferredIndent:         2,
		EmitAlias:               true,
		EmitTags:                true,
		SpecialCollectionMember: DefaultSpecialCollectionMember,
	}
}

// RegisterSerializer uses serializer for values of exactly typ.
func (s *Settings) RegisterSerializer(typ reflect.Type, serializer Serializable) *Settings {
	if s.serializers == nil {
		s.serializers = map[reflect.Type]Serializable{}
	}
	s.serializers[typ] = serializer
	return s
}

// RegisterFactory adds a factory that is consulted before the default ones.
func (s *Settings) RegisterFactory(factory SerializableFactory) *Settings {
	s.factories = append(s.factories, factory)
	return s
}

// Validate returns the first invalid setting.
func (s *Settings) Validate() error {
	if s.PreferredIndent <= 0 {
		return fmt.Errorf("Expected PreferredIndent to be greater than 0, but was %d", s.PreferredIndent)
	}
	if s.LimitPrimitiveFlowSequence < 0 {
		return fmt.Errorf("Expected LimitPrimitiveFlowSequence to be 0 or greater, but was %d", s.LimitPrimitiveFlowSequence)
	}
	if len(s.SpecialCollectionMember) < 2 || !strings.ContainsAny(s.SpecialCollectionMember, ".~-") {
		return fmt.Errorf("Expected SpecialCollectionMember to have at least 2 characters "+
			"and contain one of '.', '~' or '-', but was '%s'", s.SpecialCollectionMember)
	}
	if s.Registry != nil && s.Schema != nil && s.Registry.Schema() != s.Schema {
		return fmt.Errorf("Expected Schema to be the schema of Registry")
	}
	return nil
}

// withDefaults returns a copy with every unset collaborator filled in.
func (s *Settings) withDefaults() *Settings {
	result := *s

	if result.NamingConvention == nil {
		result.NamingConvention = descriptor.DefaultNamingConvention{}
	}
	if result.ComparerForKeySorting == nil {
		result.ComparerForKeySorting = func(a, b string) bool { return a < b }
	}
	if result.Registry == nil {
		result.Registry = yamltags.NewRegistry(result.Schema)
	}
	result.Schema = result.Registry.Schema()
	if result.ObjectFactory == nil {
		result.ObjectFactory = descriptor.NewDefaultObjectFactory(nil)
	}
	if result.Logger == nil {
		result.Logger = log.NewNopLogger()
	}
	return &result
}
