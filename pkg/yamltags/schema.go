// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamltags

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"carvel.dev/yamlgraph/pkg/orderedmap"
)

const (
	longTagPrefix = "tag:yaml.org,2002:"

	NullTag  = "!!null"
	BoolTag  = "!!bool"
	IntTag   = "!!int"
	FloatTag = "!!float"
	StrTag   = "!!str"
	MapTag   = "!!map"
	SeqTag   = "!!seq"

	BinaryTag    = "!!binary"
	TimestampTag = "!!timestamp"
)

// Schema decides which tags are implied by plain scalars and which Go
// types are represented by schema tags.
type Schema interface {
	ShortenTag(tag string) string
	ExpandTag(tag string) string
	RegisterTag(shortTag, longTag string)

	// DefaultTag is "" when typ has no schema tag.
	DefaultTag(typ reflect.Type) string
	// TypeForDefaultTag is nil when tag is not a schema tag.
	TypeForDefaultTag(tag string) reflect.Type

	// Resolve returns the tag of an untagged plain scalar.
	Resolve(value string) string
}

var (
	// untyped mappings and sequences
	DefaultMapType = reflect.TypeOf(&orderedmap.Map{})
	DefaultSeqType = reflect.TypeOf([]interface{}{})
)

// FailsafeSchema only knows strings, mappings and sequences.
type FailsafeSchema struct {
	shortToLong map[string]string
	longToShort map[string]string

	tagByType map[reflect.Type]string
	typeByTag map[string]reflect.Type
}

var _ Schema = &FailsafeSchema{}

func NewFailsafeSchema() *FailsafeSchema {
	s := &FailsafeSchema{
		shortToLong: map[string]string{},
		longToShort: map[string]string{},
		tagByType:   map[reflect.Type]string{},
		typeByTag:   map[string]reflect.Type{},
	}
	for _, tag := range []string{StrTag, MapTag, SeqTag} {
		s.RegisterTag(tag, longTagPrefix+strings.TrimPrefix(tag, "!!"))
	}
	s.AddDefaultTagMapping(StrTag, reflect.TypeOf(""), true)
	s.AddDefaultTagMapping(MapTag, DefaultMapType, true)
	s.AddDefaultTagMapping(SeqTag, DefaultSeqType, true)
	return s
}

func (s *FailsafeSchema) RegisterTag(shortTag, longTag string) {
	s.shortToLong[shortTag] = longTag
	s.longToShort[longTag] = shortTag
}

// AddDefaultTagMapping records that values of typ are written with tag.
// Only the mapping marked isDefault is used to pick a type when reading tag.
func (s *FailsafeSchema) AddDefaultTagMapping(tag string, typ reflect.Type, isDefault bool) {
	s.tagByType[typ] = tag
	if isDefault {
		s.typeByTag[tag] = typ
	}
}

func (s *FailsafeSchema) ShortenTag(tag string) string {
	if short, found := s.longToShort[tag]; found {
		return short
	}
	return tag
}

func (s *FailsafeSchema) ExpandTag(tag string) string {
	if long, found := s.shortToLong[tag]; found {
		return long
	}
	return tag
}

func (s *FailsafeSchema) DefaultTag(typ reflect.Type) string {
	if typ == nil {
		return NullTag
	}
	return s.tagByType[typ]
}

func (s *FailsafeSchema) TypeForDefaultTag(tag string) reflect.Type {
	return s.typeByTag[s.ShortenTag(tag)]
}

func (s *FailsafeSchema) Resolve(string) string { return StrTag }

// CoreSchema adds null, booleans, integers and floats following the YAML 1.2
// core schema.
type CoreSchema struct {
	*FailsafeSchema
}

var _ Schema = &CoreSchema{}

var (
	nullRegexp  = regexp.MustCompile(`^(null|Null|NULL|~)?$`)
	boolRegexp  = regexp.MustCompile(`^(true|True|TRUE|false|False|FALSE)$`)
	intRegexp   = regexp.MustCompile(`^([-+]?[0-9]+|0o[0-7]+|0x[0-9a-fA-F]+)$`)
	floatRegexp = regexp.MustCompile(`^([-+]?(\.[0-9]+|[0-9]+(\.[0-9]*)?)([eE][-+]?[0-9]+)?|[-+]?(\.inf|\.Inf|\.INF)|\.nan|\.NaN|\.NAN)$`)
)

func NewCoreSchema() *CoreSchema {
	s := &CoreSchema{NewFailsafeSchema()}

	for _, tag := range []string{NullTag, BoolTag, IntTag, FloatTag, BinaryTag, TimestampTag} {
		s.RegisterTag(tag, longTagPrefix+strings.TrimPrefix(tag, "!!"))
	}

	s.AddDefaultTagMapping(BoolTag, reflect.TypeOf(true), true)

	for _, sample := range []interface{}{int8(0), int16(0), int32(0), int64(0), uint(0), uint8(0), uint16(0), uint32(0), uint64(0), uintptr(0)} {
		s.AddDefaultTagMapping(IntTag, reflect.TypeOf(sample), false)
	}
	s.AddDefaultTagMapping(IntTag, reflect.TypeOf(0), true)

	s.AddDefaultTagMapping(FloatTag, reflect.TypeOf(float32(0)), false)
	s.AddDefaultTagMapping(FloatTag, reflect.TypeOf(float64(0)), true)

	s.AddDefaultTagMapping(BinaryTag, reflect.TypeOf([]byte{}), true)
	s.AddDefaultTagMapping(TimestampTag, reflect.TypeOf(time.Time{}), true)

	return s
}

func (s *CoreSchema) TypeForDefaultTag(tag string) reflect.Type {
	if s.ShortenTag(tag) == NullTag {
		return nil
	}
	return s.FailsafeSchema.TypeForDefaultTag(tag)
}

func (s *CoreSchema) Resolve(value string) string {
	switch {
	case nullRegexp.MatchString(value):
		return NullTag
	case boolRegexp.MatchString(value):
		return BoolTag
	case intRegexp.MatchString(value):
		return IntTag
	case floatRegexp.MatchString(value):
		return FloatTag
	default:
		return StrTag
	}
}
