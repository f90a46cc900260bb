// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"fmt"
	"reflect"

	"carvel.dev/yamlgraph/pkg/yamlevents"
)

// EventInfo describes one event on its way to the wire. It is one of
// *AliasEventInfo, *ScalarEventInfo, *MappingStartEventInfo,
// *MappingEndEventInfo, *SequenceStartEventInfo or *SequenceEndEventInfo.
type EventInfo interface {
	sealedEventInfo()
}

var _ = []EventInfo{&AliasEventInfo{}, &ScalarEventInfo{}, &MappingStartEventInfo{},
	&MappingEndEventInfo{}, &SequenceStartEventInfo{}, &SequenceEndEventInfo{}}

// ObjectEventInfo holds what node events share: presentation metadata and
// the Go value (with its static type) the event was produced from.
type ObjectEventInfo struct {
	Anchor string
	Tag    string

	SourceValue reflect.Value
	SourceType  reflect.Type
}

func (o *ObjectEventInfo) objectInfo() *ObjectEventInfo { return o }

// anchoredEventInfo is implemented by the variants embedding ObjectEventInfo.
type anchoredEventInfo interface {
	objectInfo() *ObjectEventInfo
}

type AliasEventInfo struct {
	Alias string

	SourceValue reflect.Value
}

type ScalarEventInfo struct {
	ObjectEventInfo

	RenderedValue    string
	Style            yamlevents.ScalarStyle
	IsPlainImplicit  bool
	IsQuotedImplicit bool
}

type MappingStartEventInfo struct {
	ObjectEventInfo

	IsImplicit bool
	Style      yamlevents.CollectionStyle
}

type MappingEndEventInfo struct{}

type SequenceStartEventInfo struct {
	ObjectEventInfo

	IsImplicit bool
	Style      yamlevents.CollectionStyle
}

type SequenceEndEventInfo struct{}

func (*AliasEventInfo) sealedEventInfo()         {}
func (*ScalarEventInfo) sealedEventInfo()        {}
func (*MappingStartEventInfo) sealedEventInfo()  {}
func (*MappingEndEventInfo) sealedEventInfo()    {}
func (*SequenceStartEventInfo) sealedEventInfo() {}
func (*SequenceEndEventInfo) sealedEventInfo()   {}

// toEvent converts an info into its wire event.
func toEvent(info EventInfo) (*yamlevents.Event, error) {
	switch typedInfo := info.(type) {
	case *AliasEventInfo:
		return yamlevents.NewAlias(typedInfo.Alias), nil

	case *ScalarEventInfo:
		return yamlevents.NewScalar(typedInfo.Anchor, typedInfo.Tag, typedInfo.RenderedValue,
			typedInfo.Style, typedInfo.IsPlainImplicit, typedInfo.IsQuotedImplicit), nil

	case *MappingStartEventInfo:
		return yamlevents.NewMappingStart(typedInfo.Anchor, typedInfo.Tag, typedInfo.IsImplicit, typedInfo.Style), nil

	case *MappingEndEventInfo:
		return yamlevents.NewMappingEnd(), nil

	case *SequenceStartEventInfo:
		return yamlevents.NewSequenceStart(typedInfo.Anchor, typedInfo.Tag, typedInfo.IsImplicit, typedInfo.Style), nil

	case *SequenceEndEventInfo:
		return yamlevents.NewSequenceEnd(), nil

	default:
		return nil, fmt.Errorf("unknown event info %T", info)
	}
}

// fromEvent is the inverse of toEvent for node events.
func fromEvent(ev *yamlevents.Event) (EventInfo, error) {
	obj := ObjectEventInfo{Anchor: ev.Anchor, Tag: ev.Tag}

	switch ev.Kind {
	case yamlevents.Alias:
		return &AliasEventInfo{Alias: ev.Value}, nil
	case yamlevents.Scalar:
		return &ScalarEventInfo{ObjectEventInfo: obj, RenderedValue: ev.Value, Style: ev.Style,
			IsPlainImplicit: ev.PlainImplicit, IsQuotedImplicit: ev.QuotedImplicit}, nil
	case yamlevents.MappingStart:
		return &MappingStartEventInfo{ObjectEventInfo: obj, IsImplicit: ev.Implicit, Style: ev.CollectionStyle}, nil
	case yamlevents.MappingEnd:
		return &MappingEndEventInfo{}, nil
	case yamlevents.SequenceStart:
		return &SequenceStartEventInfo{ObjectEventInfo: obj, IsImplicit: ev.Implicit, Style: ev.CollectionStyle}, nil
	case yamlevents.SequenceEnd:
		return &SequenceEndEventInfo{}, nil
	default:
		return nil, fmt.Errorf("unexpected %s inside a node", ev.Kind)
	}
}
