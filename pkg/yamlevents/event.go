// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlevents

import (
	"fmt"
	"strings"

	"carvel.dev/yamlgraph/pkg/filepos"
)

type Kind int

const (
	StreamStart Kind = iota + 1
	DocumentStart
	DocumentEnd
	StreamEnd
	Alias
	Scalar
	SequenceStart
	SequenceEnd
	MappingStart
	MappingEnd
)

var kindNames = map[Kind]string{
	StreamStart:   "StreamStart",
	DocumentStart: "DocumentStart",
	DocumentEnd:   "DocumentEnd",
	StreamEnd:     "StreamEnd",
	Alias:         "Alias",
	Scalar:        "Scalar",
	SequenceStart: "SequenceStart",
	SequenceEnd:   "SequenceEnd",
	MappingStart:  "MappingStart",
	MappingEnd:    "MappingEnd",
}

func (k Kind) String() string {
	if name, found := kindNames[k]; found {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsNode reports whether events of this kind start a node (and may carry an anchor).
func (k Kind) IsNode() bool {
	return k == Alias || k == Scalar || k == SequenceStart || k == MappingStart
}

type ScalarStyle int

const (
	AnyScalarStyle ScalarStyle = iota
	PlainStyle
	SingleQuotedStyle
	DoubleQuotedStyle
	LiteralStyle
	FoldedStyle
)

type CollectionStyle int

const (
	AnyCollectionStyle CollectionStyle = iota
	BlockStyle
	FlowStyle
)

// Event is one unit of a YAML event stream. Which fields are meaningful
// depends on Kind: Anchor and Tag on node events, Value on Scalar (and the
// alias name on Alias), Implicit on documents and collections.
type Event struct {
	Kind Kind

	Anchor string
	Tag    string
	Value  string

	Style           ScalarStyle
	CollectionStyle CollectionStyle

	Implicit       bool
	PlainImplicit  bool
	QuotedImplicit bool

	Start *filepos.Position
	End   *filepos.Position
}

func NewStreamStart() *Event { return &Event{Kind: StreamStart} }
func NewStreamEnd() *Event   { return &Event{Kind: StreamEnd} }

func NewDocumentStart(implicit bool) *Event {
	return &Event{Kind: DocumentStart, Implicit: implicit}
}

func NewDocumentEnd(implicit bool) *Event {
	return &Event{Kind: DocumentEnd, Implicit: implicit}
}

func NewAlias(name string) *Event { return &Event{Kind: Alias, Value: name} }

func NewScalar(anchor, tag, value string, style ScalarStyle, plainImplicit, quotedImplicit bool) *Event {
	return &Event{
		Kind:           Scalar,
		Anchor:         anchor,
		Tag:            tag,
		Value:          value,
		Style:          style,
		PlainImplicit:  plainImplicit,
		QuotedImplicit: quotedImplicit,
	}
}

// NewPlainScalar is an untagged plain scalar, the common case when building streams by hand.
func NewPlainScalar(value string) *Event {
	return NewScalar("", "", value, PlainStyle, true, true)
}

func NewSequenceStart(anchor, tag string, implicit bool, style CollectionStyle) *Event {
	return &Event{Kind: SequenceStart, Anchor: anchor, Tag: tag, Implicit: implicit, CollectionStyle: style}
}

func NewSequenceEnd() *Event { return &Event{Kind: SequenceEnd} }

func NewMappingStart(anchor, tag string, implicit bool, style CollectionStyle) *Event {
	return &Event{Kind: MappingStart, Anchor: anchor, Tag: tag, Implicit: implicit, CollectionStyle: style}
}

func NewMappingEnd() *Event { return &Event{Kind: MappingEnd} }

// WithPosition sets Start and End and returns the event.
func (e *Event) WithPosition(start, end *filepos.Position) *Event {
	e.Start = start
	e.End = end
	return e
}

// StartPosition never returns nil.
func (e *Event) StartPosition() *filepos.Position {
	if e == nil || e.Start == nil {
		return filepos.NewUnknownPosition()
	}
	return e.Start
}

// String renders the event in the notation used by the YAML test suite
// (e.g. "+MAP &a", "=VAL :x", "=ALI *a").
func (e *Event) String() string {
	props := func() string {
		var parts []string
		if e.Anchor != "" {
			parts = append(parts, "&"+e.Anchor)
		}
		if e.Tag != "" {
			parts = append(parts, "<"+e.Tag+">")
		}
		if len(parts) == 0 {
			return ""
		}
		return " " + strings.Join(parts, " ")
	}

	switch e.Kind {
	case StreamStart:
		return "+STR"
	case StreamEnd:
		return "-STR"
	case DocumentStart:
		if e.Implicit {
			return "+DOC"
		}
		return "+DOC ---"
	case DocumentEnd:
		if e.Implicit {
			return "-DOC"
		}
		return "-DOC ..."
	case MappingStart:
		if e.CollectionStyle == FlowStyle {
			return "+MAP {}" + props()
		}
		return "+MAP" + props()
	case MappingEnd:
		return "-MAP"
	case SequenceStart:
		if e.CollectionStyle == FlowStyle {
			return "+SEQ []" + props()
		}
		return "+SEQ" + props()
	case SequenceEnd:
		return "-SEQ"
	case Alias:
		return "=ALI *" + e.Value
	case Scalar:
		indicator := ":"
		switch e.Style {
		case SingleQuotedStyle:
			indicator = "'"
		case DoubleQuotedStyle:
			indicator = `"`
		case LiteralStyle:
			indicator = "|"
		case FoldedStyle:
			indicator = ">"
		}
		value := strings.NewReplacer("\\", "\\\\", "\n", "\\n", "\t", "\\t").Replace(e.Value)
		return "=VAL" + props() + " " + indicator + value
	default:
		return e.Kind.String()
	}
}
