// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"fmt"
	"math"
	"reflect"

	"carvel.dev/yamlgraph/pkg/yamlevents"
	"carvel.dev/yamlgraph/pkg/yamltags"
)

// EventEmitter receives StreamStart, DocumentStart, node events,
// DocumentEnd and StreamEnd in that order. Callers keep starts and ends
// balanced; emitters do not validate nesting.
type EventEmitter interface {
	StreamStart() error
	DocumentStart() error
	Emit(info EventInfo) error
	DocumentEnd() error
	StreamEnd() error
}

// ChainedEventEmitter forwards everything to Next. Emitters embed it and
// override what they need.
type ChainedEventEmitter struct {
	Next EventEmitter
}

var _ EventEmitter = ChainedEventEmitter{}

func (e ChainedEventEmitter) StreamStart() error        { return e.Next.StreamStart() }
func (e ChainedEventEmitter) DocumentStart() error      { return e.Next.DocumentStart() }
func (e ChainedEventEmitter) Emit(info EventInfo) error { return e.Next.Emit(info) }
func (e ChainedEventEmitter) DocumentEnd() error        { return e.Next.DocumentEnd() }
func (e ChainedEventEmitter) StreamEnd() error          { return e.Next.StreamEnd() }

// AnchorEventEmitter holds back a whole document, then drops every anchor
// that no alias refers to before passing the events on.
type AnchorEventEmitter struct {
	ChainedEventEmitter

	events  []EventInfo
	aliases map[string]struct{}
	metrics *Metrics
}

var _ EventEmitter = &AnchorEventEmitter{}

func NewAnchorEventEmitter(next EventEmitter) *AnchorEventEmitter {
	return &AnchorEventEmitter{ChainedEventEmitter: ChainedEventEmitter{next}, aliases: map[string]struct{}{}}
}

func (e *AnchorEventEmitter) Emit(info EventInfo) error {
	if alias, ok := info.(*AliasEventInfo); ok {
		e.aliases[alias.Alias] = struct{}{}
	}
	e.events = append(e.events, info)
	return nil
}

func (e *AnchorEventEmitter) DocumentEnd() error {
	events := e.events
	aliases := e.aliases
	e.events = nil
	e.aliases = map[string]struct{}{}

	pruned := 0
	for _, info := range events {
		if anchored, ok := info.(anchoredEventInfo); ok {
			obj := anchored.objectInfo()
			if _, found := aliases[obj.Anchor]; !found && obj.Anchor != "" {
				obj.Anchor = ""
				pruned++
			}
		}
		err := e.Next.Emit(info)
		if err != nil {
			return err
		}
	}
	e.metrics.observePrunedAnchors(pruned)
	return e.Next.DocumentEnd()
}

// JSONEventEmitter rewrites events so that the output is valid JSON: flow
// collections, double quoted strings and keys, and no tags or anchors.
// Aliases cannot be represented and fail.
type JSONEventEmitter struct {
	ChainedEventEmitter

	// one entry per open collection; counts emitted nodes of mappings
	// so that keys can be told apart from values
	collections []jsonCollection
}

type jsonCollection struct {
	mapping bool
	nodes   int
}

var _ EventEmitter = &JSONEventEmitter{}

func NewJSONEventEmitter(next EventEmitter) *JSONEventEmitter {
	return &JSONEventEmitter{ChainedEventEmitter: ChainedEventEmitter{next}}
}

func (e *JSONEventEmitter) Emit(info EventInfo) error {
	switch typedInfo := info.(type) {
	case *AliasEventInfo:
		return fmt.Errorf("alias '*%s' cannot be represented in JSON", typedInfo.Alias)

	case *ScalarEventInfo:
		isKey := e.nextIsKey()
		e.countNode()

		plain, null := jsonScalarKind(typedInfo)
		switch {
		case isKey || !plain:
			typedInfo.Style = yamlevents.DoubleQuotedStyle
			typedInfo.IsPlainImplicit = false
			typedInfo.IsQuotedImplicit = true
		default:
			if null {
				typedInfo.RenderedValue = "null"
			}
			typedInfo.Style = yamlevents.PlainStyle
			typedInfo.IsPlainImplicit = true
			typedInfo.IsQuotedImplicit = false
		}
		typedInfo.Anchor = ""
		typedInfo.Tag = ""

	case *MappingStartEventInfo:
		if e.nextIsKey() {
			return fmt.Errorf("mapping keys must be scalars in JSON")
		}
		e.countNode()
		e.collections = append(e.collections, jsonCollection{mapping: true})
		typedInfo.Anchor, typedInfo.Tag = "", ""
		typedInfo.IsImplicit = true
		typedInfo.Style = yamlevents.FlowStyle

	case *SequenceStartEventInfo:
		if e.nextIsKey() {
			return fmt.Errorf("mapping keys must be scalars in JSON")
		}
		e.countNode()
		e.collections = append(e.collections, jsonCollection{})
		typedInfo.Anchor, typedInfo.Tag = "", ""
		typedInfo.IsImplicit = true
		typedInfo.Style = yamlevents.FlowStyle

	case *MappingEndEventInfo, *SequenceEndEventInfo:
		if len(e.collections) > 0 {
			e.collections = e.collections[:len(e.collections)-1]
		}
	}

	return e.Next.Emit(info)
}

func (e *JSONEventEmitter) nextIsKey() bool {
	if len(e.collections) == 0 {
		return false
	}
	top := e.collections[len(e.collections)-1]
	return top.mapping && top.nodes%2 == 0
}

func (e *JSONEventEmitter) countNode() {
	if len(e.collections) > 0 {
		e.collections[len(e.collections)-1].nodes++
	}
}

var jsonSchema = yamltags.NewCoreSchema()

// jsonScalarKind reports whether a scalar is written unquoted (numbers,
// booleans and null) and whether it is null. Scalars without a source value
// (e.g. from yamlnode trees) are classified by the core schema.
func jsonScalarKind(info *ScalarEventInfo) (bool, bool) {
	if jsonSchema.ShortenTag(info.Tag) == yamltags.NullTag {
		return true, true
	}

	if !info.SourceValue.IsValid() {
		if !info.IsPlainImplicit || (info.Style != yamlevents.AnyScalarStyle && info.Style != yamlevents.PlainStyle) {
			return false, false
		}
		switch jsonSchema.Resolve(info.RenderedValue) {
		case yamltags.NullTag:
			return true, true
		case yamltags.BoolTag, yamltags.IntTag:
			return true, false
		case yamltags.FloatTag:
			return isFiniteFloat(info.RenderedValue), false
		}
		return false, false
	}

	if isTextValue(info.SourceValue) {
		return false, false
	}
	switch info.SourceValue.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true, false
	case reflect.Float32, reflect.Float64:
		// .inf and .nan have no JSON spelling
		return isFiniteFloat(info.RenderedValue), false
	}
	return false, false
}

func isFiniteFloat(rendered string) bool {
	f, err := yamltags.ParseFloat(rendered, 64)
	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// WriterEventEmitter is the end of the chain: it turns infos into events
// for a yamlevents.Emitter.
type WriterEventEmitter struct {
	emitter yamlevents.Emitter
}

var _ EventEmitter = &WriterEventEmitter{}

func NewWriterEventEmitter(emitter yamlevents.Emitter) *WriterEventEmitter {
	return &WriterEventEmitter{emitter}
}

func (e *WriterEventEmitter) StreamStart() error {
	return e.emitter.Emit(yamlevents.NewStreamStart())
}

func (e *WriterEventEmitter) DocumentStart() error {
	return e.emitter.Emit(yamlevents.NewDocumentStart(true))
}

func (e *WriterEventEmitter) Emit(info EventInfo) error {
	ev, err := toEvent(info)
	if err != nil {
		return err
	}
	return e.emitter.Emit(ev)
}

func (e *WriterEventEmitter) DocumentEnd() error {
	return e.emitter.Emit(yamlevents.NewDocumentEnd(true))
}

func (e *WriterEventEmitter) StreamEnd() error {
	return e.emitter.Emit(yamlevents.NewStreamEnd())
}

// newEventEmitter builds Writer <- [JSON] <- [Anchor], outermost last.
func newEventEmitter(emitter yamlevents.Emitter, settings *Settings) EventEmitter {
	var result EventEmitter = NewWriterEventEmitter(emitter)
	if settings.EmitJSONCompatible {
		result = NewJSONEventEmitter(result)
	}
	if settings.EmitAlias {
		anchorEmitter := NewAnchorEventEmitter(result)
		anchorEmitter.metrics = settings.Metrics
		result = anchorEmitter
	}
	return result
}
