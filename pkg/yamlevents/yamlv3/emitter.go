// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlv3

import (
	"fmt"
	"io"

	"carvel.dev/yamlgraph/pkg/yamlevents"
	"gopkg.in/yaml.v3"
)

type EmitterOpts struct {
	Indent int
}

// Emitter writes one YAML document per DocumentEnd event.
type Emitter struct {
	writer io.Writer
	opts   EmitterOpts

	encoder   *yaml.Encoder
	stack     []*yaml.Node
	documents int
}

var _ yamlevents.Emitter = &Emitter{}

func NewEmitter(writer io.Writer, opts EmitterOpts) *Emitter {
	if opts.Indent <= 0 {
		opts.Indent = 2
	}
	return &Emitter{writer: writer, opts: opts}
}

func (e *Emitter) Emit(ev *yamlevents.Event) error {
	switch ev.Kind {
	case yamlevents.StreamStart:
		e.encoder = yaml.NewEncoder(e.writer)
		e.encoder.SetIndent(e.opts.Indent)
		e.documents = 0

	case yamlevents.DocumentStart:
		if e.encoder == nil {
			return fmt.Errorf("expected StreamStart before DocumentStart")
		}
		e.stack = []*yaml.Node{{Kind: yaml.DocumentNode}}

	case yamlevents.Scalar:
		node := &yaml.Node{Kind: yaml.ScalarNode, Value: ev.Value, Anchor: ev.Anchor}
		e.applyTag(node, ev.Tag, ev.PlainImplicit || ev.QuotedImplicit)
		node.Style |= e.scalarStyle(ev.Style)
		return e.append(node, false)

	case yamlevents.Alias:
		return e.append(&yaml.Node{Kind: yaml.AliasNode, Value: ev.Value}, false)

	case yamlevents.MappingStart, yamlevents.SequenceStart:
		node := &yaml.Node{Kind: yaml.MappingNode, Anchor: ev.Anchor}
		if ev.Kind == yamlevents.SequenceStart {
			node.Kind = yaml.SequenceNode
		}
		e.applyTag(node, ev.Tag, ev.Implicit)
		if ev.CollectionStyle == yamlevents.FlowStyle {
			node.Style |= yaml.FlowStyle
		}
		return e.append(node, true)

	case yamlevents.MappingEnd, yamlevents.SequenceEnd:
		if len(e.stack) < 2 {
			return fmt.Errorf("unexpected %s", ev.Kind)
		}
		e.stack = e.stack[:len(e.stack)-1]

	case yamlevents.DocumentEnd:
		if len(e.stack) != 1 {
			return fmt.Errorf("unexpected DocumentEnd inside an open collection")
		}
		doc := e.stack[0]
		e.stack = nil
		if len(doc.Content) == 0 {
			doc.Content = []*yaml.Node{{Kind: yaml.ScalarNode, Tag: "!!null", Value: ""}}
		}
		e.documents++
		return e.encoder.Encode(doc)

	case yamlevents.StreamEnd:
		// an encoder that never wrote a document cannot be closed
		if e.encoder == nil || e.documents == 0 {
			return nil
		}
		return e.encoder.Close()

	default:
		return fmt.Errorf("unexpected event kind %s", ev.Kind)
	}
	return nil
}

func (e *Emitter) append(node *yaml.Node, push bool) error {
	if len(e.stack) == 0 {
		return fmt.Errorf("expected DocumentStart before node events")
	}
	parent := e.stack[len(e.stack)-1]
	if parent.Kind == yaml.DocumentNode && len(parent.Content) > 0 {
		return fmt.Errorf("document already has a root node")
	}
	parent.Content = append(parent.Content, node)
	if push {
		e.stack = append(e.stack, node)
	}
	return nil
}

// applyTag keeps implicit tags as hints: yaml.v3 omits them on output, but
// uses a !!str hint to quote strings that would otherwise resolve to another type
func (e *Emitter) applyTag(node *yaml.Node, tag string, implicit bool) {
	if tag == "" {
		return
	}
	node.Tag = tag
	if !implicit {
		node.Style |= yaml.TaggedStyle
	}
}

func (e *Emitter) scalarStyle(style yamlevents.ScalarStyle) yaml.Style {
	switch style {
	case yamlevents.DoubleQuotedStyle:
		return yaml.DoubleQuotedStyle
	case yamlevents.SingleQuotedStyle:
		return yaml.SingleQuotedStyle
	case yamlevents.LiteralStyle:
		return yaml.LiteralStyle
	case yamlevents.FoldedStyle:
		return yaml.FoldedStyle
	default:
		return 0
	}
}
