// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlv3

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"carvel.dev/yamlgraph/pkg/filepos"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"gopkg.in/yaml.v3"
)

type Parser struct {
	data     []byte
	fileName string

	events []*yamlevents.Event
	idx    int
	loaded bool
}

var _ yamlevents.Parser = &Parser{}

func NewParser(data []byte, fileName string) *Parser {
	return &Parser{data: data, fileName: fileName}
}

func NewParserFromReader(reader io.Reader, fileName string) (*Parser, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	return NewParser(data, fileName), nil
}

func (p *Parser) Next() (*yamlevents.Event, error) {
	if !p.loaded {
		err := p.load()
		if err != nil {
			return nil, err
		}
		p.loaded = true
	}
	if p.idx >= len(p.events) {
		return nil, io.EOF
	}
	ev := p.events[p.idx]
	p.idx++
	return ev, nil
}

func (p *Parser) load() error {
	dec := yaml.NewDecoder(bytes.NewReader(p.data))

	p.events = append(p.events, yamlevents.NewStreamStart().WithPosition(p.newPosition(1, 1), nil))

	for {
		var doc yaml.Node

		err := dec.Decode(&doc)
		if err != nil {
			if err == io.EOF {
				break
			}
			if match := unknownAnchorErr.FindStringSubmatch(err.Error()); match != nil {
				return &yamlevents.AnchorNotFoundError{Anchor: match[1], Start: p.aliasPosition(match[1])}
			}
			// yaml.v3 prefixes its errors the same way YamlError does
			return fmt.Errorf("%s", strings.TrimPrefix(err.Error(), "yaml: "))
		}

		p.flatten(&doc)
	}

	p.events = append(p.events, yamlevents.NewStreamEnd())
	return nil
}

var unknownAnchorErr = regexp.MustCompile(`^yaml: unknown anchor '(.*)' referenced$`)

// aliasPosition locates the first use of alias name after the documents
// already loaded; yaml.v3 does not report where it failed.
func (p *Parser) aliasPosition(name string) *filepos.Position {
	offset := 0
	for skip := p.lastLine(); skip > 0 && offset < len(p.data); skip-- {
		next := bytes.IndexByte(p.data[offset:], '\n')
		if next < 0 {
			offset = len(p.data)
			break
		}
		offset += next + 1
	}

	aliasRe := regexp.MustCompile(`(^|[\s\[\{,:-])(\*` + regexp.QuoteMeta(name) + `)([\s,\]\}]|$)`)
	loc := aliasRe.FindSubmatchIndex(p.data[offset:])
	if loc == nil {
		return filepos.NewUnknownPositionInFile(p.fileName)
	}
	at := offset + loc[4]
	line := 1 + bytes.Count(p.data[:at], []byte("\n"))
	column := at - (bytes.LastIndexByte(p.data[:at], '\n') + 1) + 1
	return p.newPosition(line, column)
}

// lastLine is the line of the last node loaded, 0 before the first document.
func (p *Parser) lastLine() int {
	for i := len(p.events) - 1; i > 0; i-- {
		if p.events[i].Start.IsKnown() {
			return p.events[i].Start.LineNum()
		}
	}
	return 0
}

func (p *Parser) flatten(node *yaml.Node) {
	start := p.newPosition(node.Line, node.Column)
	tag := p.explicitTag(node)

	switch node.Kind {
	case yaml.DocumentNode:
		p.add(yamlevents.NewDocumentStart(true), start)
		for _, child := range node.Content {
			p.flatten(child)
		}
		p.add(yamlevents.NewDocumentEnd(true), nil)

	case yaml.MappingNode:
		p.add(yamlevents.NewMappingStart(node.Anchor, tag, tag == "", p.collectionStyle(node)), start)
		for _, child := range node.Content {
			p.flatten(child)
		}
		p.add(yamlevents.NewMappingEnd(), nil)

	case yaml.SequenceNode:
		p.add(yamlevents.NewSequenceStart(node.Anchor, tag, tag == "", p.collectionStyle(node)), start)
		for _, child := range node.Content {
			p.flatten(child)
		}
		p.add(yamlevents.NewSequenceEnd(), nil)

	case yaml.AliasNode:
		p.add(yamlevents.NewAlias(node.Value), start)

	case yaml.ScalarNode:
		style := p.scalarStyle(node)
		quoted := style != yamlevents.PlainStyle
		p.add(yamlevents.NewScalar(node.Anchor, tag, node.Value, style, tag == "" && !quoted, tag == "" && quoted), start)

	default:
		panic(fmt.Sprintf("Unexpected yaml.v3 node kind %d", node.Kind))
	}
}

func (p *Parser) add(ev *yamlevents.Event, start *filepos.Position) {
	ev.Start = start
	p.events = append(p.events, ev)
}

// explicitTag drops tags that yaml.v3 resolved implicitly
func (p *Parser) explicitTag(node *yaml.Node) string {
	if node.Style&yaml.TaggedStyle == 0 {
		return ""
	}
	return node.Tag
}

func (p *Parser) scalarStyle(node *yaml.Node) yamlevents.ScalarStyle {
	switch {
	case node.Style&yaml.DoubleQuotedStyle != 0:
		return yamlevents.DoubleQuotedStyle
	case node.Style&yaml.SingleQuotedStyle != 0:
		return yamlevents.SingleQuotedStyle
	case node.Style&yaml.LiteralStyle != 0:
		return yamlevents.LiteralStyle
	case node.Style&yaml.FoldedStyle != 0:
		return yamlevents.FoldedStyle
	default:
		return yamlevents.PlainStyle
	}
}

func (p *Parser) collectionStyle(node *yaml.Node) yamlevents.CollectionStyle {
	if node.Style&yaml.FlowStyle != 0 {
		return yamlevents.FlowStyle
	}
	return yamlevents.BlockStyle
}

func (p *Parser) newPosition(line, column int) *filepos.Position {
	if line <= 0 {
		return filepos.NewUnknownPositionInFile(p.fileName)
	}
	if column < 0 {
		column = 0
	}
	pos := filepos.NewPositionWithColumn(line, column)
	pos.SetFile(p.fileName)
	return pos
}
