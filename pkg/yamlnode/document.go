// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlnode

import (
	"carvel.dev/yamlgraph/pkg/filepos"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"carvel.dev/yamlgraph/pkg/yamlevents/yamlv3"
)

type Stream struct {
	Documents []*Document
}

type Document struct {
	// Root is nil for an empty document.
	Root Node

	ImplicitStart bool
	ImplicitEnd   bool

	Position    *filepos.Position
	EndPosition *filepos.Position
}

func NewDocument(root Node) *Document {
	return &Document{Root: root, ImplicitStart: true, ImplicitEnd: true}
}

// Load parses every document of a YAML text.
func Load(data []byte, fileName string) (*Stream, error) {
	return LoadStream(yamlevents.NewReader(yamlv3.NewParser(data, fileName)))
}

func LoadStream(reader *yamlevents.Reader) (*Stream, error) {
	_, err := reader.Expect(yamlevents.StreamStart)
	if err != nil {
		return nil, err
	}

	stream := &Stream{}

	for reader.Accept(yamlevents.DocumentStart) {
		doc, err := LoadDocument(reader)
		if err != nil {
			return nil, err
		}
		stream.Documents = append(stream.Documents, doc)
	}

	_, err = reader.Expect(yamlevents.StreamEnd)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// LoadDocument reads one document starting at its DocumentStart event.
// Aliases are resolved before it returns.
func LoadDocument(reader *yamlevents.Reader) (*Document, error) {
	start, err := reader.Expect(yamlevents.DocumentStart)
	if err != nil {
		return nil, err
	}

	doc := &Document{ImplicitStart: start.Implicit, Position: start.Start}
	state := NewLoadingState()

	if !reader.Accept(yamlevents.DocumentEnd) {
		doc.Root, err = ParseNode(reader, state)
		if err != nil {
			return nil, yamlevents.AsYamlError(err, reader.Position(), nil)
		}
	}

	end, err := reader.Expect(yamlevents.DocumentEnd)
	if err != nil {
		return nil, err
	}
	doc.ImplicitEnd = end.Implicit
	doc.EndPosition = end.End

	err = state.ResolveAliases()
	if err != nil {
		return nil, yamlevents.AsYamlError(err, reader.Position(), nil)
	}

	// a document made of a single alias can only point at itself
	if alias, ok := doc.Root.(*AliasNode); ok {
		return nil, yamlevents.AsYamlError(&yamlevents.AnchorNotFoundError{
			Anchor: alias.Alias,
			Start:  alias.GetPosition(),
			End:    alias.GetEndPosition(),
		}, nil, nil)
	}

	debugCheckResolved(doc)

	return doc, nil
}
