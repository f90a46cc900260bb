// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlnode

import (
	"carvel.dev/yamlgraph/pkg/filepos"
	"carvel.dev/yamlgraph/pkg/yamlevents"
)

type Node interface {
	GetAnchor() string
	SetAnchor(string)
	GetTag() string
	SetTag(string)

	GetPosition() *filepos.Position
	GetEndPosition() *filepos.Position

	// GetChildren lists direct children (mapping keys and values interleaved).
	GetChildren() []Node

	resolveAliases(*LoadingState) error
	sealed()
}

var _ = []Node{&ScalarNode{}, &MappingNode{}, &SequenceNode{}, &AliasNode{}}

// Props are the properties every node carries.
type Props struct {
	Anchor string
	Tag    string

	Position    *filepos.Position
	EndPosition *filepos.Position
}

func (p *Props) GetAnchor() string       { return p.Anchor }
func (p *Props) SetAnchor(anchor string) { p.Anchor = anchor }
func (p *Props) GetTag() string          { return p.Tag }
func (p *Props) SetTag(tag string)       { p.Tag = tag }

func (p *Props) GetPosition() *filepos.Position {
	if p.Position == nil {
		return filepos.NewUnknownPosition()
	}
	return p.Position
}

func (p *Props) GetEndPosition() *filepos.Position {
	if p.EndPosition == nil {
		return filepos.NewUnknownPosition()
	}
	return p.EndPosition
}

type ScalarNode struct {
	Props

	Value string
	Style yamlevents.ScalarStyle
}

type MappingNode struct {
	Props

	Items []*MappingItem
	Style yamlevents.CollectionStyle
}

type MappingItem struct {
	Key   Node
	Value Node
}

type SequenceNode struct {
	Props

	Items []Node
	Style yamlevents.CollectionStyle
}

// AliasNode only exists while a document is being loaded.
type AliasNode struct {
	Props

	Alias string
}

func (*ScalarNode) sealed()   {}
func (*MappingNode) sealed()  {}
func (*SequenceNode) sealed() {}
func (*AliasNode) sealed()    {}

func NewScalar(value string) *ScalarNode {
	return &ScalarNode{Value: value, Style: yamlevents.AnyScalarStyle}
}

func NewMapping() *MappingNode { return &MappingNode{} }

func NewSequence(items ...Node) *SequenceNode {
	return &SequenceNode{Items: items}
}

func (n *ScalarNode) GetChildren() []Node { return nil }
func (n *AliasNode) GetChildren() []Node  { return nil }

func (n *SequenceNode) GetChildren() []Node {
	return append([]Node{}, n.Items...)
}

func (n *MappingNode) GetChildren() []Node {
	var result []Node
	for _, item := range n.Items {
		result = append(result, item.Key, item.Value)
	}
	return result
}
