// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlnode

import (
	"fmt"

	"carvel.dev/yamlgraph/pkg/filepos"
	"carvel.dev/yamlgraph/pkg/yamlevents"
)

// LoadingState tracks anchors while one document is being loaded, together
// with the composite nodes that still hold AliasNode stubs.
type LoadingState struct {
	anchors    map[string]Node
	unresolved []Node
	resolved   bool
}

func NewLoadingState() *LoadingState {
	return &LoadingState{anchors: map[string]Node{}}
}

func (s *LoadingState) AddAnchor(node Node) error {
	anchor := node.GetAnchor()
	if anchor == "" {
		panic("Expected node to have an anchor")
	}
	if _, found := s.anchors[anchor]; found {
		return &yamlevents.DuplicateAnchorError{
			Anchor: anchor,
			Start:  node.GetPosition(),
			End:    node.GetEndPosition(),
		}
	}
	s.anchors[anchor] = node
	return nil
}

// GetNode returns the node bound to anchor. A missing anchor is an
// *AnchorNotFoundError only when throwOnMissing is set.
func (s *LoadingState) GetNode(anchor string, throwOnMissing bool, start, end *filepos.Position) (Node, error) {
	node, found := s.anchors[anchor]
	if !found && throwOnMissing {
		return nil, &yamlevents.AnchorNotFoundError{Anchor: anchor, Start: start, End: end}
	}
	return node, nil
}

func (s *LoadingState) AddNodeWithUnresolvedAliases(node Node) {
	s.unresolved = append(s.unresolved, node)
}

// ResolveAliases replaces the AliasNode stubs of every registered node.
// It is called once, after the whole document has been read.
func (s *LoadingState) ResolveAliases() error {
	if s.resolved {
		return fmt.Errorf("aliases were already resolved for this document")
	}
	s.resolved = true

	for _, node := range s.unresolved {
		err := node.resolveAliases(s)
		if err != nil {
			return err
		}
	}
	s.unresolved = nil
	return nil
}

func (s *LoadingState) resolve(node Node) (Node, error) {
	alias, ok := node.(*AliasNode)
	if !ok {
		return node, nil
	}
	return s.GetNode(alias.Alias, true, alias.GetPosition(), alias.GetEndPosition())
}

func (n *ScalarNode) resolveAliases(*LoadingState) error { return nil }

func (n *AliasNode) resolveAliases(*LoadingState) error {
	panic("Alias nodes are resolved by their parent")
}

func (n *SequenceNode) resolveAliases(state *LoadingState) error {
	for i, item := range n.Items {
		resolved, err := state.resolve(item)
		if err != nil {
			return err
		}
		n.Items[i] = resolved
	}
	return nil
}

func (n *MappingNode) resolveAliases(state *LoadingState) error {
	for i, item := range n.Items {
		_, keyWasAlias := item.Key.(*AliasNode)

		key, err := state.resolve(item.Key)
		if err != nil {
			return err
		}
		value, err := state.resolve(item.Value)
		if err != nil {
			return err
		}
		item.Key, item.Value = key, value

		if keyWasAlias {
			for j, other := range n.Items {
				if j != i && Equal(other.Key, key) {
					return yamlevents.AsYamlError(fmt.Errorf("duplicate mapping key %s", Describe(key)), key.GetPosition(), nil)
				}
			}
		}
	}
	return nil
}
