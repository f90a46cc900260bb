// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlnode

import (
	"carvel.dev/yamlgraph/pkg/yamlevents"
)

// ParseNode reads one node (and all of its children) from reader.
//
// An alias to an anchor that was already seen is replaced right away by the
// anchored node. Any other alias becomes an AliasNode stub, and the enclosing
// collection registers itself with state so ResolveAliases can patch it.
func ParseNode(reader *yamlevents.Reader, state *LoadingState) (Node, error) {
	ev, err := reader.Next()
	if err != nil {
		return nil, err
	}

	switch ev.Kind {
	case yamlevents.Scalar:
		node := &ScalarNode{Props: propsFrom(ev), Value: ev.Value, Style: ev.Style}
		return node, addAnchor(state, node)

	case yamlevents.Alias:
		target, err := state.GetNode(ev.Value, false, ev.Start, ev.End)
		if err != nil {
			return nil, err
		}
		if target != nil {
			return target, nil
		}
		return &AliasNode{Props: propsFrom(ev), Alias: ev.Value}, nil

	case yamlevents.SequenceStart:
		return parseSequence(reader, state, ev)

	case yamlevents.MappingStart:
		return parseMapping(reader, state, ev)

	default:
		return nil, yamlevents.NewError(ev, "expected a node, but got %s", ev.Kind)
	}
}

func parseSequence(reader *yamlevents.Reader, state *LoadingState, start *yamlevents.Event) (Node, error) {
	node := &SequenceNode{Props: propsFrom(start), Style: start.CollectionStyle}

	// anchor is bound before children are read so that they may refer to it
	err := addAnchor(state, node)
	if err != nil {
		return nil, err
	}

	hasAliases := false

	for !reader.Accept(yamlevents.SequenceEnd) {
		item, err := ParseNode(reader, state)
		if err != nil {
			return nil, err
		}
		if _, ok := item.(*AliasNode); ok {
			hasAliases = true
		}
		node.Items = append(node.Items, item)
	}

	end, err := reader.Expect(yamlevents.SequenceEnd)
	if err != nil {
		return nil, err
	}
	node.EndPosition = end.End

	if hasAliases {
		state.AddNodeWithUnresolvedAliases(node)
	}
	return node, nil
}

func parseMapping(reader *yamlevents.Reader, state *LoadingState, start *yamlevents.Event) (Node, error) {
	node := &MappingNode{Props: propsFrom(start), Style: start.CollectionStyle}

	err := addAnchor(state, node)
	if err != nil {
		return nil, err
	}

	hasAliases := false

	for !reader.Accept(yamlevents.MappingEnd) {
		key, err := ParseNode(reader, state)
		if err != nil {
			return nil, err
		}
		value, err := ParseNode(reader, state)
		if err != nil {
			return nil, err
		}

		_, keyIsAlias := key.(*AliasNode)
		_, valueIsAlias := value.(*AliasNode)
		hasAliases = hasAliases || keyIsAlias || valueIsAlias

		if keyIsAlias {
			// duplicates are checked once the key is resolved
			node.Items = append(node.Items, &MappingItem{Key: key, Value: value})
			continue
		}

		err = node.Add(key, value)
		if err != nil {
			return nil, yamlevents.AsYamlError(err, key.GetPosition(), key.GetEndPosition())
		}
	}

	end, err := reader.Expect(yamlevents.MappingEnd)
	if err != nil {
		return nil, err
	}
	node.EndPosition = end.End

	if hasAliases {
		state.AddNodeWithUnresolvedAliases(node)
	}
	return node, nil
}

func addAnchor(state *LoadingState, node Node) error {
	if node.GetAnchor() == "" {
		return nil
	}
	return state.AddAnchor(node)
}

func propsFrom(ev *yamlevents.Event) Props {
	return Props{Anchor: ev.Anchor, Tag: ev.Tag, Position: ev.Start, EndPosition: ev.End}
}
