// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlnode

import (
	"fmt"

	"carvel.dev/yamlgraph/pkg/yamlevents"
)

func (s *Stream) Save(emitter yamlevents.Emitter) error {
	err := emitter.Emit(yamlevents.NewStreamStart())
	if err != nil {
		return err
	}
	for _, doc := range s.Documents {
		err := doc.Save(emitter)
		if err != nil {
			return err
		}
	}
	return emitter.Emit(yamlevents.NewStreamEnd())
}

// Save emits the document. The first visit of a node writes it in full;
// later visits write an alias to its anchor, so a node reachable more than
// once must carry an anchor (see AssignAnchors).
func (d *Document) Save(emitter yamlevents.Emitter) error {
	err := emitter.Emit(yamlevents.NewDocumentStart(d.ImplicitStart))
	if err != nil {
		return err
	}

	if d.Root == nil {
		err = emitter.Emit(yamlevents.NewScalar("", "", "", yamlevents.PlainStyle, true, false))
	} else {
		err = (&nodeSaver{emitter: emitter, emitted: map[Node]bool{}}).save(d.Root)
	}
	if err != nil {
		return err
	}

	return emitter.Emit(yamlevents.NewDocumentEnd(d.ImplicitEnd))
}

// SaveNode emits the events of one node (and everything below it). Like
// Document.Save, it requires anchors on nodes reachable more than once.
func SaveNode(node Node, emitter yamlevents.Emitter) error {
	return (&nodeSaver{emitter: emitter, emitted: map[Node]bool{}}).save(node)
}

// AssignAnchors gives a generated anchor to every node that is reachable
// more than once and does not have one yet.
func (d *Document) AssignAnchors() {
	if d.Root == nil {
		return
	}

	refs := map[Node]int{d.Root: 1}
	var order []Node
	used := map[string]bool{}

	Walk(d.Root, VisitorFunc(func(node Node) error {
		order = append(order, node)
		if node.GetAnchor() != "" {
			used[node.GetAnchor()] = true
		}
		for _, child := range node.GetChildren() {
			refs[child]++
		}
		return nil
	}))

	next := 0
	for _, node := range order {
		if refs[node] < 2 || node.GetAnchor() != "" {
			continue
		}
		var anchor string
		for {
			next++
			anchor = fmt.Sprintf("a%d", next)
			if !used[anchor] {
				break
			}
		}
		node.SetAnchor(anchor)
	}
}

type nodeSaver struct {
	emitter yamlevents.Emitter
	emitted map[Node]bool
}

func (s *nodeSaver) save(node Node) error {
	if s.emitted[node] {
		if node.GetAnchor() == "" {
			return fmt.Errorf("node %s at %s is reachable more than once but has no anchor",
				Describe(node), node.GetPosition().AsCompactString())
		}
		return s.emitter.Emit(yamlevents.NewAlias(node.GetAnchor()))
	}
	s.emitted[node] = true

	switch typedNode := node.(type) {
	case *ScalarNode:
		style := typedNode.Style
		if style == yamlevents.AnyScalarStyle {
			style = yamlevents.PlainStyle
		}
		implicit := typedNode.Tag == ""
		return s.emitter.Emit(yamlevents.NewScalar(typedNode.Anchor, typedNode.Tag, typedNode.Value,
			style, implicit && style == yamlevents.PlainStyle, implicit && style != yamlevents.PlainStyle))

	case *SequenceNode:
		err := s.emitter.Emit(yamlevents.NewSequenceStart(typedNode.Anchor, typedNode.Tag, typedNode.Tag == "", typedNode.Style))
		if err != nil {
			return err
		}
		for _, item := range typedNode.Items {
			err := s.save(item)
			if err != nil {
				return err
			}
		}
		return s.emitter.Emit(yamlevents.NewSequenceEnd())

	case *MappingNode:
		err := s.emitter.Emit(yamlevents.NewMappingStart(typedNode.Anchor, typedNode.Tag, typedNode.Tag == "", typedNode.Style))
		if err != nil {
			return err
		}
		for _, item := range typedNode.Items {
			err := s.save(item.Key)
			if err != nil {
				return err
			}
			err = s.save(item.Value)
			if err != nil {
				return err
			}
		}
		return s.emitter.Emit(yamlevents.NewMappingEnd())

	case *AliasNode:
		return s.emitter.Emit(yamlevents.NewAlias(typedNode.Alias))

	default:
		panic(fmt.Sprintf("Unexpected node type %T", node))
	}
}
