// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlnode

// DeepCopy copies the graph reachable from node. Shared nodes (and cycles)
// are shared in the copy as well.
func DeepCopy(node Node) Node {
	return deepCopy(node, map[Node]Node{})
}

func (d *Document) DeepCopy() *Document {
	newDoc := *d
	if d.Root != nil {
		newDoc.Root = DeepCopy(d.Root)
	}
	return &newDoc
}

func deepCopy(node Node, copies map[Node]Node) Node {
	if node == nil {
		return nil
	}
	if existing, found := copies[node]; found {
		return existing
	}

	switch typedNode := node.(type) {
	case *ScalarNode:
		newNode := *typedNode
		copies[node] = &newNode
		return &newNode

	case *AliasNode:
		newNode := *typedNode
		copies[node] = &newNode
		return &newNode

	case *SequenceNode:
		newNode := &SequenceNode{Props: typedNode.Props, Style: typedNode.Style}
		copies[node] = newNode
		for _, item := range typedNode.Items {
			newNode.Items = append(newNode.Items, deepCopy(item, copies))
		}
		return newNode

	case *MappingNode:
		newNode := &MappingNode{Props: typedNode.Props, Style: typedNode.Style}
		copies[node] = newNode
		for _, item := range typedNode.Items {
			newNode.Items = append(newNode.Items, &MappingItem{
				Key:   deepCopy(item.Key, copies),
				Value: deepCopy(item.Value, copies),
			})
		}
		return newNode

	default:
		panic("Unexpected node type")
	}
}
