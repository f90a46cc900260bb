// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlnode

import (
	"fmt"
)

// Get finds the value of the first item whose key is Equal to key.
func (n *MappingNode) Get(key Node) (Node, bool) {
	idx := n.indexOf(key)
	if idx < 0 {
		return nil, false
	}
	return n.Items[idx].Value, true
}

// GetString looks up an untagged scalar key.
func (n *MappingNode) GetString(key string) (Node, bool) {
	return n.Get(NewScalar(key))
}

// Set replaces the value of an existing key or appends a new item.
func (n *MappingNode) Set(key, value Node) {
	idx := n.indexOf(key)
	if idx >= 0 {
		n.Items[idx].Value = value
		return
	}
	n.Items = append(n.Items, &MappingItem{Key: key, Value: value})
}

// Add appends a new item and fails if the key is already present.
func (n *MappingNode) Add(key, value Node) error {
	if n.indexOf(key) >= 0 {
		return fmt.Errorf("duplicate mapping key %s", Describe(key))
	}
	n.Items = append(n.Items, &MappingItem{Key: key, Value: value})
	return nil
}

func (n *MappingNode) Delete(key Node) bool {
	idx := n.indexOf(key)
	if idx < 0 {
		return false
	}
	n.Items = append(n.Items[:idx], n.Items[idx+1:]...)
	return true
}

func (n *MappingNode) Keys() []Node {
	var result []Node
	for _, item := range n.Items {
		result = append(result, item.Key)
	}
	return result
}

func (n *MappingNode) Len() int { return len(n.Items) }

func (n *MappingNode) indexOf(key Node) int {
	for i, item := range n.Items {
		if Equal(item.Key, key) {
			return i
		}
	}
	return -1
}

// Describe renders a short, human readable summary of a node for error messages.
func Describe(node Node) string {
	switch typedNode := node.(type) {
	case *ScalarNode:
		return fmt.Sprintf("'%s'", typedNode.Value)
	case *MappingNode:
		return fmt.Sprintf("mapping (%d items)", len(typedNode.Items))
	case *SequenceNode:
		return fmt.Sprintf("sequence (%d items)", len(typedNode.Items))
	case *AliasNode:
		return "*" + typedNode.Alias
	case nil:
		return "null"
	default:
		panic(fmt.Sprintf("Unexpected node type %T", node))
	}
}
