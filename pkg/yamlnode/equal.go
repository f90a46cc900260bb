// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlnode

// Equal compares nodes structurally. Tags take part in the comparison,
// anchors and positions do not, so an anchored key is still found by
// a lookup with an unanchored copy of it.
func Equal(a, b Node) bool {
	return equalNodes(a, b, map[[2]Node]bool{})
}

func equalNodes(a, b Node, inProgress map[[2]Node]bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	if a.GetTag() != b.GetTag() {
		return false
	}

	pair := [2]Node{a, b}
	if inProgress[pair] {
		// assume equal while the pair is being compared further up (cycles)
		return true
	}
	inProgress[pair] = true
	defer delete(inProgress, pair)

	switch typedA := a.(type) {
	case *ScalarNode:
		typedB, ok := b.(*ScalarNode)
		return ok && typedA.Value == typedB.Value

	case *AliasNode:
		typedB, ok := b.(*AliasNode)
		return ok && typedA.Alias == typedB.Alias

	case *SequenceNode:
		typedB, ok := b.(*SequenceNode)
		if !ok || len(typedA.Items) != len(typedB.Items) {
			return false
		}
		for i := range typedA.Items {
			if !equalNodes(typedA.Items[i], typedB.Items[i], inProgress) {
				return false
			}
		}
		return true

	case *MappingNode:
		typedB, ok := b.(*MappingNode)
		if !ok || len(typedA.Items) != len(typedB.Items) {
			return false
		}
		for i := range typedA.Items {
			itemA, itemB := typedA.Items[i], typedB.Items[i]
			if !equalNodes(itemA.Key, itemB.Key, inProgress) || !equalNodes(itemA.Value, itemB.Value, inProgress) {
				return false
			}
		}
		return true

	default:
		return false
	}
}
