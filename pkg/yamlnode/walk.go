// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlnode

// Visitor performs an operation on the given Node while traversing the graph.
type Visitor interface {
	Visit(Node) error
}

type VisitorFunc func(Node) error

func (f VisitorFunc) Visit(node Node) error { return f(node) }

// Walk traverses the graph starting at `node`, depth-first, invoking `v` once
// per node even when the node is reachable through several aliases.
// if `v` returns non-nil error, the traversal is aborted.
func Walk(node Node, v Visitor) error {
	return walk(node, v, map[Node]bool{})
}

func walk(node Node, v Visitor, seen map[Node]bool) error {
	if node == nil || seen[node] {
		return nil
	}
	seen[node] = true

	err := v.Visit(node)
	if err != nil {
		return err
	}

	for _, child := range node.GetChildren() {
		err := walk(child, v, seen)
		if err != nil {
			return err
		}
	}
	return nil
}
