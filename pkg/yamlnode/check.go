// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlnode

import (
	"fmt"
)

// CheckResolved verifies that no AliasNode is left in the document.
func (d *Document) CheckResolved() error {
	if d.Root == nil {
		return nil
	}
	return Walk(d.Root, VisitorFunc(func(node Node) error {
		if alias, ok := node.(*AliasNode); ok {
			return fmt.Errorf("unresolved alias '*%s' at %s", alias.Alias, alias.GetPosition().AsCompactString())
		}
		return nil
	}))
}
