// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

//go:build yamlgraph_debug

package yamlnode

import (
	"fmt"
)

func debugCheckResolved(doc *Document) {
	err := doc.CheckResolved()
	if err != nil {
		panic(fmt.Sprintf("Alias resolution left a stub behind: %s", err))
	}
}
