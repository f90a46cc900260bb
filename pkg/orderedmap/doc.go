// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package orderedmap provides a map implementation where the order of keys is
maintained (unlike the native Go map).

*Map is the value yamlgraph produces for an untyped YAML mapping (`!!map`), so
that deserializing and serializing a document again keeps its key order.
*/
package orderedmap
