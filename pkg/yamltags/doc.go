// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package yamltags maps YAML tags to Go types and back.

Schema tags (!!str, !!int, !!map, ...) come from a Schema. Every other tag is
"!" followed by a qualified type name:

	namespace.Name[[arg],[arg]][]...,assembly

The namespace is the Go package path, each generic argument is itself a
qualified name, every trailing "[]" is one slice rank and the assembly is the
name of the Assembly the type was registered with. Go's predeclared types live
in the "go" assembly and have no namespace; map[K]V is written as the builtin
generic map[[K],[V]],go.

Go cannot look types up by name at runtime, so only types registered through
an Assembly (and types built from them) can be resolved from a tag.
*/
package yamltags
