// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of yamlgraph.

This codebase is intentionally organized into well-defined layers. Packages
depend on each other only to the degree absolutely required.

In the inventory, below, individual packages are named alongside their coupling
with the other packages in the codebase.

	(# of dependents) => <package name> => (# of dependencies)

From top-down, yamlgraph code is layered in this way:

# Entry Point

yamlgraph is built into a command-line tool:

	./cmd/yamlgraph

# Commands

"fmt" rewrites YAML streams through the node graph, "convert" reads YAML,
JSON(C) or TOML and writes YAML or JSON through the object serializer.

	(1) => pkg/cmd => (7)
	(1) => pkg/cmd/ui => (0)
	(1) => pkg/version => (0)

# Object Serialization

The serializer maps arbitrary Go object graphs (including shared and cyclic
ones) onto YAML events and back. It is a chain of processors (anchors, tags,
routing) in front of a set of per-kind serializers chosen by a selector.

	(1) => pkg/serialization => (7)
	(1) => pkg/descriptor => (1)
	(1) => pkg/yamltags => (1)
	(1) => pkg/spell => (0)

# YAML Structures

Documents can also be loaded into a graph of nodes that keeps anchors,
aliases, tags and styles, and saved back.

	(2) => pkg/yamlnode => (3)

# YAML Events

Both layers above speak in events. The scanner and emitter are delegated to
gopkg.in/yaml.v3 (https://github.com/go-yaml/yaml/tree/v3), whose node trees
are flattened into events and rebuilt from them.

	(4) => pkg/yamlevents => (1)
	(3) => pkg/yamlevents/yamlv3 => (2)

# Utilities

	(4) => pkg/orderedmap => (0)
	(3) => pkg/filepos => (0)

# Dependencies

Each package's dependencies on other packages within this module are as follows
(if a package is not listed, it has no dependencies on other packages within
this module):

	pkg/cmd:
	- pkg/cmd/ui
	- pkg/serialization
	- pkg/yamlnode
	- pkg/yamlevents/yamlv3
	- pkg/yamlevents
	- pkg/orderedmap
	- pkg/version
	pkg/serialization:
	- pkg/descriptor
	- pkg/yamltags
	- pkg/yamlnode
	- pkg/yamlevents/yamlv3
	- pkg/yamlevents
	- pkg/orderedmap
	- pkg/spell
	pkg/yamlnode:
	- pkg/yamlevents/yamlv3
	- pkg/yamlevents
	- pkg/filepos
	pkg/yamlevents/yamlv3:
	- pkg/yamlevents
	- pkg/filepos
	pkg/yamlevents:
	- pkg/filepos
	pkg/descriptor:
	- pkg/orderedmap
	pkg/yamltags:
	- pkg/orderedmap
*/
package pkg
