// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package yamlnode is the document object model: a graph of Nodes built from a
YAML event stream.

	Stream
	  Document(s)
	    Node (ScalarNode, MappingNode or SequenceNode)

Anchored nodes may be referenced from several places (and from themselves),
so the model is a graph rather than a tree. While a document is being loaded,
an alias whose anchor was not seen yet is represented by an AliasNode stub;
LoadingState replaces every stub with its target once the whole document has
been read. A fully loaded document never contains an AliasNode.
*/
package yamlnode
