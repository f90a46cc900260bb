// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package serialization maps Go values to YAML event streams and back.

A Serializer is built once from Settings and may be shared between
goroutines. Every Serialize or Deserialize call gets its own
SerializerContext, which drives values through a chain of processors:

	[user stages] -> AnchorSerializer -> TagTypeSerializer -> RoutingSerializer

The routing serializer asks a sealed FactorySelector for the per-kind
serializer of each type (primitives, dictionaries, collections, arrays,
structs, pointers and yamlnode trees).

On the way out, event infos pass through a chain of emitters before they
become yamlevents.Event values:

	AnchorEventEmitter -> [JSONEventEmitter] -> WriterEventEmitter

The anchor emitter buffers a whole document so that anchors nobody
aliased can be dropped once the document is complete. Memory use is
therefore proportional to the size of the document being written.
*/
package serialization
