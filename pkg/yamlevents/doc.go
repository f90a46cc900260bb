// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package yamlevents defines the vocabulary of a YAML event stream (stream and
document boundaries, scalars, collection start/end markers and aliases) and a
Reader that walks such a stream with Peek/Accept/Allow/Expect semantics.

Events are produced by an external parser and consumed by an external emitter;
see package yamlv3 for implementations backed by gopkg.in/yaml.v3. SliceParser
and Recorder keep events in memory.
*/
package yamlevents
