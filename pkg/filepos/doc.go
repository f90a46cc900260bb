// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filepos provides the concept of Position: a source name (usually a file),
a line number and (optionally) a column within that source.

Every YAML event and every node carries a Position so that errors raised while
loading a document or mapping it onto Go values point back at the offending
text.

Not all Position point within a file (e.g. values that were built in memory).
The zero-value of Position (can be created using NewUnknownPosition())
represents this case.
*/
package filepos
