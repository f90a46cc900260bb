// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package yamlv3 connects yamlevents to gopkg.in/yaml.v3, which does the actual
scanning and text emission.

Parser decodes every document of a stream into a yaml.v3 node tree and
flattens it into events. Emitter does the reverse: it rebuilds a yaml.v3 node
tree per document and encodes it.
*/
package yamlv3
