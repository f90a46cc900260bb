// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package descriptor describes Go types the way the serializer needs to see
them: which kind of YAML node a type maps to (scalar, mapping, sequence),
which struct fields are members and under which names, and how new instances
are created.

Struct fields are configured with the yaml struct tag:

	Name    string            `yaml:"name"`
	Skipped int               `yaml:"-"`
	Labels  map[string]string `yaml:",omitempty,flow"`
	Items   []Item            `yaml:",items"`    // the struct is a collection of Items
	Entries map[string]int    `yaml:",entries"`  // the struct is a dictionary
*/
package descriptor
