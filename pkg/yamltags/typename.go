// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamltags

import (
	"strings"
)

// SplitGenericArguments splits a qualified name into its generic definition,
// its generic arguments and its slice rank:
//
//	"ns.Pair[[string,go],[int[],go]][],app" -> "ns.Pair,app", ["string,go", "int[],go"], 1
//
// Bracket depth 1 delimits the argument list, depth 2 each argument, and
// every "[]" at depth 0 adds one rank. Names with unbalanced brackets are
// returned unchanged.
func SplitGenericArguments(name string) (string, []string, int) {
	firstBracket, lastBracket := -1, -1
	level, start, rank := 0, 0, 0
	var args []string

	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '[':
			if firstBracket < 0 {
				firstBracket = i
			}
			level++
			if level == 2 {
				start = i + 1
			}
		case ']':
			lastBracket = i
			level--
			if level == 1 {
				args = append(args, name[start:i])
			}
			if level == 0 && i > 0 && name[i-1] == '[' {
				rank++
			}
		}
	}

	if level != 0 || (args == nil && rank == 0) {
		return name, nil, 0
	}
	return name[:firstBracket] + name[lastBracket+1:], args, rank
}

// ParseType separates the assembly from a qualified name. Commas inside
// generic arguments do not count, and anything after a second top level
// comma (e.g. a version) is dropped.
func ParseType(fullName string) (string, string) {
	level := 0
	for i := 0; i < len(fullName); i++ {
		switch fullName[i] {
		case '[':
			level++
		case ']':
			level--
		case ',':
			if level != 0 {
				continue
			}
			assemblyName := strings.TrimPrefix(fullName[i+1:], " ")
			if end := strings.IndexByte(assemblyName, ','); end >= 0 {
				assemblyName = assemblyName[:end]
			}
			return fullName[:i], assemblyName
		}
	}
	return fullName, ""
}
