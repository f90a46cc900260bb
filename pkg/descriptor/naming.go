// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package descriptor

import (
	"strings"
	"unicode"
)

// NamingConvention turns a Go field name into a member name. It only
// applies to fields without an explicit name in their yaml tag.
type NamingConvention interface {
	Convert(name string) string
}

// DefaultNamingConvention keeps field names as they are.
type DefaultNamingConvention struct{}

func (DefaultNamingConvention) Convert(name string) string { return name }

// CamelCaseNamingConvention lower cases the leading word: "HTTPServer" -> "httpServer".
type CamelCaseNamingConvention struct{}

func (CamelCaseNamingConvention) Convert(name string) string {
	words := splitWords(name)
	for i, word := range words {
		if i == 0 {
			words[i] = strings.ToLower(word)
		} else {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, "")
}

// FlatNamingConvention is snake case: "HTTPServer" -> "http_server".
type FlatNamingConvention struct{}

func (FlatNamingConvention) Convert(name string) string {
	words := splitWords(name)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, "_")
}

// splitWords splits on case changes, keeping acronyms together:
// "HTTPServerID" -> HTTP, Server, ID.
func splitWords(name string) []string {
	runes := []rune(name)
	var words []string
	start := 0

	for i := 1; i < len(runes); i++ {
		prev, curr := runes[i-1], runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		boundary := (unicode.IsLower(prev) && unicode.IsUpper(curr)) ||
			(unicode.IsUpper(prev) && unicode.IsUpper(curr) && unicode.IsLower(next)) ||
			(unicode.IsLetter(prev) && unicode.IsDigit(curr)) ||
			curr == '_'

		if boundary {
			if word := strings.Trim(string(runes[start:i]), "_"); word != "" {
				words = append(words, word)
			}
			start = i
		}
	}
	if word := strings.Trim(string(runes[start:]), "_"); word != "" {
		words = append(words, word)
	}
	return words
}
