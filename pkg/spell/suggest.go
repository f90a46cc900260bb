// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package spell

import (
	"strings"
)

// Suggest returns the candidate closest to word, or "" when none is close
// enough to be a likely misspelling. Ties go to the earlier candidate.
func Suggest(word string, candidates []string) string {
	best := ""
	bestDistance := maxDistance(word) + 1

	for _, candidate := range candidates {
		distance := Distance(strings.ToLower(word), strings.ToLower(candidate))
		if distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}
	return best
}

// one edit per three characters, at least one
func maxDistance(word string) int {
	max := len(word) / 3
	if max < 1 {
		return 1
	}
	return max
}

// Distance is the Levenshtein distance between a and b (in runes).
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
