// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package spell_test

import (
	"testing"

	"carvel.dev/yamlgraph/pkg/spell"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b     string
		distance int
	}{
		{"", "", 0},
		{"name", "name", 0},
		{"nmae", "name", 2},
		{"name", "names", 1},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"héllo", "hello", 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.distance, spell.Distance(tc.a, tc.b), "%s -> %s", tc.a, tc.b)
	}
}

func TestSuggest(t *testing.T) {
	members := []string{"name", "age", "address", "tags"}

	assert.Equal(t, "address", spell.Suggest("adress", members))
	assert.Equal(t, "name", spell.Suggest("Name", members))
	assert.Equal(t, "age", spell.Suggest("ag", members))
	assert.Equal(t, "", spell.Suggest("nickname", members))
	assert.Equal(t, "", spell.Suggest("x", nil))
}
