// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamltags_test

import (
	"math"
	"testing"

	"carvel.dev/yamlgraph/pkg/yamltags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreSchemaResolve(t *testing.T) {
	schema := yamltags.NewCoreSchema()

	cases := map[string]string{
		"":       "!!null",
		"~":      "!!null",
		"null":   "!!null",
		"True":   "!!bool",
		"false":  "!!bool",
		"yes":    "!!str",
		"42":     "!!int",
		"-7":     "!!int",
		"0o17":   "!!int",
		"0x1F":   "!!int",
		"1.5":    "!!float",
		"1e10":   "!!float",
		".inf":   "!!float",
		"-.Inf":  "!!float",
		".nan":   "!!float",
		"Alice":  "!!str",
		"1.2.3":  "!!str",
		"0x":     "!!str",
		"- list": "!!str",
	}
	for value, tag := range cases {
		assert.Equal(t, tag, schema.Resolve(value), "value '%s'", value)
	}

	assert.Equal(t, "!!str", yamltags.NewFailsafeSchema().Resolve("42"))
}

func TestSchemaTagExpansion(t *testing.T) {
	schema := yamltags.NewCoreSchema()
	assert.Equal(t, "tag:yaml.org,2002:int", schema.ExpandTag("!!int"))
	assert.Equal(t, "!!map", schema.ShortenTag("tag:yaml.org,2002:map"))
	assert.Equal(t, "!custom", schema.ShortenTag("!custom"))
}

func TestScalarParsing(t *testing.T) {
	i, err := yamltags.ParseInt("0x1F", 64)
	require.NoError(t, err)
	assert.Equal(t, int64(31), i)

	i, err = yamltags.ParseInt("+12", 8)
	require.NoError(t, err)
	assert.Equal(t, int64(12), i)

	_, err = yamltags.ParseInt("300", 8)
	require.EqualError(t, err, "'300' is not a 8-bit integer")

	u, err := yamltags.ParseUint("0o17", 64)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), u)

	f, err := yamltags.ParseFloat("-.inf", 64)
	require.NoError(t, err)
	assert.True(t, math.IsInf(f, -1))

	b, err := yamltags.ParseBool("TRUE")
	require.NoError(t, err)
	assert.True(t, b)

	assert.Equal(t, "3.0", yamltags.FormatFloat(3, 64))
	assert.Equal(t, "0.25", yamltags.FormatFloat(0.25, 64))
	assert.Equal(t, "1e+21", yamltags.FormatFloat(1e21, 64))
	assert.Equal(t, ".nan", yamltags.FormatFloat(math.NaN(), 64))
}
