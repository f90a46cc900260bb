// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlevents_test

import (
	"errors"
	"testing"

	"carvel.dev/yamlgraph/pkg/filepos"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderExpectAndAccept(t *testing.T) {
	reader := yamlevents.NewReader(yamlevents.NewSliceParser(yamlevents.Document(yamlevents.NewPlainScalar("x"))...))

	_, err := reader.Expect(yamlevents.StreamStart)
	require.NoError(t, err)

	assert.True(t, reader.Accept(yamlevents.DocumentStart))
	assert.Nil(t, reader.Allow(yamlevents.StreamEnd))
	assert.NotNil(t, reader.Allow(yamlevents.DocumentStart))

	ev, err := reader.Expect(yamlevents.Scalar)
	require.NoError(t, err)
	assert.Equal(t, "x", ev.Value)
	assert.Same(t, ev, reader.Current())

	_, err = reader.Expect(yamlevents.StreamEnd)
	require.Error(t, err)
	assert.Equal(t, "yaml: expected StreamEnd, but got DocumentEnd", err.Error())
}

func TestReaderEndOfStream(t *testing.T) {
	reader := yamlevents.NewReader(yamlevents.NewSliceParser(yamlevents.NewStreamStart()))

	_, err := reader.Next()
	require.NoError(t, err)

	ev, err := reader.Peek()
	require.NoError(t, err)
	assert.Nil(t, ev)

	_, err = reader.Next()
	require.EqualError(t, err, "yaml: unexpected end of stream")

	_, err = reader.Expect(yamlevents.StreamEnd)
	require.EqualError(t, err, "yaml: expected StreamEnd, but reached end of stream")
}

func TestReaderSkipsWholeNodes(t *testing.T) {
	reader := yamlevents.NewReader(yamlevents.NewSliceParser(
		yamlevents.NewMappingStart("", "", true, yamlevents.BlockStyle),
		yamlevents.NewPlainScalar("a"),
		yamlevents.NewSequenceStart("", "", true, yamlevents.BlockStyle),
		yamlevents.NewPlainScalar("1"),
		yamlevents.NewSequenceEnd(),
		yamlevents.NewMappingEnd(),
		yamlevents.NewPlainScalar("after"),
	))

	require.NoError(t, reader.Skip())

	ev, err := reader.Expect(yamlevents.Scalar)
	require.NoError(t, err)
	assert.Equal(t, "after", ev.Value)
}

type failingParser struct{ calls int }

func (p *failingParser) Next() (*yamlevents.Event, error) {
	p.calls++
	if p.calls == 1 {
		return yamlevents.NewStreamStart().WithPosition(filepos.NewPositionWithColumn(1, 1), nil), nil
	}
	return nil, errors.New("did not find expected key")
}

func TestReaderParserErrorsAreStickyAndPositioned(t *testing.T) {
	parser := &failingParser{}
	reader := yamlevents.NewReader(parser)

	_, err := reader.Next()
	require.NoError(t, err)

	_, err = reader.Peek()
	require.EqualError(t, err, "yaml: line 1:1: did not find expected key")

	var yamlErr *yamlevents.YamlError
	require.True(t, errors.As(err, &yamlErr))
	assert.Equal(t, 1, yamlErr.Start.LineNum())

	_, err = reader.Next()
	require.Error(t, err)
	assert.Equal(t, 2, parser.calls)
}

func TestAsYamlErrorUsesAnchorPositions(t *testing.T) {
	anchorErr := &yamlevents.AnchorNotFoundError{Anchor: "a", Start: filepos.NewPosition(4)}

	err := yamlevents.AsYamlError(anchorErr, filepos.NewPosition(9), nil)
	assert.Equal(t, "yaml: line 4: alias '*a' references an undefined anchor", err.Error())
	assert.Same(t, err, yamlevents.AsYamlError(err, nil, nil))
}
