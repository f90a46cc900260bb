// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"reflect"
	"strings"
	"testing"

	"carvel.dev/yamlgraph/pkg/yamlevents"
	"github.com/k14s/difflib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emitAll(t *testing.T, emitter EventEmitter, infos ...EventInfo) error {
	t.Helper()
	require.NoError(t, emitter.StreamStart())
	require.NoError(t, emitter.DocumentStart())
	for _, info := range infos {
		err := emitter.Emit(info)
		if err != nil {
			return err
		}
	}
	err := emitter.DocumentEnd()
	if err != nil {
		return err
	}
	return emitter.StreamEnd()
}

func scalar(value interface{}, rendered string) *ScalarEventInfo {
	return &ScalarEventInfo{
		ObjectEventInfo: ObjectEventInfo{SourceValue: reflect.ValueOf(value)},
		RenderedValue:   rendered,
		IsPlainImplicit: true, IsQuotedImplicit: true,
	}
}

func TestAnchorEventEmitterPrunesUnusedAnchors(t *testing.T) {
	rec := yamlevents.NewRecorder()
	metrics := NewMetrics(prometheus.NewRegistry())

	emitter := NewAnchorEventEmitter(NewWriterEventEmitter(rec))
	emitter.metrics = metrics

	err := emitAll(t, emitter,
		&SequenceStartEventInfo{ObjectEventInfo: ObjectEventInfo{Anchor: "o1"}, IsImplicit: true},
		&MappingStartEventInfo{ObjectEventInfo: ObjectEventInfo{Anchor: "o2"}, IsImplicit: true},
		&MappingEndEventInfo{},
		&ScalarEventInfo{ObjectEventInfo: ObjectEventInfo{Anchor: "o3"}, RenderedValue: "x", IsPlainImplicit: true},
		&AliasEventInfo{Alias: "o2"},
		&SequenceEndEventInfo{},
	)
	require.NoError(t, err)

	assertEqual(t, strings.Join(rec.Strings(), "\n"), `+STR
+DOC
+SEQ
+MAP &o2
-MAP
=VAL :x
=ALI *o2
-SEQ
-DOC
-STR`)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.prunedAnchorsTotal))
}

func TestAnchorEventEmitterHoldsBackTheDocument(t *testing.T) {
	rec := yamlevents.NewRecorder()
	emitter := NewAnchorEventEmitter(NewWriterEventEmitter(rec))

	require.NoError(t, emitter.StreamStart())
	require.NoError(t, emitter.DocumentStart())
	require.NoError(t, emitter.Emit(scalar("x", "x")))
	assert.Equal(t, []string{"+STR", "+DOC"}, rec.Strings())

	require.NoError(t, emitter.DocumentEnd())
	assert.Equal(t, []string{"+STR", "+DOC", "=VAL :x", "-DOC"}, rec.Strings())
}

func TestJSONEventEmitter(t *testing.T) {
	rec := yamlevents.NewRecorder()

	err := emitAll(t, NewJSONEventEmitter(NewWriterEventEmitter(rec)),
		&MappingStartEventInfo{ObjectEventInfo: ObjectEventInfo{Anchor: "o1", Tag: "!thing"}},
		scalar("name", "name"),
		scalar("Alice", "Alice"),
		scalar(30, "30"),
		scalar(true, "true"),
		scalar("ratio", "ratio"),
		scalar(1.5, "1.5"),
		scalar("nothing", "nothing"),
		&ScalarEventInfo{ObjectEventInfo: ObjectEventInfo{Tag: "!!null"}, RenderedValue: "~", IsPlainImplicit: true},
		scalar("inf", "inf"),
		scalar(1.0, ".inf"),
		// node scalars have no Go value
		scalar(nil, "list"),
		&SequenceStartEventInfo{IsImplicit: true},
		&ScalarEventInfo{RenderedValue: "12", IsPlainImplicit: true},
		&ScalarEventInfo{RenderedValue: "12", Style: yamlevents.SingleQuotedStyle, IsQuotedImplicit: true},
		&ScalarEventInfo{RenderedValue: "text", IsPlainImplicit: true},
		&SequenceEndEventInfo{},
		&MappingEndEventInfo{},
	)
	require.NoError(t, err)

	assertEqual(t, strings.Join(rec.Strings(), "\n"), `+STR
+DOC
+MAP {}
=VAL "name
=VAL "Alice
=VAL "30
=VAL :true
=VAL "ratio
=VAL :1.5
=VAL "nothing
=VAL :null
=VAL "inf
=VAL ".inf
=VAL "list
+SEQ []
=VAL :12
=VAL "12
=VAL "text
-SEQ
-MAP
-DOC
-STR`)
}

func TestJSONEventEmitterRejectsWhatJSONCannotHold(t *testing.T) {
	err := emitAll(t, NewJSONEventEmitter(NewWriterEventEmitter(yamlevents.NewRecorder())),
		&SequenceStartEventInfo{}, &AliasEventInfo{Alias: "o1"}, &SequenceEndEventInfo{})
	require.EqualError(t, err, "alias '*o1' cannot be represented in JSON")

	err = emitAll(t, NewJSONEventEmitter(NewWriterEventEmitter(yamlevents.NewRecorder())),
		&MappingStartEventInfo{}, &SequenceStartEventInfo{}, &SequenceEndEventInfo{},
		scalar("v", "v"), &MappingEndEventInfo{})
	require.EqualError(t, err, "mapping keys must be scalars in JSON")
}

func TestEventInfoConversions(t *testing.T) {
	events := []*yamlevents.Event{
		yamlevents.NewMappingStart("a", "!t", false, yamlevents.FlowStyle),
		yamlevents.NewScalar("", "!!str", "30", yamlevents.DoubleQuotedStyle, false, true),
		yamlevents.NewAlias("a"),
		yamlevents.NewSequenceStart("", "", true, yamlevents.BlockStyle),
		yamlevents.NewSequenceEnd(),
		yamlevents.NewMappingEnd(),
	}
	for _, ev := range events {
		info, err := fromEvent(ev)
		require.NoError(t, err)
		converted, err := toEvent(info)
		require.NoError(t, err)
		assert.Equal(t, ev.String(), converted.String())
	}

	_, err := fromEvent(yamlevents.NewDocumentStart(true))
	require.EqualError(t, err, "unexpected DocumentStart inside a node")
}

func assertEqual(t *testing.T, actual, expected string) {
	t.Helper()
	if actual != expected {
		t.Fatalf("Not equal; diff expected...actual:\n%v\n", difflib.PPDiff(strings.Split(expected, "\n"), strings.Split(actual, "\n")))
	}
}
