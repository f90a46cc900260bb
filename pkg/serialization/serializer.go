// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"reflect"

	"carvel.dev/yamlgraph/pkg/descriptor"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"carvel.dev/yamlgraph/pkg/yamlevents/yamlv3"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// Serializer maps Go values to YAML and back. It is safe for concurrent
// use; every call gets its own SerializerContext.
type Serializer struct {
	settings    *Settings
	descriptors *descriptor.Factory
	selector    *FactorySelector
	processor   Serializable
}

func New(settings *Settings) (*Serializer, error) {
	if settings == nil {
		settings = NewSettings()
	}
	err := settings.Validate()
	if err != nil {
		return nil, err
	}
	settings = settings.withDefaults()

	selector := NewFactorySelector(settings.Profile, settings.Metrics)
	for _, factory := range settings.factories {
		selector.TryAddFactory(factory)
	}
	if len(settings.serializers) > 0 {
		selector.TryAddFactory(typeSerializerFactory{serializers: settings.serializers})
	}
	for _, factory := range defaultFactories() {
		selector.TryAddFactory(factory)
	}
	selector.Seal()

	return &Serializer{
		settings: settings,
		descriptors: descriptor.NewFactory(descriptor.FactoryOpts{
			NamingConvention: settings.NamingConvention,
			SortMembers:      settings.SortKeyForMapping,
			Less:             settings.ComparerForKeySorting,
		}),
		selector:  selector,
		processor: newProcessor(settings),
	}, nil
}

// MustNew is New for settings known to be valid.
func MustNew(settings *Settings) *Serializer {
	serializer, err := New(settings)
	if err != nil {
		panic(fmt.Sprintf("Invalid serializer settings: %s", err))
	}
	return serializer
}

func (s *Serializer) Settings() *Settings { return s.settings }

// Serialize writes value as one YAML document. A nil expectedType stands
// for interface{}, which writes tags for every non-generic value.
func (s *Serializer) Serialize(w io.Writer, value interface{}, expectedType reflect.Type) error {
	buffered := bufio.NewWriter(w)
	emitter := yamlv3.NewEmitter(buffered, yamlv3.EmitterOpts{Indent: s.settings.PreferredIndent})

	err := s.SerializeTo(emitter, value, expectedType)
	if err != nil {
		// whatever was buffered is incomplete
		return err
	}
	return buffered.Flush()
}

// SerializeTo writes value as a stream with one document to emitter.
func (s *Serializer) SerializeTo(emitter yamlevents.Emitter, value interface{}, expectedType reflect.Type) error {
	return s.SerializeAllTo(emitter, []interface{}{value}, expectedType)
}

// SerializeAll writes every value as its own document of one YAML stream.
func (s *Serializer) SerializeAll(w io.Writer, values []interface{}, expectedType reflect.Type) error {
	buffered := bufio.NewWriter(w)
	emitter := yamlv3.NewEmitter(buffered, yamlv3.EmitterOpts{Indent: s.settings.PreferredIndent})

	err := s.SerializeAllTo(emitter, values, expectedType)
	if err != nil {
		return err
	}
	return buffered.Flush()
}

// SerializeAllTo writes values as a stream of documents to emitter.
// Anchors are scoped to their document.
func (s *Serializer) SerializeAllTo(emitter yamlevents.Emitter, values []interface{}, expectedType reflect.Type) (resultErr error) {
	defer func() { s.settings.Metrics.observeOperation(operationSerialize, resultErr) }()

	writer := newEventEmitter(emitter, s.settings)

	err := writer.StreamStart()
	if err != nil {
		return err
	}
	for _, value := range values {
		err := s.serializeDocument(writer, value, expectedType)
		if err != nil {
			return err
		}
	}
	return writer.StreamEnd()
}

func (s *Serializer) serializeDocument(writer EventEmitter, value interface{}, expectedType reflect.Type) error {
	ctx := newSerializerContext(s)
	ctx.Writer = writer

	oc, err := ctx.NewObjectContext(reflect.ValueOf(value), expectedType)
	if err != nil {
		return err
	}

	err = writer.DocumentStart()
	if err != nil {
		return err
	}
	err = ctx.WriteYaml(oc)
	if err != nil {
		level.Debug(ctx.Logger()).Log("msg", "serialization failed", "type", oc.Descriptor.Type, "err", err)
		return err
	}
	return writer.DocumentEnd()
}

// Marshal returns value as YAML, using the dynamic type of value as the
// expected type so that the root node carries no tag.
func (s *Serializer) Marshal(value interface{}) ([]byte, error) {
	var expectedType reflect.Type
	if value != nil {
		expectedType = reflect.TypeOf(value)
	}
	var buf bytes.Buffer
	err := s.Serialize(&buf, value, expectedType)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize reads the only document of r. existing, when given, is
// filled in instead of creating a new value where the types allow it.
// An empty document yields nil.
func (s *Serializer) Deserialize(r io.Reader, expectedType reflect.Type, existing interface{}) (interface{}, error) {
	parser, err := yamlv3.NewParserFromReader(r, "")
	if err != nil {
		return nil, err
	}
	return s.DeserializeFrom(yamlevents.NewReader(parser), expectedType, existing)
}

// DeserializeFrom reads one document from reader. Stream and document
// boundaries are optional so that a single node can be read from the
// middle of a stream; a stream must hold exactly one document.
func (s *Serializer) DeserializeFrom(reader *yamlevents.Reader, expectedType reflect.Type, existing interface{}) (result interface{}, resultErr error) {
	defer func() { s.settings.Metrics.observeOperation(operationDeserialize, resultErr) }()

	ctx := newSerializerContext(s)
	ctx.Reader = reader

	value, err := s.deserialize(ctx, expectedType, existing)
	if err != nil {
		var yamlErr *yamlevents.YamlError
		if errors.As(err, &yamlErr) {
			return nil, yamlErr
		}
		return nil, yamlevents.AsYamlError(errors.Cause(err), reader.Position(), nil)
	}
	return value, nil
}

func (s *Serializer) deserialize(ctx *SerializerContext, expectedType reflect.Type, existing interface{}) (interface{}, error) {
	reader := ctx.Reader

	hasStreamStart := reader.Allow(yamlevents.StreamStart) != nil
	hasDocumentStart := reader.Allow(yamlevents.DocumentStart) != nil

	var result interface{}

	ev, err := reader.Peek()
	if err != nil {
		return nil, err
	}
	if ev != nil && ev.Kind != yamlevents.DocumentEnd && ev.Kind != yamlevents.StreamEnd {
		oc, err := ctx.NewObjectContext(reflect.ValueOf(existing), expectedType)
		if err != nil {
			return nil, err
		}
		value, err := ctx.ReadYaml(oc)
		if err != nil {
			return nil, err
		}
		result = interfaceOf(value)
	}

	if hasDocumentStart {
		_, err := reader.Expect(yamlevents.DocumentEnd)
		if err != nil {
			return nil, err
		}
	}
	if hasStreamStart {
		_, err := reader.Expect(yamlevents.StreamEnd)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Unmarshal reads the only document of data into out, which must be a
// non-nil pointer.
func (s *Serializer) Unmarshal(data []byte, out interface{}) error {
	ptr := reflect.ValueOf(out)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return fmt.Errorf("expected a non-nil pointer, but was %T", out)
	}
	elem := ptr.Elem()

	value, err := s.Deserialize(bytes.NewReader(data), elem.Type(), elem.Interface())
	if err != nil {
		return err
	}
	setValue(elem, reflect.ValueOf(value))
	return nil
}
