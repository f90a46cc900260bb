// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization_test

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"carvel.dev/yamlgraph/pkg/descriptor"
	"carvel.dev/yamlgraph/pkg/serialization"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Celsius float64

type celsiusSerializer struct{}

func (celsiusSerializer) ReadYaml(oc *serialization.ObjectContext) (reflect.Value, error) {
	ev, err := oc.Context.Reader.Expect(yamlevents.Scalar)
	if err != nil {
		return reflect.Value{}, err
	}
	degrees, err := strconv.ParseFloat(strings.TrimSuffix(ev.Value, "C"), 64)
	if err != nil {
		return reflect.Value{}, yamlevents.NewError(ev, "invalid temperature '%s'", ev.Value)
	}
	return reflect.ValueOf(Celsius(degrees)), nil
}

func (celsiusSerializer) WriteYaml(oc *serialization.ObjectContext) error {
	return oc.Context.Writer.Emit(&serialization.ScalarEventInfo{
		RenderedValue:    fmt.Sprintf("%gC", oc.Instance.Float()),
		IsPlainImplicit:  true,
		IsQuotedImplicit: true,
	})
}

type Forecast struct {
	Low  Celsius `yaml:"low"`
	High Celsius `yaml:"high"`
}

func TestCustomSerializers(t *testing.T) {
	serializer := newSerializer(t, func(s *serialization.Settings) {
		s.RegisterSerializer(reflect.TypeOf(Celsius(0)), celsiusSerializer{})
	})

	out := marshal(t, serializer, Forecast{Low: -2.5, High: 21})
	assertEqual(t, out, "low: -2.5C\nhigh: 21C\n")

	var result Forecast
	require.NoError(t, serializer.Unmarshal([]byte(out), &result))
	assert.Equal(t, Forecast{Low: -2.5, High: 21}, result)

	err := serializer.Unmarshal([]byte("low: cold\n"), &result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid temperature 'cold'")
}

type shoutingFactory struct{}

func (shoutingFactory) Profiles() []string { return []string{"loud"} }

func (shoutingFactory) TryCreate(_ *serialization.SerializerContext, desc *descriptor.TypeDescriptor) serialization.Serializable {
	if desc.Type.Kind() == reflect.String {
		return shoutingSerializer{}
	}
	return nil
}

type shoutingSerializer struct{}

func (shoutingSerializer) ReadYaml(oc *serialization.ObjectContext) (reflect.Value, error) {
	ev, err := oc.Context.Reader.Expect(yamlevents.Scalar)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(strings.ToLower(ev.Value)).Convert(oc.Descriptor.Type), nil
}

func (shoutingSerializer) WriteYaml(oc *serialization.ObjectContext) error {
	return oc.Context.Writer.Emit(&serialization.ScalarEventInfo{
		RenderedValue:   strings.ToUpper(oc.Instance.String()),
		IsPlainImplicit: true,
	})
}

func TestProfiledFactories(t *testing.T) {
	quiet := newSerializer(t, func(s *serialization.Settings) { s.RegisterFactory(shoutingFactory{}) })
	assertEqual(t, marshal(t, quiet, Address{City: "Paris"}), "city: Paris\n")

	loud := newSerializer(t, func(s *serialization.Settings) {
		s.Profile = "loud"
		s.RegisterFactory(shoutingFactory{})
	})
	assertEqual(t, marshal(t, loud, Address{City: "Paris"}), "city: PARIS\n")

	var result Address
	require.NoError(t, loud.Unmarshal([]byte("city: ROME\n"), &result))
	assert.Equal(t, Address{City: "rome"}, result)
}

type tracingStage struct {
	next    serialization.Serializable
	written *[]string
}

func (s tracingStage) ReadYaml(oc *serialization.ObjectContext) (reflect.Value, error) {
	return s.next.ReadYaml(oc)
}

func (s tracingStage) WriteYaml(oc *serialization.ObjectContext) error {
	if oc.ParentMember != nil {
		*s.written = append(*s.written, oc.ParentMember.Name)
	}
	return s.next.WriteYaml(oc)
}

func TestStagesWrapTheProcessorChain(t *testing.T) {
	var written []string
	serializer := newSerializer(t, func(s *serialization.Settings) {
		s.Stages = append(s.Stages, func(next serialization.Serializable) serialization.Serializable {
			return tracingStage{next: next, written: &written}
		})
	})

	marshal(t, serializer, Person{Name: "n", Address: &Address{City: "c"}})
	assert.Equal(t, []string{"name", "address", "city"}, written)
}
