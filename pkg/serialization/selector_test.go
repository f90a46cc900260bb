// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"reflect"
	"sync"
	"testing"

	"carvel.dev/yamlgraph/pkg/descriptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profiledFactory struct {
	kindSerializerFactory
	profiles []string
}

func (f profiledFactory) Profiles() []string { return f.profiles }

type countingFactory struct {
	lock  sync.Mutex
	calls int
}

func (f *countingFactory) TryCreate(_ *SerializerContext, desc *descriptor.TypeDescriptor) Serializable {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls++
	if desc.Kind == descriptor.Primitive {
		return primitiveSerializer{}
	}
	return nil
}

func describe(t *testing.T, sample interface{}) *descriptor.TypeDescriptor {
	desc, err := descriptor.NewFactory(descriptor.FactoryOpts{}).Find(reflect.TypeOf(sample))
	require.NoError(t, err)
	return desc
}

func TestSelectorMustBeSealed(t *testing.T) {
	selector := NewFactorySelector("", nil)
	selector.TryAddFactory(&countingFactory{})

	_, err := selector.GetSerializer(nil, describe(t, 1))
	require.EqualError(t, err, "Expected factory selector to be sealed before use")

	selector.Seal()
	assert.PanicsWithValue(t, "Factory selector is already sealed", func() {
		selector.TryAddFactory(&countingFactory{})
	})
}

func TestSelectorProfiles(t *testing.T) {
	special := profiledFactory{kindSerializerFactory{descriptor.Primitive, objectSerializer{}}, []string{"special"}}

	selector := NewFactorySelector("", nil)
	assert.False(t, selector.TryAddFactory(special))
	assert.True(t, selector.TryAddFactory(kindSerializerFactory{descriptor.Primitive, primitiveSerializer{}}))
	selector.Seal()

	serializer, err := selector.GetSerializer(nil, describe(t, ""))
	require.NoError(t, err)
	assert.Equal(t, primitiveSerializer{}, serializer)

	selector = NewFactorySelector("special", nil)
	assert.True(t, selector.TryAddFactory(special))
	selector.Seal()

	serializer, err = selector.GetSerializer(nil, describe(t, ""))
	require.NoError(t, err)
	assert.Equal(t, objectSerializer{}, serializer)
}

func TestSelectorCachesResolutions(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	factory := &countingFactory{}

	selector := NewFactorySelector("", metrics)
	selector.TryAddFactory(factory)
	selector.Seal()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := selector.GetSerializer(nil, describe(t, 1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, factory.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.serializersResolved))
	assert.Equal(t, 10.0, testutil.ToFloat64(metrics.serializerLookups.WithLabelValues(lookupHit))+
		testutil.ToFloat64(metrics.serializerLookups.WithLabelValues(lookupMiss)))

	_, err := selector.GetSerializer(nil, describe(t, struct{}{}))
	require.EqualError(t, err, "no serializer for type struct {}")
	_, err = selector.GetSerializer(nil, describe(t, struct{}{}))
	require.EqualError(t, err, "no serializer for type struct {}")
	assert.Equal(t, 2, factory.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.serializersResolved))
}

func TestOperationMetrics(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	settings := NewSettings()
	settings.Metrics = metrics
	serializer := MustNew(settings)

	_, err := serializer.Marshal(map[string]int{"a": 1})
	require.NoError(t, err)

	var out map[string]int
	require.Error(t, serializer.Unmarshal([]byte("a: [1]"), &out))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operationsTotal.WithLabelValues(operationSerialize, resultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operationsTotal.WithLabelValues(operationDeserialize, resultFailure)))
}
