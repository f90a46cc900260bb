// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"fmt"
	"reflect"
	"sync"

	"carvel.dev/yamlgraph/pkg/descriptor"
)

// FactorySelector picks the Serializable for each type. Factories are added
// first and then the selector is sealed; only a sealed selector resolves
// serializers. Resolutions, including types no factory claims, are cached
// per type behind a RWMutex, which is the point of contention when many
// goroutines share one Serializer.
type FactorySelector struct {
	profile string
	metrics *Metrics

	lock      sync.RWMutex
	factories []SerializableFactory
	sealed    bool
	cache     map[reflect.Type]Serializable
}

func NewFactorySelector(profile string, metrics *Metrics) *FactorySelector {
	return &FactorySelector{profile: profile, metrics: metrics, cache: map[reflect.Type]Serializable{}}
}

// TryAddFactory adds factory unless it is profiled for other profiles.
func (s *FactorySelector) TryAddFactory(factory SerializableFactory) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.sealed {
		panic("Factory selector is already sealed")
	}
	if profiled, ok := factory.(Profiled); ok && !s.isActive(profiled.Profiles()) {
		return false
	}
	s.factories = append(s.factories, factory)
	return true
}

func (s *FactorySelector) isActive(profiles []string) bool {
	if len(profiles) == 0 {
		return true
	}
	for _, profile := range profiles {
		if profile == s.profile {
			return true
		}
	}
	return false
}

func (s *FactorySelector) Seal() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.sealed = true
}

func (s *FactorySelector) GetSerializer(ctx *SerializerContext, desc *descriptor.TypeDescriptor) (Serializable, error) {
	s.lock.RLock()
	sealed := s.sealed
	serializer, found := s.cache[desc.Type]
	s.lock.RUnlock()

	if !sealed {
		return nil, fmt.Errorf("Expected factory selector to be sealed before use")
	}
	s.metrics.observeLookup(found)
	if found {
		return cached(serializer, desc)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if serializer, found := s.cache[desc.Type]; found {
		return cached(serializer, desc)
	}

	for _, factory := range s.factories {
		serializer = factory.TryCreate(ctx, desc)
		if serializer != nil {
			break
		}
	}
	s.cache[desc.Type] = serializer
	if serializer == nil {
		return cached(nil, desc)
	}
	s.metrics.observeResolved()
	return serializer, nil
}

// cached turns a cache entry into a result; nil marks an unclaimed type.
func cached(serializer Serializable, desc *descriptor.TypeDescriptor) (Serializable, error) {
	if serializer == nil {
		return nil, fmt.Errorf("no serializer for type %s", desc.Type)
	}
	return serializer, nil
}
