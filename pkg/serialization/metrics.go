// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	operationSerialize   = "serialize"
	operationDeserialize = "deserialize"

	resultSuccess = "success"
	resultFailure = "failure"

	lookupHit  = "hit"
	lookupMiss = "miss"
)

// Metrics is optional; a nil *Metrics records nothing.
type Metrics struct {
	operationsTotal     *prometheus.CounterVec
	serializerLookups   *prometheus.CounterVec
	prunedAnchorsTotal  prometheus.Counter
	serializersResolved prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	return &Metrics{
		operationsTotal: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "yamlgraph",
			Name:      "operations_total",
			Help:      "Total number of serialize and deserialize calls by result.",
		}, []string{"operation", "result"}),
		serializerLookups: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "yamlgraph",
			Name:      "serializer_cache_lookups_total",
			Help:      "Total number of per-type serializer lookups by cache result.",
		}, []string{"result"}),
		prunedAnchorsTotal: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Namespace: "yamlgraph",
			Name:      "pruned_anchors_total",
			Help:      "Total number of anchors dropped because no alias referred to them.",
		}),
		serializersResolved: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Namespace: "yamlgraph",
			Name:      "serializers_resolved_total",
			Help:      "Total number of types a serializer was resolved for.",
		}),
	}
}

func (m *Metrics) observeOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultFailure
	}
	m.operationsTotal.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) observeLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.serializerLookups.WithLabelValues(lookupHit).Inc()
	} else {
		m.serializerLookups.WithLabelValues(lookupMiss).Inc()
	}
}

func (m *Metrics) observeResolved() {
	if m == nil {
		return
	}
	m.serializersResolved.Inc()
}

func (m *Metrics) observePrunedAnchors(count int) {
	if m == nil || count == 0 {
		return
	}
	m.prunedAnchorsTotal.Add(float64(count))
}
