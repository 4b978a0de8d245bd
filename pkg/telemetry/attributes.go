package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard span attribute keys.
const (
	// Network shape.
	AttrNetworkVertices = "network.vertices"
	AttrNetworkArcs     = "network.arcs"
	AttrNetworkSource   = "network.source"
	AttrNetworkSink     = "network.sink"

	// Algorithm outcome.
	AttrAlgorithm     = "algorithm.name"
	AttrFlowValue     = "algorithm.flow_value"
	AttrTotalCost     = "algorithm.total_cost"
	AttrPushes        = "algorithm.pushes"
	AttrRelabels      = "algorithm.relabels"
	AttrScalingPhases = "algorithm.scaling_phases"

	// Caching.
	AttrCacheHit     = "cache.hit"
	AttrCacheBackend = "cache.backend"
)

// NetworkAttributes describes the solved network.
func NetworkAttributes(vertices, arcs, source, sink int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrNetworkVertices, vertices),
		attribute.Int(AttrNetworkArcs, arcs),
		attribute.Int(AttrNetworkSource, source),
		attribute.Int(AttrNetworkSink, sink),
	}
}

// MaxFlowAttributes describes a completed max-flow run.
func MaxFlowAttributes(value int64, pushes, relabels int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, "max_flow"),
		attribute.Int64(AttrFlowValue, value),
		attribute.Int(AttrPushes, pushes),
		attribute.Int(AttrRelabels, relabels),
	}
}

// MinCostFlowAttributes describes a completed min-cost-flow run.
func MinCostFlowAttributes(totalCost int64, phases, pushes, relabels int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, "min_cost_flow"),
		attribute.Int64(AttrTotalCost, totalCost),
		attribute.Int(AttrScalingPhases, phases),
		attribute.Int(AttrPushes, pushes),
		attribute.Int(AttrRelabels, relabels),
	}
}

// CacheAttributes describes a cache lookup.
func CacheAttributes(backend string, hit bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCacheBackend, backend),
		attribute.Bool(AttrCacheHit, hit),
	}
}
