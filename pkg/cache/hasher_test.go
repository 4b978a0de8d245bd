package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxFlowHashOrderIndependent(t *testing.T) {
	arcs := []ArcSpec{
		{From: 0, To: 1, Capacity: 16},
		{From: 0, To: 2, Capacity: 13},
		{From: 1, To: 3, Capacity: 12},
	}
	shuffled := []ArcSpec{arcs[2], arcs[0], arcs[1]}

	assert.Equal(t,
		MaxFlowHash(6, 0, 5, arcs),
		MaxFlowHash(6, 0, 5, shuffled))
}

func TestMaxFlowHashSensitivity(t *testing.T) {
	arcs := []ArcSpec{{From: 0, To: 1, Capacity: 16}}

	base := MaxFlowHash(6, 0, 5, arcs)

	assert.NotEqual(t, base, MaxFlowHash(7, 0, 5, arcs), "vertex count must affect the hash")
	assert.NotEqual(t, base, MaxFlowHash(6, 1, 5, arcs), "source must affect the hash")
	assert.NotEqual(t, base, MaxFlowHash(6, 0, 4, arcs), "sink must affect the hash")
	assert.NotEqual(t, base,
		MaxFlowHash(6, 0, 5, []ArcSpec{{From: 0, To: 1, Capacity: 17}}),
		"capacity must affect the hash")
}

func TestMinCostFlowHashOrderIndependent(t *testing.T) {
	arcs := []ArcSpec{
		{From: 0, To: 2, Capacity: 15, Cost: 4},
		{From: 0, To: 3, Capacity: 10, Cost: 3},
	}
	supplies := []SupplySpec{{Vertex: 0, Value: 20}, {Vertex: 5, Value: -20}}

	a := MinCostFlowHash(6, arcs, supplies, 2)
	b := MinCostFlowHash(6,
		[]ArcSpec{arcs[1], arcs[0]},
		[]SupplySpec{supplies[1], supplies[0]}, 2)

	assert.Equal(t, a, b)
}

func TestMinCostFlowHashSensitivity(t *testing.T) {
	arcs := []ArcSpec{{From: 0, To: 2, Capacity: 15, Cost: 4}}
	supplies := []SupplySpec{{Vertex: 0, Value: 20}}

	base := MinCostFlowHash(6, arcs, supplies, 2)

	assert.NotEqual(t, base,
		MinCostFlowHash(6, []ArcSpec{{From: 0, To: 2, Capacity: 15, Cost: 5}}, supplies, 2),
		"cost must affect the hash")
	assert.NotEqual(t, base,
		MinCostFlowHash(6, arcs, []SupplySpec{{Vertex: 0, Value: 25}}, 2),
		"supply must affect the hash")
	assert.NotEqual(t, base, MinCostFlowHash(6, arcs, supplies, 4),
		"alpha must affect the hash")
}

func TestBuildSolveKey(t *testing.T) {
	assert.Equal(t, "solve:max_flow:abc", BuildSolveKey("max_flow", "abc"))
}

func TestHashLengths(t *testing.T) {
	assert.Len(t, QuickHash([]byte("x")), 64)
	assert.Len(t, ShortHash([]byte("x")), 16)
	assert.Len(t, MaxFlowHash(2, 0, 1, nil), 32)
}
