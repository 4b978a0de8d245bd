// Package graph provides the dense network representation shared by the
// flow engines.
//
// A Network holds a fixed set of vertices 0..n-1 and three n×n integer
// matrices: capacity, flow and per-unit cost. Flow is stored
// skew-symmetrically (flow[v][u] == -flow[u][v]), which gives residual-graph
// support without separate reverse-arc bookkeeping: the residual capacity of
// (u,v) is always capacity[u][v] - flow[u][v], and pushing delta units on
// (u,v) automatically creates delta units of residual capacity on (v,u).
//
// The dense layout trades O(V²) memory for O(1) arc lookup and update. It is
// the right shape for small and medium networks; large sparse instances
// would want an arc arena with per-vertex indices instead.
package graph

import (
	"fmt"

	"flowkit/pkg/apperror"
)

// Network is a capacitated directed network over vertices 0..n-1.
//
// The vertex set is fixed at construction. Arcs are registered with AddArc
// or AddArcWithCost before any solve; the flow matrix is solver-owned
// mutable state. A Network is not safe for concurrent use.
type Network struct {
	n        int
	capacity [][]int64
	flow     [][]int64
	cost     [][]int64

	// hasArc marks registered forward arcs, isNeighbor dedupes the
	// adjacency lists (an antiparallel arc pair registers each endpoint
	// only once).
	hasArc     [][]bool
	isNeighbor [][]bool

	// adjacency keeps, per vertex, the insertion-ordered neighbor list.
	// Both endpoints of an arc are registered so residual (reverse) arcs
	// are traversable.
	adjacency [][]int
}

// NewNetwork creates an empty network with n vertices.
// It returns an error if n < 2: a network without at least two vertices
// cannot carry an arc.
func NewNetwork(n int) (*Network, error) {
	if n < 2 {
		return nil, apperror.New(apperror.CodeInvalidVertexCount,
			fmt.Sprintf("network needs at least 2 vertices, got %d", n))
	}

	g := &Network{
		n:          n,
		capacity:   newMatrix(n),
		flow:       newMatrix(n),
		cost:       newMatrix(n),
		hasArc:     newBoolMatrix(n),
		isNeighbor: newBoolMatrix(n),
		adjacency:  make([][]int, n),
	}
	return g, nil
}

func newMatrix(n int) [][]int64 {
	cells := make([]int64, n*n)
	rows := make([][]int64, n)
	for i := range rows {
		rows[i] = cells[i*n : (i+1)*n]
	}
	return rows
}

func newBoolMatrix(n int) [][]bool {
	cells := make([]bool, n*n)
	rows := make([][]bool, n)
	for i := range rows {
		rows[i] = cells[i*n : (i+1)*n]
	}
	return rows
}

// Size returns the number of vertices.
func (g *Network) Size() int {
	return g.n
}

// CheckVertex validates that u is a legal vertex index.
func (g *Network) CheckVertex(u int) error {
	if u < 0 || u >= g.n {
		return apperror.New(apperror.CodeVertexOutOfRange,
			fmt.Sprintf("vertex %d out of range [0,%d)", u, g.n))
	}
	return nil
}

// validateArc runs the registration-time checks shared by AddArc and
// AddArcWithCost. The network is left untouched when an error is returned.
func (g *Network) validateArc(u, v int, capacity int64) error {
	if err := g.CheckVertex(u); err != nil {
		return err
	}
	if err := g.CheckVertex(v); err != nil {
		return err
	}
	if u == v {
		return apperror.New(apperror.CodeSelfLoop,
			fmt.Sprintf("self loop arc (%d,%d) is not allowed", u, v))
	}
	if capacity < 0 {
		return apperror.New(apperror.CodeNegativeCapacity,
			fmt.Sprintf("arc (%d,%d) has negative capacity %d", u, v, capacity))
	}
	if g.hasArc[u][v] {
		return apperror.New(apperror.CodeDuplicateArc,
			fmt.Sprintf("arc (%d,%d) already registered", u, v))
	}
	return nil
}

// registerNeighbors records u and v as mutual residual neighbors, keeping
// insertion order and skipping endpoints already adjacent (an antiparallel
// pair shares one adjacency entry per direction).
func (g *Network) registerNeighbors(u, v int) {
	if !g.isNeighbor[u][v] {
		g.adjacency[u] = append(g.adjacency[u], v)
		g.isNeighbor[u][v] = true
	}
	if !g.isNeighbor[v][u] {
		g.adjacency[v] = append(g.adjacency[v], u)
		g.isNeighbor[v][u] = true
	}
}

// AddArc registers the directed arc (u,v) with the given capacity.
// Capacity is set once; re-registering the same arc fails. Antiparallel
// pairs ((u,v) and (v,u)) are allowed: the skew-symmetric flow storage
// handles them correctly.
func (g *Network) AddArc(u, v int, capacity int64) error {
	if err := g.validateArc(u, v, capacity); err != nil {
		return err
	}
	g.capacity[u][v] = capacity
	g.hasArc[u][v] = true
	g.registerNeighbors(u, v)
	return nil
}

// AddArcWithCost registers the directed arc (u,v) carrying both a capacity
// and a per-unit cost. The negated cost is stored on the reverse cell:
// sending flow back earns the forward cost. Because that reverse cell is
// shared, an antiparallel arc pair would corrupt the cost antisymmetry, so
// AddArcWithCost rejects an arc whose reverse direction is already
// registered.
func (g *Network) AddArcWithCost(u, v int, capacity, cost int64) error {
	if err := g.validateArc(u, v, capacity); err != nil {
		return err
	}
	if g.hasArc[v][u] {
		return apperror.New(apperror.CodeDuplicateArc,
			fmt.Sprintf("arc (%d,%d) conflicts with registered reverse arc (%d,%d)", u, v, v, u))
	}
	g.capacity[u][v] = capacity
	g.cost[u][v] = cost
	g.cost[v][u] = -cost
	g.hasArc[u][v] = true
	g.registerNeighbors(u, v)
	return nil
}

// HasArc reports whether the forward arc (u,v) was registered.
func (g *Network) HasArc(u, v int) bool {
	return g.hasArc[u][v]
}

// Capacity returns the registered capacity of (u,v); zero for absent arcs.
func (g *Network) Capacity(u, v int) int64 {
	return g.capacity[u][v]
}

// Cost returns the per-unit cost of (u,v). For the reverse direction of a
// registered arc this is the negated forward cost.
func (g *Network) Cost(u, v int) int64 {
	return g.cost[u][v]
}

// Flow returns the current flow on (u,v). Negative values indicate flow in
// the opposite direction.
func (g *Network) Flow(u, v int) int64 {
	return g.flow[u][v]
}

// Residual returns the residual capacity of (u,v). The arc is part of the
// residual graph iff this is positive.
func (g *Network) Residual(u, v int) int64 {
	return g.capacity[u][v] - g.flow[u][v]
}

// AddFlow sends delta units along (u,v), mirroring the negation on the
// reverse pair so the skew-symmetric invariant holds.
func (g *Network) AddFlow(u, v int, delta int64) {
	g.flow[u][v] += delta
	g.flow[v][u] -= delta
}

// Neighbors returns the insertion-ordered residual neighbor list of u.
// The returned slice is owned by the network and must not be modified.
func (g *Network) Neighbors(u int) []int {
	return g.adjacency[u]
}

// ResetFlows zeroes the flow matrix, returning the network to its
// pre-solve state without touching capacities or costs.
func (g *Network) ResetFlows() {
	for u := range g.flow {
		row := g.flow[u]
		for v := range row {
			row[v] = 0
		}
	}
}

// FlowMatrix returns a defensive copy of the flow matrix. Repeated calls
// without an intervening solve return identical matrices.
func (g *Network) FlowMatrix() [][]int64 {
	out := newMatrix(g.n)
	for u := range g.flow {
		copy(out[u], g.flow[u])
	}
	return out
}

// CostMatrix returns a defensive copy of the cost matrix, including the
// negated reverse cells.
func (g *Network) CostMatrix() [][]int64 {
	out := newMatrix(g.n)
	for u := range g.cost {
		copy(out[u], g.cost[u])
	}
	return out
}

// ImportFlows copies the overlapping top-left block of src's flow matrix
// into this network. It is used to adopt a circulation computed on an
// auxiliary network that extends this one with extra vertices.
func (g *Network) ImportFlows(src *Network) {
	n := g.n
	if src.n < n {
		n = src.n
	}
	for u := 0; u < n; u++ {
		copy(g.flow[u][:n], src.flow[u][:n])
	}
}

// ArcCount returns the number of registered forward arcs.
func (g *Network) ArcCount() int {
	count := 0
	for u := range g.hasArc {
		for v := range g.hasArc[u] {
			if g.hasArc[u][v] {
				count++
			}
		}
	}
	return count
}
