// Package algorithms implements the two cooperating flow engines of the
// kernel: the max-flow engine (generic push-relabel with height labels) and
// the min-cost-flow engine (cost scaling / ε-optimality), which uses the
// former as a subroutine to obtain an initial feasible circulation.
//
// # Determinism
//
// Both engines use fixed, documented selection disciplines — round-robin
// single-push for max-flow, FIFO multi-push-then-relabel for min-cost — so
// repeated runs on the same input produce bit-identical flow matrices, not
// just identical optimal values.
//
// # Thread Safety
//
// Engines are NOT thread-safe. Each engine instance owns its matrices and
// node-state arrays exclusively; concurrent callers must use separate
// instances.
package algorithms

import (
	"fmt"
	"log/slog"

	"flowkit/pkg/apperror"
	"flowkit/pkg/graph"
)

// =============================================================================
// Max-Flow Engine (Generic Push-Relabel)
// =============================================================================
//
// The classic Goldberg-Tarjan preflow-push method with height labels:
//
//   - Preflow initialization saturates every arc out of the source and sets
//     height[source] = n.
//   - The main loop scans vertices round-robin in ascending index order; an
//     active vertex (positive excess, not source/sink) performs one push
//     along its first admissible arc, or a relabel when none is admissible.
//   - An arc (u,v) is admissible when it has residual capacity and
//     height[u] == height[v] + 1.
//
// Heights never decrease and are bounded by O(V), and every push either
// saturates an arc or empties a vertex's excess, giving the classical
// O(V²·E) bound on basic operations.
// =============================================================================

// MaxFlowResult contains the outcome of a max-flow computation.
type MaxFlowResult struct {
	// Value is the maximum s→t flow, equal to the sink's final excess.
	Value int64
	// Pushes and Relabels count the basic operations performed.
	Pushes   int
	Relabels int
	// Passes is the number of full round-robin scans of the vertex set.
	Passes int
}

// MaxFlowEngine computes maximum s→t flows on a capacitated digraph.
//
// Usage: construct, register arcs with AddArc, then call MaxFlow. The flow
// matrix is reset at the start of every MaxFlow call, so an engine may be
// reused for different source/sink pairs on the same arc set.
type MaxFlowEngine struct {
	net    *graph.Network
	excess []int64
	height []int
	logger *slog.Logger

	pushes   int
	relabels int
}

// NewMaxFlowEngine creates a max-flow engine over numVertices vertices.
func NewMaxFlowEngine(numVertices int, opts *Options) (*MaxFlowEngine, error) {
	opts, err := opts.validate()
	if err != nil {
		return nil, err
	}
	net, err := graph.NewNetwork(numVertices)
	if err != nil {
		return nil, err
	}
	return &MaxFlowEngine{
		net:    net,
		excess: make([]int64, numVertices),
		height: make([]int, numVertices),
		logger: opts.Logger,
	}, nil
}

// Network exposes the underlying network for flow read-back.
func (e *MaxFlowEngine) Network() *graph.Network {
	return e.net
}

// AddArc registers the directed arc (u,v) with the given capacity and
// records u and v as mutual residual neighbors. Self loops, out-of-range
// indices, negative capacities and duplicate arcs are rejected with the
// engine state unaffected.
func (e *MaxFlowEngine) AddArc(u, v int, capacity int64) error {
	return e.net.AddArc(u, v, capacity)
}

// FlowMatrix returns a copy of the current flow assignment.
func (e *MaxFlowEngine) FlowMatrix() [][]int64 {
	return e.net.FlowMatrix()
}

// MaxFlow computes the maximum flow from source to sink and returns its
// value together with operation counts. As a side effect the engine's flow
// matrix holds a valid maximum flow satisfying capacity constraints
// everywhere and conservation at every vertex other than source and sink.
func (e *MaxFlowEngine) MaxFlow(source, sink int) (*MaxFlowResult, error) {
	if err := e.net.CheckVertex(source); err != nil {
		return nil, err
	}
	if err := e.net.CheckVertex(sink); err != nil {
		return nil, err
	}
	if source == sink {
		return nil, apperror.New(apperror.CodeSourceEqualsSink,
			fmt.Sprintf("source and sink are both %d", source))
	}

	e.initializePreflow(source)

	n := e.net.Size()
	passes := 0
	for {
		activeFound := false
		for u := 0; u < n; u++ {
			if u == source || u == sink || e.excess[u] <= 0 {
				continue
			}
			activeFound = true
			if !e.pushFirstAdmissible(u) {
				e.relabel(u)
			}
		}
		passes++
		if !activeFound {
			break
		}
	}

	e.logger.Debug("max flow computed",
		"value", e.excess[sink],
		"passes", passes,
		"pushes", e.pushes,
		"relabels", e.relabels,
	)

	return &MaxFlowResult{
		Value:    e.excess[sink],
		Pushes:   e.pushes,
		Relabels: e.relabels,
		Passes:   passes,
	}, nil
}

// initializePreflow resets solver state and saturates every arc out of the
// source, crediting each direct neighbor's excess and debiting the source.
func (e *MaxFlowEngine) initializePreflow(source int) {
	e.net.ResetFlows()
	for i := range e.excess {
		e.excess[i] = 0
		e.height[i] = 0
	}
	e.pushes = 0
	e.relabels = 0

	e.height[source] = e.net.Size()
	for _, v := range e.net.Neighbors(source) {
		c := e.net.Capacity(source, v)
		if c <= 0 {
			continue
		}
		e.net.AddFlow(source, v, c)
		e.excess[v] += c
		e.excess[source] -= c
	}
}

// pushFirstAdmissible scans u's neighbors in insertion order and pushes
// along the first admissible arc. It reports whether a push happened.
func (e *MaxFlowEngine) pushFirstAdmissible(u int) bool {
	for _, v := range e.net.Neighbors(u) {
		if e.net.Residual(u, v) > 0 && e.height[u] == e.height[v]+1 {
			e.push(u, v)
			return true
		}
	}
	return false
}

// push sends min(excess[u], residual(u,v)) units along (u,v).
func (e *MaxFlowEngine) push(u, v int) {
	delta := e.excess[u]
	if r := e.net.Residual(u, v); r < delta {
		delta = r
	}
	e.net.AddFlow(u, v, delta)
	e.excess[u] -= delta
	e.excess[v] += delta
	e.pushes++
}

// relabel lifts u to one above its lowest residual neighbor. A vertex with
// no residual out-capacity keeps its height: its excess cannot move now and,
// since heights never decrease, never will.
func (e *MaxFlowEngine) relabel(u int) {
	minHeight := -1
	for _, v := range e.net.Neighbors(u) {
		if e.net.Residual(u, v) <= 0 {
			continue
		}
		if minHeight < 0 || e.height[v] < minHeight {
			minHeight = e.height[v]
		}
	}
	if minHeight >= 0 {
		e.height[u] = minHeight + 1
		e.relabels++
	}
}
