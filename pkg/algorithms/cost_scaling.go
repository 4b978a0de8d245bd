package algorithms

import (
	"fmt"
	"log/slog"

	"flowkit/pkg/apperror"
	"flowkit/pkg/graph"
)

// =============================================================================
// Min-Cost-Flow Engine (Cost Scaling / ε-Optimality)
// =============================================================================
//
// The engine finds a minimum-cost flow meeting per-vertex supply/demand
// constraints in three stages:
//
//  1. Cost scaling: every arc cost is multiplied by n so that an ε-optimal
//     flow at the final ε < 1 is exactly optimal for the original integer
//     costs. The initial ε is the maximum absolute scaled cost.
//  2. Feasible circulation: an auxiliary network with a super-source and
//     super-sink turns the supply/demand problem into a max-flow
//     feasibility problem, delegated to MaxFlowEngine. Infeasibility is
//     detected here, after the run, never during registration.
//  3. ε-scaling loop: refine(ε) converts an ε-optimal flow into an
//     ε/alpha-optimal one using pushes along negative-reduced-cost residual
//     arcs and potential-lowering relabels, until ε < 1.
//
// Reduced cost: rc(u,v) = cost[u][v] + potential[u] − potential[v]. An arc
// is admissible when it has residual capacity and rc < 0; a flow is
// ε-optimal when no residual arc has reduced cost below −ε.
//
// All arithmetic is int64: scaled costs, potentials and ε stay integral, so
// phase boundaries and the final cost are exact.
// =============================================================================

// MinCostFlowResult contains the outcome of a min-cost-flow computation.
type MinCostFlowResult struct {
	// TotalCost is Σ flow(u,v)·cost(u,v) over arcs with positive flow,
	// computed from the original (unscaled) per-unit costs.
	TotalCost int64
	// Flows is the final flow matrix (skew-symmetric copy).
	Flows [][]int64
	// Phases is the number of refine(ε) phases executed.
	Phases int
	// Pushes and Relabels count basic operations across all phases,
	// including the saturation pushes opening each phase.
	Pushes   int
	Relabels int
}

// MinCostFlowEngine computes minimum-cost flows under supply/demand
// constraints using cost scaling.
//
// Usage: construct, register arcs with AddArc and supplies/demands with
// SetSupply, then call MinCostFlow once. Registration errors are immediate
// and leave the engine usable; infeasibility is reported by MinCostFlow as
// a distinct CodeInfeasible error with no partial flow exposed.
type MinCostFlowEngine struct {
	net       *graph.Network
	excess    []int64
	potential []int64
	// balance holds the declared supply (>0) or demand (<0) per vertex.
	// It is registration state, never mutated by a solve, so an engine can
	// be solved repeatedly.
	balance []int64
	supply  []int
	demand  []int
	logger  *slog.Logger
	alpha   int64
}

// refinePhase holds the mutable state of a single refine(ε) scaling phase.
// Keeping it out of the engine makes phase boundaries explicit: a phase
// starts with a fresh queue and its own ε, and leaves only flow, excess and
// potentials behind.
type refinePhase struct {
	eps  int64
	cost [][]int64 // scaled costs, shared across phases of one solve

	queue []int // FIFO work-list of active vertices

	pushes   int
	relabels int
}

// NewMinCostFlowEngine creates a min-cost-flow engine over numVertices
// vertices.
func NewMinCostFlowEngine(numVertices int, opts *Options) (*MinCostFlowEngine, error) {
	opts, err := opts.validate()
	if err != nil {
		return nil, err
	}
	net, err := graph.NewNetwork(numVertices)
	if err != nil {
		return nil, err
	}
	return &MinCostFlowEngine{
		net:       net,
		excess:    make([]int64, numVertices),
		potential: make([]int64, numVertices),
		balance:   make([]int64, numVertices),
		logger:    opts.Logger,
		alpha:     opts.Alpha,
	}, nil
}

// Network exposes the underlying network for flow read-back.
func (e *MinCostFlowEngine) Network() *graph.Network {
	return e.net
}

// AddArc registers the directed arc (u,v) with a capacity and a per-unit
// cost; the reverse pair stores the negated cost. Antiparallel arcs are
// rejected here (unlike in the max-flow engine) because both directions
// share one cost cell.
func (e *MinCostFlowEngine) AddArc(u, v int, capacity, cost int64) error {
	return e.net.AddArcWithCost(u, v, capacity, cost)
}

// SetSupply declares vertex u as a supply node (value > 0) or a demand node
// (value < 0). A zero value is invalid and rejected; so is re-registering a
// vertex that already carries a supply or demand.
func (e *MinCostFlowEngine) SetSupply(u int, value int64) error {
	if err := e.net.CheckVertex(u); err != nil {
		return err
	}
	if value == 0 {
		return apperror.New(apperror.CodeZeroSupply,
			fmt.Sprintf("supply value for vertex %d must be non-zero", u))
	}
	if e.balance[u] != 0 {
		return apperror.New(apperror.CodeDuplicateSupply,
			fmt.Sprintf("vertex %d already has supply %d", u, e.balance[u]))
	}

	e.balance[u] = value
	if value > 0 {
		e.supply = append(e.supply, u)
	} else {
		e.demand = append(e.demand, u)
	}
	return nil
}

// FlowMatrix returns a copy of the current flow assignment.
func (e *MinCostFlowEngine) FlowMatrix() [][]int64 {
	return e.net.FlowMatrix()
}

// MinCostFlow computes a minimum-cost flow satisfying every declared supply
// and demand. It returns a CodeInfeasible error when no circulation can
// satisfy them all; registration state is untouched in that case, but any
// partial auxiliary flow is discarded.
func (e *MinCostFlowEngine) MinCostFlow() (*MinCostFlowResult, error) {
	n := e.net.Size()

	scaled := e.scaledCosts()
	eps := maxAbsCost(scaled)

	if err := e.solveFeasibleCirculation(); err != nil {
		return nil, err
	}

	result := &MinCostFlowResult{}
	for eps >= 1 {
		phase := &refinePhase{eps: eps, cost: scaled}
		e.refine(phase)
		e.logger.Debug("refine phase done",
			"epsilon", eps,
			"scaled_epsilon", float64(eps)/float64(n),
			"pushes", phase.pushes,
			"relabels", phase.relabels,
		)
		result.Phases++
		result.Pushes += phase.pushes
		result.Relabels += phase.relabels
		eps /= e.alpha
	}

	result.TotalCost = e.totalCost()
	result.Flows = e.net.FlowMatrix()
	return result, nil
}

// scaledCosts returns a working copy of the cost matrix with every cell
// multiplied by n. The engine's own cost matrix is left untouched so
// read-back stays idempotent across solves.
func (e *MinCostFlowEngine) scaledCosts() [][]int64 {
	n := e.net.Size()
	scaled := e.net.CostMatrix()
	for u := range scaled {
		for v := range scaled[u] {
			scaled[u][v] *= int64(n)
		}
	}
	return scaled
}

func maxAbsCost(cost [][]int64) int64 {
	var maxAbs int64
	for u := range cost {
		for _, c := range cost[u] {
			if c < 0 {
				c = -c
			}
			if c > maxAbs {
				maxAbs = c
			}
		}
	}
	return maxAbs
}

// solveFeasibleCirculation obtains a starting circulation meeting every
// supply and demand, or fails with CodeInfeasible.
//
// It builds an auxiliary network with two extra vertices — super-source n
// and super-sink n+1 — containing every original positive-capacity arc,
// plus an arc from the super-source to each supply vertex and from each
// demand vertex to the super-sink, sized by the supply/demand magnitude.
// The circulation is feasible iff the auxiliary max flow saturates all of
// those arcs, i.e. equals both the total supply and the total demand.
func (e *MinCostFlowEngine) solveFeasibleCirculation() error {
	n := e.net.Size()
	superSource, superSink := n, n+1

	aux, err := NewMaxFlowEngine(n+2, DefaultOptions().WithLogger(e.logger))
	if err != nil {
		return err
	}

	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			if e.net.HasArc(u, v) && e.net.Capacity(u, v) > 0 {
				if err := aux.AddArc(u, v, e.net.Capacity(u, v)); err != nil {
					return err
				}
			}
		}
	}

	var totalSupply, totalDemand int64
	for _, u := range e.supply {
		if err := aux.AddArc(superSource, u, e.balance[u]); err != nil {
			return err
		}
		totalSupply += e.balance[u]
	}
	for _, u := range e.demand {
		if err := aux.AddArc(u, superSink, -e.balance[u]); err != nil {
			return err
		}
		totalDemand += -e.balance[u]
	}

	res, err := aux.MaxFlow(superSource, superSink)
	if err != nil {
		return err
	}

	if res.Value != totalSupply || res.Value != totalDemand {
		return apperror.New(apperror.CodeInfeasible,
			"supplies and demands cannot be satisfied by any circulation").
			WithDetails("total_supply", totalSupply).
			WithDetails("total_demand", totalDemand).
			WithDetails("achieved_flow", res.Value)
	}

	// Adopt the circulation restricted to the original vertex set. It
	// meets every balance exactly, so the solver-side excesses start the
	// scaling loop at zero; potentials also restart from zero so repeated
	// solves are independent.
	e.net.ImportFlows(aux.Network())
	for i := range e.excess {
		e.excess[i] = 0
		e.potential[i] = 0
	}
	return nil
}

// reducedCost computes the scaled reduced cost of (u,v) for this phase.
func (e *MinCostFlowEngine) reducedCost(p *refinePhase, u, v int) int64 {
	return p.cost[u][v] + e.potential[u] - e.potential[v]
}

// refine runs one scaling phase, converting an ε·alpha-optimal flow into an
// ε-optimal one.
func (e *MinCostFlowEngine) refine(p *refinePhase) {
	n := e.net.Size()

	// Saturate every admissible arc. This deliberately breaks conservation
	// and produces a preflow whose excesses the discharge loop drains.
	for u := 0; u < n; u++ {
		for _, v := range e.net.Neighbors(u) {
			if e.reducedCost(p, u, v) < 0 {
				if delta := e.net.Residual(u, v); delta > 0 {
					e.net.AddFlow(u, v, delta)
					e.excess[u] -= delta
					e.excess[v] += delta
					p.pushes++
				}
			}
		}
	}

	for u := 0; u < n; u++ {
		if e.excess[u] > 0 {
			p.queue = append(p.queue, u)
		}
	}

	// FIFO discharge: drain each active vertex completely, attempting a
	// push along every admissible neighbor arc before resorting to a
	// relabel.
	for len(p.queue) > 0 {
		u := p.queue[0]
		p.queue = p.queue[1:]
		e.discharge(p, u)
	}
}

// discharge drains u's excess through pushes and relabels. A vertex left
// with excess but no residual out-capacity at all keeps its excess for a
// later phase: relabels elsewhere restore residual capacity as ε shrinks.
func (e *MinCostFlowEngine) discharge(p *refinePhase, u int) {
	for e.excess[u] > 0 {
		pushed := false
		for _, v := range e.net.Neighbors(u) {
			if e.net.Residual(u, v) <= 0 || e.reducedCost(p, u, v) >= 0 {
				continue
			}
			wasInactive := e.excess[v] <= 0
			e.push(p, u, v)
			if wasInactive && e.excess[v] > 0 {
				p.queue = append(p.queue, v)
			}
			pushed = true
		}
		if !pushed {
			if !e.relabel(p, u) {
				return
			}
		}
	}
}

// push sends min(excess[u], residual(u,v)) units along (u,v).
func (e *MinCostFlowEngine) push(p *refinePhase, u, v int) {
	delta := e.excess[u]
	if r := e.net.Residual(u, v); r < delta {
		delta = r
	}
	e.net.AddFlow(u, v, delta)
	e.excess[u] -= delta
	e.excess[v] += delta
	p.pushes++
}

// relabel lowers u's potential just far enough to make at least one
// residual arc admissible: potential[u] = min(potential[v] − cost[u][v])
// − ε over residual neighbors v. The strict decrease bounds the number of
// relabels per phase. Returns false when u has no residual out-capacity.
func (e *MinCostFlowEngine) relabel(p *refinePhase, u int) bool {
	found := false
	var minDiff int64
	for _, v := range e.net.Neighbors(u) {
		if e.net.Residual(u, v) <= 0 {
			continue
		}
		diff := e.potential[v] - p.cost[u][v]
		if !found || diff < minDiff {
			minDiff = diff
			found = true
		}
	}
	if !found {
		return false
	}
	e.potential[u] = minDiff - p.eps
	p.relabels++
	return true
}

// totalCost evaluates the final flow against the original per-unit costs.
func (e *MinCostFlowEngine) totalCost() int64 {
	n := e.net.Size()
	var total int64
	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			if f := e.net.Flow(u, v); f > 0 {
				total += f * e.net.Cost(u, v)
			}
		}
	}
	return total
}
