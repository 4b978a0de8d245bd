// Package solver is the embedding surface of the flow kernel. It accepts
// plain request structs, runs the algorithms package, and layers run IDs,
// structured logging, tracing, metrics and result caching around the
// computation.
package solver

import "time"

// Arc describes one directed arc of a request. Cost is ignored by max-flow
// solves.
type Arc struct {
	From     int   `json:"from"`
	To       int   `json:"to"`
	Capacity int64 `json:"capacity"`
	Cost     int64 `json:"cost,omitempty"`
}

// Supply declares a vertex's supply (positive) or demand (negative).
type Supply struct {
	Vertex int   `json:"vertex"`
	Value  int64 `json:"value"`
}

// MaxFlowRequest is the input of a maximum-flow solve.
type MaxFlowRequest struct {
	NumVertices int   `json:"num_vertices"`
	Source      int   `json:"source"`
	Sink        int   `json:"sink"`
	Arcs        []Arc `json:"arcs"`
}

// MinCostFlowRequest is the input of a minimum-cost-flow solve.
type MinCostFlowRequest struct {
	NumVertices int      `json:"num_vertices"`
	Arcs        []Arc    `json:"arcs"`
	Supplies    []Supply `json:"supplies"`
	// Alpha overrides the service's scaling factor when greater than 1.
	Alpha int64 `json:"alpha,omitempty"`
}

// ArcFlow reports the solved flow on one requested arc.
type ArcFlow struct {
	From        int     `json:"from"`
	To          int     `json:"to"`
	Flow        int64   `json:"flow"`
	Capacity    int64   `json:"capacity"`
	Utilization float64 `json:"utilization"`
}

// MaxFlowSolution is the outcome of a maximum-flow solve.
type MaxFlowSolution struct {
	RunID     string        `json:"run_id"`
	Value     int64         `json:"value"`
	Arcs      []ArcFlow     `json:"arcs"`
	Pushes    int           `json:"pushes"`
	Relabels  int           `json:"relabels"`
	Duration  time.Duration `json:"duration"`
	FromCache bool          `json:"from_cache"`
}

// MinCostFlowSolution is the outcome of a minimum-cost-flow solve.
type MinCostFlowSolution struct {
	RunID     string        `json:"run_id"`
	TotalCost int64         `json:"total_cost"`
	Arcs      []ArcFlow     `json:"arcs"`
	Phases    int           `json:"phases"`
	Pushes    int           `json:"pushes"`
	Relabels  int           `json:"relabels"`
	Duration  time.Duration `json:"duration"`
	FromCache bool          `json:"from_cache"`
}

// arcFlows projects the solved flow matrix onto the requested arcs.
// Reverse-direction flow shows as zero on the forward arc: the requested
// arc simply is not used.
func arcFlows(arcs []Arc, flows [][]int64) []ArcFlow {
	out := make([]ArcFlow, 0, len(arcs))
	for _, a := range arcs {
		f := flows[a.From][a.To]
		if f < 0 {
			f = 0
		}
		af := ArcFlow{
			From:     a.From,
			To:       a.To,
			Flow:     f,
			Capacity: a.Capacity,
		}
		if a.Capacity > 0 {
			af.Utilization = float64(f) / float64(a.Capacity)
		}
		out = append(out, af)
	}
	return out
}
