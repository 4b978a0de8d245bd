package algorithms

import (
	"testing"

	"flowkit/pkg/apperror"
	"flowkit/pkg/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type arc struct {
	u, v     int
	capacity int64
}

func buildMaxFlow(t *testing.T, n int, arcs []arc) *MaxFlowEngine {
	t.Helper()
	e, err := NewMaxFlowEngine(n, nil)
	require.NoError(t, err)
	for _, a := range arcs {
		require.NoError(t, e.AddArc(a.u, a.v, a.capacity))
	}
	return e
}

func TestMaxFlow(t *testing.T) {
	tests := []struct {
		name         string
		n            int
		arcs         []arc
		source, sink int
		expected     int64
	}{
		{
			name:   "single_arc",
			n:      2,
			arcs:   []arc{{0, 1, 10}},
			source: 0, sink: 1,
			expected: 10,
		},
		{
			name: "linear_chain_bottleneck",
			n:    4,
			arcs: []arc{
				{0, 1, 10}, {1, 2, 5}, {2, 3, 10},
			},
			source: 0, sink: 3,
			expected: 5,
		},
		{
			name: "diamond",
			n:    4,
			arcs: []arc{
				{0, 1, 10}, {0, 2, 10}, {1, 3, 10}, {2, 3, 10},
			},
			source: 0, sink: 3,
			expected: 20,
		},
		{
			name: "classic_network_with_antiparallel_pair",
			n:    6,
			arcs: []arc{
				{0, 1, 16}, {0, 2, 13}, {1, 2, 10}, {1, 3, 12},
				{2, 1, 4}, {2, 4, 14}, {3, 2, 9}, {3, 5, 20},
				{4, 3, 7}, {4, 5, 4},
			},
			source: 0, sink: 5,
			expected: 23,
		},
		{
			name: "disconnected_sink",
			n:    4,
			arcs: []arc{
				{0, 1, 10}, {2, 3, 10},
			},
			source: 0, sink: 3,
			expected: 0,
		},
		{
			name: "dead_end_branch_returns_excess",
			n:    4,
			// Vertex 2 is a dead end: its preflow excess must travel back
			// to the source rather than count toward the sink.
			arcs: []arc{
				{0, 1, 10}, {0, 2, 10}, {1, 3, 7},
			},
			source: 0, sink: 3,
			expected: 7,
		},
		{
			name: "zero_capacity_arc",
			n:    3,
			arcs: []arc{
				{0, 1, 0}, {0, 2, 0}, {1, 2, 5},
			},
			source: 0, sink: 2,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := buildMaxFlow(t, tt.n, tt.arcs)
			res, err := e.MaxFlow(tt.source, tt.sink)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Value)
			assertValidFlow(t, e.Network(), tt.source, tt.sink, res.Value)
		})
	}
}

// assertValidFlow checks capacity feasibility on every registered arc and
// flow conservation at every vertex other than source and sink, plus the
// expected net out-flow at the source and in-flow at the sink.
func assertValidFlow(t *testing.T, net *graph.Network, source, sink int, value int64) {
	t.Helper()
	n := net.Size()
	for u := 0; u < n; u++ {
		var net64 int64
		for v := 0; v < n; v++ {
			f := net.Flow(u, v)
			if f > 0 {
				assert.True(t, net.HasArc(u, v), "positive flow on unregistered arc (%d,%d)", u, v)
				assert.LessOrEqual(t, f, net.Capacity(u, v), "arc (%d,%d) over capacity", u, v)
			}
			net64 += f
		}
		switch u {
		case source:
			assert.Equal(t, value, net64, "source net out-flow")
		case sink:
			assert.Equal(t, -value, net64, "sink net in-flow")
		default:
			assert.Zero(t, net64, "conservation violated at vertex %d", u)
		}
	}
}

func TestMaxFlowDeterministic(t *testing.T) {
	build := func() *MaxFlowEngine {
		return buildMaxFlow(t, 6, []arc{
			{0, 1, 16}, {0, 2, 13}, {1, 2, 10}, {1, 3, 12},
			{2, 1, 4}, {2, 4, 14}, {3, 2, 9}, {3, 5, 20},
			{4, 3, 7}, {4, 5, 4},
		})
	}

	first := build()
	res1, err := first.MaxFlow(0, 5)
	require.NoError(t, err)

	second := build()
	res2, err := second.MaxFlow(0, 5)
	require.NoError(t, err)

	assert.Equal(t, res1.Value, res2.Value)
	assert.Equal(t, res1.Pushes, res2.Pushes)
	assert.Equal(t, res1.Relabels, res2.Relabels)
	// Fixed round-robin scanning makes the full flow assignment, not just
	// its value, reproducible.
	assert.Equal(t, first.FlowMatrix(), second.FlowMatrix())
}

func TestMaxFlowEngineReuse(t *testing.T) {
	e := buildMaxFlow(t, 4, []arc{
		{0, 1, 10}, {1, 2, 5}, {2, 3, 10}, {0, 3, 2},
	})

	res1, err := e.MaxFlow(0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res1.Value)

	// A second solve on the same engine starts from zero flow.
	res2, err := e.MaxFlow(0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res2.Value)
	assert.Equal(t, res1.Pushes, res2.Pushes)

	// Different terminals on the same arc set.
	res3, err := e.MaxFlow(1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res3.Value)
}

func TestMaxFlowValidation(t *testing.T) {
	e := buildMaxFlow(t, 3, []arc{{0, 1, 5}, {1, 2, 5}})

	tests := []struct {
		name         string
		source, sink int
		wantCode     apperror.ErrorCode
	}{
		{name: "source_equals_sink", source: 1, sink: 1, wantCode: apperror.CodeSourceEqualsSink},
		{name: "source_out_of_range", source: -1, sink: 2, wantCode: apperror.CodeVertexOutOfRange},
		{name: "sink_out_of_range", source: 0, sink: 3, wantCode: apperror.CodeVertexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.MaxFlow(tt.source, tt.sink)
			assert.Nil(t, res)
			assert.True(t, apperror.Is(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestNewMaxFlowEngineValidation(t *testing.T) {
	_, err := NewMaxFlowEngine(1, nil)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidVertexCount))

	_, err = NewMaxFlowEngine(3, &Options{Alpha: 1})
	assert.True(t, apperror.Is(err, apperror.CodeInvalidAlpha))
}
