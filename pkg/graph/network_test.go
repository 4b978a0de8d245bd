package graph

import (
	"testing"

	"flowkit/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNetwork(t *testing.T) {
	tests := []struct {
		name        string
		n           int
		expectError bool
	}{
		{name: "two_vertices", n: 2},
		{name: "medium", n: 100},
		{name: "single_vertex", n: 1, expectError: true},
		{name: "zero_vertices", n: 0, expectError: true},
		{name: "negative", n: -3, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewNetwork(tt.n)
			if tt.expectError {
				assert.Error(t, err)
				assert.True(t, apperror.Is(err, apperror.CodeInvalidVertexCount))
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.n, g.Size())
			assert.Equal(t, 0, g.ArcCount())
		})
	}
}

func TestAddArcValidation(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(g *Network) error
		u, v     int
		capacity int64
		wantCode apperror.ErrorCode
	}{
		{
			name: "self_loop",
			u:    1, v: 1, capacity: 5,
			wantCode: apperror.CodeSelfLoop,
		},
		{
			name: "negative_capacity",
			u:    0, v: 1, capacity: -1,
			wantCode: apperror.CodeNegativeCapacity,
		},
		{
			name: "u_out_of_range",
			u:    -1, v: 1, capacity: 5,
			wantCode: apperror.CodeVertexOutOfRange,
		},
		{
			name: "v_out_of_range",
			u:    0, v: 4, capacity: 5,
			wantCode: apperror.CodeVertexOutOfRange,
		},
		{
			name: "duplicate_arc",
			setup: func(g *Network) error {
				return g.AddArc(0, 1, 3)
			},
			u: 0, v: 1, capacity: 5,
			wantCode: apperror.CodeDuplicateArc,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewNetwork(4)
			require.NoError(t, err)
			if tt.setup != nil {
				require.NoError(t, tt.setup(g))
			}

			before := g.ArcCount()
			err = g.AddArc(tt.u, tt.v, tt.capacity)
			assert.True(t, apperror.Is(err, tt.wantCode), "got %v", err)
			assert.Equal(t, before, g.ArcCount(), "failed registration must not mutate the network")
		})
	}
}

func TestAddArcAllowsAntiparallel(t *testing.T) {
	g, err := NewNetwork(3)
	require.NoError(t, err)

	require.NoError(t, g.AddArc(0, 1, 10))
	require.NoError(t, g.AddArc(1, 0, 4))

	assert.Equal(t, int64(10), g.Capacity(0, 1))
	assert.Equal(t, int64(4), g.Capacity(1, 0))
	// The antiparallel pair shares one adjacency entry per endpoint.
	assert.Equal(t, []int{1}, g.Neighbors(0))
	assert.Equal(t, []int{0}, g.Neighbors(1))
}

func TestAddArcWithCostRejectsAntiparallel(t *testing.T) {
	g, err := NewNetwork(3)
	require.NoError(t, err)

	require.NoError(t, g.AddArcWithCost(0, 1, 10, 7))
	err = g.AddArcWithCost(1, 0, 5, 2)
	assert.True(t, apperror.Is(err, apperror.CodeDuplicateArc))

	// The rejected registration must not have disturbed cost antisymmetry.
	assert.Equal(t, int64(7), g.Cost(0, 1))
	assert.Equal(t, int64(-7), g.Cost(1, 0))
}

func TestFlowSkewSymmetry(t *testing.T) {
	g, err := NewNetwork(3)
	require.NoError(t, err)
	require.NoError(t, g.AddArc(0, 1, 10))

	g.AddFlow(0, 1, 6)
	assert.Equal(t, int64(6), g.Flow(0, 1))
	assert.Equal(t, int64(-6), g.Flow(1, 0))
	assert.Equal(t, int64(4), g.Residual(0, 1))
	// Pushing forward creates residual capacity on the reverse arc.
	assert.Equal(t, int64(6), g.Residual(1, 0))

	g.AddFlow(1, 0, 2)
	assert.Equal(t, int64(4), g.Flow(0, 1))
	assert.Equal(t, int64(-4), g.Flow(1, 0))
}

func TestNeighborsInsertionOrder(t *testing.T) {
	g, err := NewNetwork(5)
	require.NoError(t, err)
	require.NoError(t, g.AddArc(0, 3, 1))
	require.NoError(t, g.AddArc(0, 1, 1))
	require.NoError(t, g.AddArc(2, 0, 1))

	assert.Equal(t, []int{3, 1, 2}, g.Neighbors(0))
	assert.Equal(t, []int{0}, g.Neighbors(3))
	assert.Equal(t, []int{0}, g.Neighbors(2))
}

func TestFlowMatrixIsDefensiveCopy(t *testing.T) {
	g, err := NewNetwork(2)
	require.NoError(t, err)
	require.NoError(t, g.AddArc(0, 1, 10))
	g.AddFlow(0, 1, 3)

	m := g.FlowMatrix()
	m[0][1] = 99

	assert.Equal(t, int64(3), g.Flow(0, 1))
	assert.Equal(t, int64(3), g.FlowMatrix()[0][1])
}

func TestResetFlows(t *testing.T) {
	g, err := NewNetwork(3)
	require.NoError(t, err)
	require.NoError(t, g.AddArcWithCost(0, 1, 10, 2))
	g.AddFlow(0, 1, 5)

	g.ResetFlows()

	assert.Equal(t, int64(0), g.Flow(0, 1))
	assert.Equal(t, int64(0), g.Flow(1, 0))
	assert.Equal(t, int64(10), g.Capacity(0, 1), "capacities survive a reset")
	assert.Equal(t, int64(2), g.Cost(0, 1), "costs survive a reset")
}

func TestImportFlows(t *testing.T) {
	big, err := NewNetwork(5)
	require.NoError(t, err)
	require.NoError(t, big.AddArc(0, 1, 10))
	require.NoError(t, big.AddArc(1, 2, 10))
	require.NoError(t, big.AddArc(3, 0, 10)) // outside the small network
	big.AddFlow(0, 1, 7)
	big.AddFlow(1, 2, 7)
	big.AddFlow(3, 0, 7)

	small, err := NewNetwork(3)
	require.NoError(t, err)
	require.NoError(t, small.AddArc(0, 1, 10))
	require.NoError(t, small.AddArc(1, 2, 10))

	small.ImportFlows(big)

	assert.Equal(t, int64(7), small.Flow(0, 1))
	assert.Equal(t, int64(-7), small.Flow(1, 0))
	assert.Equal(t, int64(7), small.Flow(1, 2))
}
