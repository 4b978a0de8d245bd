package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CodeNegativeCapacity, "capacity must be non-negative")
	assert.Equal(t, "[NEGATIVE_CAPACITY] capacity must be non-negative", err.Error())

	withField := NewWithField(CodeVertexOutOfRange, "vertex out of range", "source")
	assert.Equal(t, "[VERTEX_OUT_OF_RANGE] vertex out of range (field: source)", withField.Error())
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(cause, CodeInternal, "solve failed")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsAndCode(t *testing.T) {
	err := New(CodeInfeasible, "no circulation")
	wrapped := fmt.Errorf("request: %w", err)

	assert.True(t, Is(wrapped, CodeInfeasible))
	assert.False(t, Is(wrapped, CodeInternal))
	assert.Equal(t, CodeInfeasible, Code(wrapped))
	assert.Equal(t, CodeInternal, Code(errors.New("plain")))
}

func TestWithDetailsAndSeverity(t *testing.T) {
	err := New(CodeInfeasible, "no circulation").
		WithDetails("total_supply", int64(35)).
		WithDetails("total_demand", int64(1010)).
		WithSeverity(SeverityWarning)

	assert.Equal(t, int64(35), err.Details["total_supply"])
	assert.Equal(t, int64(1010), err.Details["total_demand"])
	assert.True(t, IsWarning(err))
	assert.Equal(t, "warning", err.Severity.String())
}

func TestGRPCMapping(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		grpcCode codes.Code
	}{
		{CodeInvalidVertexCount, codes.InvalidArgument},
		{CodeVertexOutOfRange, codes.InvalidArgument},
		{CodeSelfLoop, codes.InvalidArgument},
		{CodeNegativeCapacity, codes.InvalidArgument},
		{CodeDuplicateArc, codes.InvalidArgument},
		{CodeSourceEqualsSink, codes.InvalidArgument},
		{CodeZeroSupply, codes.InvalidArgument},
		{CodeDuplicateSupply, codes.InvalidArgument},
		{CodeInvalidAlpha, codes.InvalidArgument},
		{CodeNilInput, codes.InvalidArgument},
		{CodeInfeasible, codes.FailedPrecondition},
		{CodeNotFound, codes.NotFound},
		{CodeInternal, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code, "msg")
			assert.Equal(t, tt.grpcCode, err.GRPCStatus().Code())
		})
	}
}

func TestToGRPCAndBack(t *testing.T) {
	grpcErr := ToGRPC(New(CodeInfeasible, "no circulation"))
	st, ok := status.FromError(grpcErr)
	require.True(t, ok)
	assert.Equal(t, codes.FailedPrecondition, st.Code())

	back := FromGRPC(grpcErr)
	assert.Equal(t, CodeInfeasible, back.Code)
	assert.Equal(t, "no circulation", back.Message)

	assert.Nil(t, ToGRPC(nil))
	assert.Nil(t, FromGRPC(nil))

	// Plain errors become internal gRPC errors.
	st, ok = status.FromError(ToGRPC(errors.New("plain")))
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
}
