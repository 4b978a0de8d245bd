package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSolve(t *testing.T) {
	m := InitMetrics("test", "")

	m.RecordSolve(AlgorithmMaxFlow, true, 10*time.Millisecond, 23)
	m.RecordSolve(AlgorithmMaxFlow, false, 5*time.Millisecond, 0)
	m.RecordSolve(AlgorithmMinCostFlow, true, 20*time.Millisecond, 35)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.SolveOperationsTotal.WithLabelValues(AlgorithmMaxFlow, "success")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.SolveOperationsTotal.WithLabelValues(AlgorithmMaxFlow, "error")))
	assert.Equal(t, float64(23),
		testutil.ToFloat64(m.FlowValue.WithLabelValues(AlgorithmMaxFlow)))
	assert.Equal(t, float64(35),
		testutil.ToFloat64(m.FlowValue.WithLabelValues(AlgorithmMinCostFlow)))
}

func TestRecordEngineOperations(t *testing.T) {
	m := InitMetrics("test", "")

	m.RecordEngineOperations(AlgorithmMaxFlow, 12, 7)
	m.RecordEngineOperations(AlgorithmMaxFlow, 3, 1)

	assert.Equal(t, float64(15),
		testutil.ToFloat64(m.PushOperationsTotal.WithLabelValues(AlgorithmMaxFlow)))
	assert.Equal(t, float64(8),
		testutil.ToFloat64(m.RelabelOperationsTotal.WithLabelValues(AlgorithmMaxFlow)))
}

func TestRecordCacheCounters(t *testing.T) {
	m := InitMetrics("test", "")

	m.RecordCacheHit("memory")
	m.RecordCacheHit("memory")
	m.RecordCacheMiss("redis")

	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("memory")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("redis")))
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not clash on registration and must not share
	// counter state.
	a := InitMetrics("test", "a")
	b := InitMetrics("test", "a")

	a.RecordCacheHit("memory")

	assert.Equal(t, float64(1), testutil.ToFloat64(a.CacheHitsTotal.WithLabelValues("memory")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.CacheHitsTotal.WithLabelValues("memory")))
}

func TestHandlerServesMetrics(t *testing.T) {
	m := InitMetrics("test", "")
	m.SetServiceInfo("1.0.0", "test")
	m.RecordSolve(AlgorithmMaxFlow, true, time.Millisecond, 23)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "test_solve_operations_total")
	assert.Contains(t, out, "test_runtime_goroutines")
	assert.Contains(t, out, "test_service_info")
}

func TestGetReturnsSingleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}
