package solver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"flowkit/pkg/algorithms"
	"flowkit/pkg/apperror"
	"flowkit/pkg/cache"
	"flowkit/pkg/metrics"
	"flowkit/pkg/telemetry"
)

// DefaultMaxVertices caps accepted problem sizes unless overridden.
const DefaultMaxVertices = 10000

// Service runs flow solves with caching and observability. Construct with
// NewService; the zero value is not usable.
type Service struct {
	logger      *slog.Logger
	metrics     *metrics.Metrics
	flowCache   *cache.FlowCache
	cacheTTL    time.Duration
	backend     string
	alpha       int64
	maxVertices int
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metric set used for instrumentation.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithCache enables result caching. backend is only a label for metrics
// and spans.
func WithCache(fc *cache.FlowCache, backend string, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.flowCache = fc
		s.backend = backend
		s.cacheTTL = ttl
	}
}

// WithAlpha sets the default cost-scaling factor.
func WithAlpha(alpha int64) ServiceOption {
	return func(s *Service) {
		s.alpha = alpha
	}
}

// WithMaxVertices sets the accepted problem size limit.
func WithMaxVertices(n int) ServiceOption {
	return func(s *Service) {
		s.maxVertices = n
	}
}

// NewService creates a solver service. Without options it logs nowhere,
// records to the global metric set and runs uncached.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:     metrics.Get(),
		alpha:       algorithms.DefaultAlpha,
		maxVertices: DefaultMaxVertices,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SolveMaxFlow computes a maximum flow for the request.
func (s *Service) SolveMaxFlow(ctx context.Context, req *MaxFlowRequest) (*MaxFlowSolution, error) {
	if req == nil {
		return nil, apperror.ErrNilRequest
	}
	if err := s.checkSize(req.NumVertices); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := s.logger.With("run_id", runID, "algorithm", metrics.AlgorithmMaxFlow)

	ctx, span := telemetry.StartSpan(ctx, "solver.max_flow",
		telemetry.WithAttributes(telemetry.NetworkAttributes(
			req.NumVertices, len(req.Arcs), req.Source, req.Sink)...))
	defer span.End()

	hash := cache.MaxFlowHash(req.NumVertices, req.Source, req.Sink, toArcSpecs(req.Arcs))

	if cached := s.lookupMaxFlow(ctx, hash, req, runID, log); cached != nil {
		return cached, nil
	}

	started := time.Now()

	result, err := s.runMaxFlow(req)
	elapsed := time.Since(started)
	if err != nil {
		s.metrics.RecordSolve(metrics.AlgorithmMaxFlow, false, elapsed, 0)
		telemetry.SetError(ctx, err)
		log.Error("max flow solve failed", "error", err)
		return nil, err
	}

	s.metrics.RecordSolve(metrics.AlgorithmMaxFlow, true, elapsed, float64(result.res.Value))
	s.metrics.RecordEngineOperations(metrics.AlgorithmMaxFlow, result.res.Pushes, result.res.Relabels)
	s.metrics.RecordGraphSize(metrics.AlgorithmMaxFlow, req.NumVertices, len(req.Arcs))
	telemetry.SetAttributes(ctx, telemetry.MaxFlowAttributes(
		result.res.Value, result.res.Pushes, result.res.Relabels)...)

	s.storeMaxFlow(ctx, hash, result, log)

	log.Info("max flow solved",
		"value", result.res.Value,
		"pushes", result.res.Pushes,
		"relabels", result.res.Relabels,
		"duration", elapsed,
	)

	return &MaxFlowSolution{
		RunID:    runID,
		Value:    result.res.Value,
		Arcs:     arcFlows(req.Arcs, result.flows),
		Pushes:   result.res.Pushes,
		Relabels: result.res.Relabels,
		Duration: elapsed,
	}, nil
}

type maxFlowRun struct {
	res   *algorithms.MaxFlowResult
	flows [][]int64
}

func (s *Service) runMaxFlow(req *MaxFlowRequest) (*maxFlowRun, error) {
	engine, err := algorithms.NewMaxFlowEngine(req.NumVertices,
		algorithms.DefaultOptions().WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	for _, a := range req.Arcs {
		if err := engine.AddArc(a.From, a.To, a.Capacity); err != nil {
			return nil, err
		}
	}

	res, err := engine.MaxFlow(req.Source, req.Sink)
	if err != nil {
		return nil, err
	}
	return &maxFlowRun{res: res, flows: engine.FlowMatrix()}, nil
}

func (s *Service) lookupMaxFlow(ctx context.Context, hash string, req *MaxFlowRequest, runID string, log *slog.Logger) *MaxFlowSolution {
	if s.flowCache == nil {
		return nil
	}

	cached, ok, err := s.flowCache.GetMaxFlow(ctx, hash)
	telemetry.AddEvent(ctx, "cache_lookup", telemetry.CacheAttributes(s.backend, ok)...)
	if err != nil {
		// A broken cache degrades to a solve, never to a failure.
		log.Warn("cache lookup failed", "error", err)
		return nil
	}
	if !ok {
		s.metrics.RecordCacheMiss(s.backend)
		return nil
	}

	s.metrics.RecordCacheHit(s.backend)
	log.Info("max flow served from cache", "value", cached.Value)

	return &MaxFlowSolution{
		RunID:     runID,
		Value:     cached.Value,
		Arcs:      arcFlows(req.Arcs, cached.Flows),
		Pushes:    cached.Pushes,
		Relabels:  cached.Relabels,
		FromCache: true,
	}
}

func (s *Service) storeMaxFlow(ctx context.Context, hash string, run *maxFlowRun, log *slog.Logger) {
	if s.flowCache == nil {
		return
	}
	err := s.flowCache.SetMaxFlow(ctx, hash, &cache.CachedMaxFlow{
		Value:    run.res.Value,
		Flows:    run.flows,
		Pushes:   run.res.Pushes,
		Relabels: run.res.Relabels,
	}, s.cacheTTL)
	if err != nil {
		log.Warn("cache store failed", "error", err)
	}
}

// SolveMinCostFlow computes a minimum-cost flow for the request.
func (s *Service) SolveMinCostFlow(ctx context.Context, req *MinCostFlowRequest) (*MinCostFlowSolution, error) {
	if req == nil {
		return nil, apperror.ErrNilRequest
	}
	if err := s.checkSize(req.NumVertices); err != nil {
		return nil, err
	}

	alpha := s.alpha
	if req.Alpha > 1 {
		alpha = req.Alpha
	}

	runID := uuid.NewString()
	log := s.logger.With("run_id", runID, "algorithm", metrics.AlgorithmMinCostFlow)

	ctx, span := telemetry.StartSpan(ctx, "solver.min_cost_flow",
		telemetry.WithAttributes(telemetry.NetworkAttributes(
			req.NumVertices, len(req.Arcs), -1, -1)...))
	defer span.End()

	hash := cache.MinCostFlowHash(req.NumVertices, toArcSpecs(req.Arcs), toSupplySpecs(req.Supplies), alpha)

	if cached := s.lookupMinCost(ctx, hash, req, runID, log); cached != nil {
		return cached, nil
	}

	started := time.Now()

	res, err := s.runMinCostFlow(req, alpha)
	elapsed := time.Since(started)
	if err != nil {
		s.metrics.RecordSolve(metrics.AlgorithmMinCostFlow, false, elapsed, 0)
		telemetry.SetError(ctx, err)
		if apperror.Is(err, apperror.CodeInfeasible) {
			log.Warn("min cost flow infeasible", "error", err)
		} else {
			log.Error("min cost flow solve failed", "error", err)
		}
		return nil, err
	}

	s.metrics.RecordSolve(metrics.AlgorithmMinCostFlow, true, elapsed, float64(res.TotalCost))
	s.metrics.SolveCost.Set(float64(res.TotalCost))
	s.metrics.RecordEngineOperations(metrics.AlgorithmMinCostFlow, res.Pushes, res.Relabels)
	s.metrics.RecordGraphSize(metrics.AlgorithmMinCostFlow, req.NumVertices, len(req.Arcs))
	s.metrics.RecordScalingPhases(res.Phases)
	telemetry.SetAttributes(ctx, telemetry.MinCostFlowAttributes(
		res.TotalCost, res.Phases, res.Pushes, res.Relabels)...)

	s.storeMinCost(ctx, hash, res, log)

	log.Info("min cost flow solved",
		"total_cost", res.TotalCost,
		"phases", res.Phases,
		"pushes", res.Pushes,
		"relabels", res.Relabels,
		"duration", elapsed,
	)

	return &MinCostFlowSolution{
		RunID:     runID,
		TotalCost: res.TotalCost,
		Arcs:      arcFlows(req.Arcs, res.Flows),
		Phases:    res.Phases,
		Pushes:    res.Pushes,
		Relabels:  res.Relabels,
		Duration:  elapsed,
	}, nil
}

func (s *Service) runMinCostFlow(req *MinCostFlowRequest, alpha int64) (*algorithms.MinCostFlowResult, error) {
	engine, err := algorithms.NewMinCostFlowEngine(req.NumVertices,
		algorithms.DefaultOptions().WithLogger(s.logger).WithAlpha(alpha))
	if err != nil {
		return nil, err
	}
	for _, a := range req.Arcs {
		if err := engine.AddArc(a.From, a.To, a.Capacity, a.Cost); err != nil {
			return nil, err
		}
	}
	for _, sp := range req.Supplies {
		if err := engine.SetSupply(sp.Vertex, sp.Value); err != nil {
			return nil, err
		}
	}

	return engine.MinCostFlow()
}

func (s *Service) lookupMinCost(ctx context.Context, hash string, req *MinCostFlowRequest, runID string, log *slog.Logger) *MinCostFlowSolution {
	if s.flowCache == nil {
		return nil
	}

	cached, ok, err := s.flowCache.GetMinCostFlow(ctx, hash)
	telemetry.AddEvent(ctx, "cache_lookup", telemetry.CacheAttributes(s.backend, ok)...)
	if err != nil {
		log.Warn("cache lookup failed", "error", err)
		return nil
	}
	if !ok {
		s.metrics.RecordCacheMiss(s.backend)
		return nil
	}

	s.metrics.RecordCacheHit(s.backend)
	log.Info("min cost flow served from cache", "total_cost", cached.TotalCost)

	return &MinCostFlowSolution{
		RunID:     runID,
		TotalCost: cached.TotalCost,
		Arcs:      arcFlows(req.Arcs, cached.Flows),
		Phases:    cached.Phases,
		Pushes:    cached.Pushes,
		Relabels:  cached.Relabels,
		FromCache: true,
	}
}

func (s *Service) storeMinCost(ctx context.Context, hash string, res *algorithms.MinCostFlowResult, log *slog.Logger) {
	if s.flowCache == nil {
		return
	}
	err := s.flowCache.SetMinCostFlow(ctx, hash, &cache.CachedMinCostFlow{
		TotalCost: res.TotalCost,
		Flows:     res.Flows,
		Phases:    res.Phases,
		Pushes:    res.Pushes,
		Relabels:  res.Relabels,
	}, s.cacheTTL)
	if err != nil {
		log.Warn("cache store failed", "error", err)
	}
}

func (s *Service) checkSize(numVertices int) error {
	if numVertices > s.maxVertices {
		return apperror.New(apperror.CodeInvalidArgument,
			fmt.Sprintf("problem has %d vertices, limit is %d", numVertices, s.maxVertices)).
			WithField("num_vertices")
	}
	return nil
}

func toArcSpecs(arcs []Arc) []cache.ArcSpec {
	out := make([]cache.ArcSpec, len(arcs))
	for i, a := range arcs {
		out[i] = cache.ArcSpec{From: a.From, To: a.To, Capacity: a.Capacity, Cost: a.Cost}
	}
	return out
}

func toSupplySpecs(supplies []Supply) []cache.SupplySpec {
	out := make([]cache.SupplySpec, len(supplies))
	for i, s := range supplies {
		out[i] = cache.SupplySpec{Vertex: s.Vertex, Value: s.Value}
	}
	return out
}
