// Command flowdemo exercises the solver service end to end: it loads the
// configuration, wires logging, tracing, metrics and caching, and runs two
// reference problems — a maximum-flow network and a minimum-cost supply
// network — through the solver facade.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flowkit/pkg/cache"
	"flowkit/pkg/config"
	"flowkit/pkg/logger"
	"flowkit/pkg/metrics"
	"flowkit/pkg/solver"
	"flowkit/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.Fatal("failed to load config", "error", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	logger.Info("starting flowdemo",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Fatal("failed to init telemetry", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
	if cfg.Metrics.Enabled {
		go func() {
			logger.Info("metrics server listening", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := m.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	opts := []solver.ServiceOption{
		solver.WithLogger(logger.Log),
		solver.WithMetrics(m),
		solver.WithAlpha(cfg.Solver.Alpha),
		solver.WithMaxVertices(cfg.Solver.MaxVertices),
	}

	if cfg.Cache.Enabled {
		backing, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Fatal("failed to init cache", "error", err)
		}
		defer func() { _ = backing.Close() }()

		opts = append(opts, solver.WithCache(
			cache.NewFlowCache(backing, cfg.Cache.DefaultTTL),
			cfg.Cache.Driver,
			cfg.Cache.DefaultTTL,
		))
		logger.Info("result cache enabled", "driver", cfg.Cache.Driver)
	}

	svc := solver.NewService(opts...)

	runMaxFlowDemo(ctx, svc)
	runMinCostDemo(ctx, svc)

	if cfg.Metrics.Enabled {
		// Keep serving metrics until interrupted.
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
	}
}

// runMaxFlowDemo solves the classic six-vertex maximum-flow network.
func runMaxFlowDemo(ctx context.Context, svc *solver.Service) {
	req := &solver.MaxFlowRequest{
		NumVertices: 6,
		Source:      0,
		Sink:        5,
		Arcs: []solver.Arc{
			{From: 0, To: 1, Capacity: 16},
			{From: 0, To: 2, Capacity: 13},
			{From: 1, To: 2, Capacity: 10},
			{From: 1, To: 3, Capacity: 12},
			{From: 2, To: 1, Capacity: 4},
			{From: 2, To: 4, Capacity: 14},
			{From: 3, To: 2, Capacity: 9},
			{From: 3, To: 5, Capacity: 20},
			{From: 4, To: 3, Capacity: 7},
			{From: 4, To: 5, Capacity: 4},
		},
	}

	sol, err := svc.SolveMaxFlow(ctx, req)
	if err != nil {
		logger.Error("max flow demo failed", "error", err)
		return
	}

	logger.Info("max flow demo solved", "value", sol.Value, "run_id", sol.RunID)
	for _, af := range sol.Arcs {
		if af.Flow > 0 {
			logger.Info("arc flow",
				"from", af.From,
				"to", af.To,
				"flow", af.Flow,
				"capacity", af.Capacity,
				"utilization", af.Utilization,
			)
		}
	}
}

// runMinCostDemo solves a two-plant, two-consumer supply network.
func runMinCostDemo(ctx context.Context, svc *solver.Service) {
	req := &solver.MinCostFlowRequest{
		NumVertices: 6,
		Arcs: []solver.Arc{
			{From: 0, To: 2, Capacity: 15, Cost: 4},
			{From: 0, To: 3, Capacity: 10, Cost: 3},
			{From: 1, To: 2, Capacity: 20, Cost: 6},
			{From: 1, To: 3, Capacity: 5, Cost: 8},
			{From: 2, To: 4, Capacity: 25, Cost: 2},
			{From: 3, To: 4, Capacity: 10, Cost: 5},
			{From: 3, To: 5, Capacity: 15, Cost: 4},
			{From: 4, To: 5, Capacity: 20, Cost: 1},
		},
		Supplies: []solver.Supply{
			{Vertex: 0, Value: 20},
			{Vertex: 1, Value: 15},
			{Vertex: 4, Value: -10},
			{Vertex: 5, Value: -25},
		},
	}

	sol, err := svc.SolveMinCostFlow(ctx, req)
	if err != nil {
		logger.Error("min cost demo failed", "error", err)
		return
	}

	logger.Info("min cost demo solved",
		"total_cost", sol.TotalCost,
		"phases", sol.Phases,
		"run_id", sol.RunID,
	)
	for _, af := range sol.Arcs {
		if af.Flow > 0 {
			logger.Info("arc flow",
				"from", af.From,
				"to", af.To,
				"flow", af.Flow,
				"capacity", af.Capacity,
				"utilization", af.Utilization,
			)
		}
	}
}
