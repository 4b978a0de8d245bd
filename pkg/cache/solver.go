package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Algorithm key segments used by the flow cache.
const (
	algorithmMaxFlow     = "max_flow"
	algorithmMinCostFlow = "min_cost_flow"
)

// FlowCache is a typed wrapper storing solve results as JSON under
// canonical problem hashes.
type FlowCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedMaxFlow is the cached form of a max-flow solution.
type CachedMaxFlow struct {
	Value      int64     `json:"value"`
	Flows      [][]int64 `json:"flows"`
	Pushes     int       `json:"pushes"`
	Relabels   int       `json:"relabels"`
	ComputedAt time.Time `json:"computed_at"`
}

// CachedMinCostFlow is the cached form of a min-cost-flow solution.
type CachedMinCostFlow struct {
	TotalCost  int64     `json:"total_cost"`
	Flows      [][]int64 `json:"flows"`
	Phases     int       `json:"phases"`
	Pushes     int       `json:"pushes"`
	Relabels   int       `json:"relabels"`
	ComputedAt time.Time `json:"computed_at"`
}

// NewFlowCache wraps a byte cache for flow solutions.
func NewFlowCache(cache Cache, defaultTTL time.Duration) *FlowCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &FlowCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// GetMaxFlow looks up a cached max-flow solution by problem hash. A decode
// failure counts as a miss and evicts the corrupt entry.
func (fc *FlowCache) GetMaxFlow(ctx context.Context, problemHash string) (*CachedMaxFlow, bool, error) {
	key := BuildSolveKey(algorithmMaxFlow, problemHash)

	var result CachedMaxFlow
	ok, err := fc.get(ctx, key, &result)
	if !ok || err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

// SetMaxFlow stores a max-flow solution under the problem hash.
func (fc *FlowCache) SetMaxFlow(ctx context.Context, problemHash string, result *CachedMaxFlow, ttl time.Duration) error {
	result.ComputedAt = time.Now()
	return fc.set(ctx, BuildSolveKey(algorithmMaxFlow, problemHash), result, ttl)
}

// GetMinCostFlow looks up a cached min-cost solution by problem hash.
func (fc *FlowCache) GetMinCostFlow(ctx context.Context, problemHash string) (*CachedMinCostFlow, bool, error) {
	key := BuildSolveKey(algorithmMinCostFlow, problemHash)

	var result CachedMinCostFlow
	ok, err := fc.get(ctx, key, &result)
	if !ok || err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

// SetMinCostFlow stores a min-cost solution under the problem hash.
func (fc *FlowCache) SetMinCostFlow(ctx context.Context, problemHash string, result *CachedMinCostFlow, ttl time.Duration) error {
	result.ComputedAt = time.Now()
	return fc.set(ctx, BuildSolveKey(algorithmMinCostFlow, problemHash), result, ttl)
}

// InvalidateAll drops every cached solve result.
func (fc *FlowCache) InvalidateAll(ctx context.Context) (int64, error) {
	return fc.cache.DeleteByPattern(ctx, "solve:*")
}

// Stats exposes the underlying cache statistics.
func (fc *FlowCache) Stats(ctx context.Context) (*Stats, error) {
	return fc.cache.Stats(ctx)
}

func (fc *FlowCache) get(ctx context.Context, key string, out any) (bool, error) {
	data, err := fc.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, out); err != nil {
		_ = fc.cache.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

func (fc *FlowCache) set(ctx context.Context, key string, result any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = fc.defaultTTL
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal cached result: %w", err)
	}

	return fc.cache.Set(ctx, key, data, ttl)
}
