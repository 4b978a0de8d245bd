package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// ArcSpec is the cache-level description of one arc, independent of the
// solver's own request types.
type ArcSpec struct {
	From     int
	To       int
	Capacity int64
	Cost     int64
}

// SupplySpec is the cache-level description of one supply or demand entry.
type SupplySpec struct {
	Vertex int
	Value  int64
}

// MaxFlowHash computes a canonical hash of a max-flow problem. Arc order in
// the input does not affect the hash.
func MaxFlowHash(numVertices, source, sink int, arcs []ArcSpec) string {
	data := []byte(fmt.Sprintf("v:%d;s:%d;t:%d;", numVertices, source, sink))
	data = append(data, canonicalArcs(arcs)...)
	return shortSum(data)
}

// MinCostFlowHash computes a canonical hash of a min-cost-flow problem.
// Arc and supply order in the input does not affect the hash.
func MinCostFlowHash(numVertices int, arcs []ArcSpec, supplies []SupplySpec, alpha int64) string {
	data := []byte(fmt.Sprintf("v:%d;a:%d;", numVertices, alpha))
	data = append(data, canonicalArcs(arcs)...)

	sorted := make([]SupplySpec, len(supplies))
	copy(sorted, supplies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Vertex < sorted[j].Vertex
	})
	for _, s := range sorted {
		data = append(data, []byte(fmt.Sprintf("b:%d:%d;", s.Vertex, s.Value))...)
	}

	return shortSum(data)
}

func canonicalArcs(arcs []ArcSpec) []byte {
	sorted := make([]ArcSpec, len(arcs))
	copy(sorted, arcs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].From != sorted[j].From {
			return sorted[i].From < sorted[j].From
		}
		return sorted[i].To < sorted[j].To
	})

	var out []byte
	for _, a := range sorted {
		out = append(out, []byte(fmt.Sprintf("e:%d:%d:%d:%d;", a.From, a.To, a.Capacity, a.Cost))...)
	}
	return out
}

func shortSum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// BuildSolveKey builds the cache key of a solve result.
func BuildSolveKey(algorithm, problemHash string) string {
	return fmt.Sprintf("solve:%s:%s", algorithm, problemHash)
}

// QuickHash hashes arbitrary bytes to a full-length hex digest.
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash hashes arbitrary bytes to a 16-character digest.
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
