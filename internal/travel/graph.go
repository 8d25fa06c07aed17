// Package travel implements the spatial side of timeline validation: the
// symmetric distance graph, travel-speed resolution, and the feasibility
// calculation for a single travel leg.
package travel

import "github.com/roddenjw/plotline/internal/model"

// CanonicalPair orders two location ids lexicographically so an unordered
// pair always maps to the same key.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// DistanceGraph is an in-memory symmetric km lookup between locations.
// Read-only during a validation run; mutations happen through the store.
type DistanceGraph struct {
	km map[[2]string]float64
}

// NewDistanceGraph builds a graph from stored distance facts. Later facts
// for the same pair overwrite earlier ones.
func NewDistanceGraph(distances []model.LocationDistance) *DistanceGraph {
	g := &DistanceGraph{km: make(map[[2]string]float64, len(distances))}
	for _, d := range distances {
		a, b := CanonicalPair(d.LocA, d.LocB)
		g.km[[2]string{a, b}] = d.Km
	}
	return g
}

// Lookup returns the distance between two locations in either argument
// order. ok is false when no fact is stored - unknown is a distinct state
// from zero kilometers.
func (g *DistanceGraph) Lookup(a, b string) (float64, bool) {
	ca, cb := CanonicalPair(a, b)
	km, ok := g.km[[2]string{ca, cb}]
	return km, ok
}

// Len returns the number of stored pairs.
func (g *DistanceGraph) Len() int {
	return len(g.km)
}
