// Package routing computes each star's hop distance to the nearest sink and the
// production efficiency that distance implies.
//
// Distances follow connection direction: a star's distance is the length of the
// shortest directed path from the star to any sink. The search therefore starts
// at every sink at once and walks predecessors.
package routing

import (
	"math"

	"github.com/talgya/starweave/internal/network"
)

// NoRoute marks a star with no directed path to any sink.
const NoRoute = math.MaxUint32

// Efficiency floor for unreachable or very distant stars.
const minEfficiency = 0.10

var efficiencyByDistance = [...]float64{1.00, 0.90, 0.75, 0.60, 0.45, 0.35}

// Table maps every star of a graph to its distance. Stars missing from the
// table (added after the last Recompute) read as NoRoute.
type Table struct {
	dist  map[network.StarID]uint32
	sinks map[network.StarID]struct{}
}

// Recompute runs a multi-source breadth-first search from sinks over reverse
// edges. Sink ids the graph does not hold are ignored.
func Recompute(g *network.Graph, sinks []network.StarID) Table {
	t := Table{
		dist:  make(map[network.StarID]uint32, g.Len()),
		sinks: make(map[network.StarID]struct{}, len(sinks)),
	}
	for _, s := range g.Stars() {
		t.dist[s.ID] = NoRoute
	}

	queue := make([]network.StarID, 0, g.Len())
	for _, id := range sinks {
		if g.Star(id) == nil {
			continue
		}
		if _, seen := t.sinks[id]; seen {
			continue
		}
		t.sinks[id] = struct{}{}
		t.dist[id] = 0
		queue = append(queue, id)
	}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		next := t.dist[cur] + 1
		for _, p := range g.Predecessors(cur) {
			if t.dist[p] != NoRoute {
				continue
			}
			t.dist[p] = next
			queue = append(queue, p)
		}
	}
	return t
}

// Distance returns the hop count from id to its nearest sink, or NoRoute.
func (t Table) Distance(id network.StarID) uint32 {
	d, ok := t.dist[id]
	if !ok {
		return NoRoute
	}
	return d
}

// Reachable reports whether id has a route to a sink.
func (t Table) Reachable(id network.StarID) bool {
	return t.Distance(id) != NoRoute
}

// IsSink reports whether id was a sink in the last computation.
func (t Table) IsSink(id network.StarID) bool {
	_, ok := t.sinks[id]
	return ok
}

// Efficiency returns the production multiplier for id.
func (t Table) Efficiency(id network.StarID) float64 {
	return Efficiency(t.Distance(id))
}

// Efficiency maps a hop distance to a production multiplier in [0.10, 1.00].
func Efficiency(d uint32) float64 {
	if d == NoRoute {
		return minEfficiency
	}
	if int(d) < len(efficiencyByDistance) {
		return efficiencyByDistance[d]
	}
	return math.Max(0.30/float64(d-4), minEfficiency)
}
