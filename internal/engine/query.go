package engine

import (
	"fmt"

	"github.com/talgya/starweave/internal/constellation"
	"github.com/talgya/starweave/internal/network"
	"github.com/talgya/starweave/internal/resource"
	"github.com/talgya/starweave/internal/routing"
	"github.com/talgya/starweave/internal/specialization"
)

// Stock is one resource line of a star.
type Stock struct {
	Kind     resource.Kind `json:"-"`
	Name     string        `json:"kind"`
	Amount   float64       `json:"amount"`
	Capacity float64       `json:"capacity"`
}

// NodeSnapshot is a read-only view of a star.
type NodeSnapshot struct {
	ID             network.StarID         `json:"id"`
	Name           string                 `json:"name"`
	Position       network.Position       `json:"position"`
	Hub            bool                   `json:"hub"`
	Colonized      bool                   `json:"colonized"`
	Specialization string                 `json:"specialization"`
	Level          int                    `json:"level"`
	Phase          string                 `json:"phase"`
	Building       string                 `json:"building,omitempty"`
	Progress       float64                `json:"progress"`
	Remaining      float64                `json:"remaining"`
	BaseRate       float64                `json:"base_rate"`
	Distance       uint32                 `json:"distance"`
	Reachable      bool                   `json:"reachable"`
	Efficiency     float64                `json:"efficiency"`
	Bonus          float64                `json:"bonus"`
	Rate           float64                `json:"rate"`
	Constellation  *constellation.ID      `json:"constellation,omitempty"`
	FanOutLimit    uint64                 `json:"fan_out_limit"`
	Outgoing       []network.ConnectionID `json:"outgoing"`
	Incoming       []network.ConnectionID `json:"incoming"`
	Stock          []Stock                `json:"stock"`
}

// ConstellationSnapshot is a read-only view of a constellation.
type ConstellationSnapshot struct {
	ID          constellation.ID       `json:"id"`
	Members     []network.StarID       `json:"members"`
	Connections []network.ConnectionID `json:"connections"`
	Color       constellation.Color    `json:"color"`
	Hex         string                 `json:"hex"`
	FormedAt    uint64                 `json:"formed_at"`
}

// QueryNode returns a snapshot of star.
func (s *Simulation) QueryNode(star network.StarID) (NodeSnapshot, error) {
	st := s.graph.Star(star)
	if st == nil {
		return NodeSnapshot{}, fmt.Errorf("query %d: %w", star, network.ErrUnknownStar)
	}

	snap := NodeSnapshot{
		ID:             st.ID,
		Name:           st.Name,
		Position:       st.Position,
		Hub:            st.Hub,
		Colonized:      st.Colonized,
		Specialization: st.Spec.Kind.String(),
		Level:          st.Spec.Level,
		Phase:          st.Spec.Phase.String(),
		Progress:       st.Spec.Progress(),
		Remaining:      st.Spec.Remaining(),
		BaseRate:       st.BaseRate,
		Distance:       s.routes.Distance(st.ID),
		Reachable:      s.routes.Reachable(st.ID),
		Efficiency:     routing.Efficiency(s.routes.Distance(st.ID)),
		Bonus:          s.registry.BonusFor(st.ID),
		FanOutLimit:    st.FanOutLimit(),
		Outgoing:       st.Outgoing(),
		Incoming:       st.Incoming(),
	}
	snap.Rate = snap.BaseRate * snap.Efficiency * snap.Bonus
	if st.Spec.Phase == specialization.Building {
		snap.Building = st.Spec.Target.String()
	}
	if id, ok := s.registry.MemberOf(st.ID); ok {
		snap.Constellation = &id
	}
	snap.Stock = stockOf(st.Ledger)
	return snap, nil
}

func stockOf(l *resource.Ledger) []Stock {
	var out []Stock
	for _, k := range l.Kinds() {
		out = append(out, Stock{
			Kind:     k,
			Name:     k.String(),
			Amount:   l.Amount(k),
			Capacity: l.Capacity(k),
		})
	}
	return out
}

// QueryAllConstellations returns every constellation in formation order.
func (s *Simulation) QueryAllConstellations() []ConstellationSnapshot {
	all := s.registry.All()
	out := make([]ConstellationSnapshot, 0, len(all))
	for _, c := range all {
		out = append(out, ConstellationSnapshot{
			ID:          c.ID,
			Members:     c.Members,
			Connections: c.Connections,
			Color:       c.Color,
			Hex:         c.Color.Hex(),
			FormedAt:    c.FormedAt,
		})
	}
	return out
}

// Distance returns star's hop distance to the nearest sink.
func (s *Simulation) Distance(star network.StarID) uint32 {
	return s.routes.Distance(star)
}

// Snapshot is a self-contained copy of the observable simulation state.
type Snapshot struct {
	Stats          Stats                   `json:"stats"`
	SimTime        string                  `json:"sim_time"`
	Player         []Stock                 `json:"player"`
	Units          map[string]int          `json:"units"`
	Stars          []NodeSnapshot          `json:"stars"`
	Constellations []ConstellationSnapshot `json:"constellations"`
}

// Snapshot captures the full state. The result shares nothing with the
// simulation and may be handed to other goroutines.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Stats:          s.Stats(),
		SimTime:        SimTime(s.SimSeconds),
		Player:         stockOf(s.player),
		Units:          make(map[string]int),
		Constellations: s.QueryAllConstellations(),
	}
	for u, n := range s.units.Counts() {
		snap.Units[u.String()] = n
	}
	for _, st := range s.graph.Stars() {
		node, err := s.QueryNode(st.ID)
		if err != nil {
			continue
		}
		snap.Stars = append(snap.Stars, node)
	}
	return snap
}
