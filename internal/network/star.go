// Package network provides stars, the directed connections between them, and
// the graph that owns both. The graph enforces the per-level fan-out limit but
// knows nothing about routing or constellations.
package network

import (
	"sort"

	"github.com/talgya/starweave/internal/phi"
	"github.com/talgya/starweave/internal/resource"
	"github.com/talgya/starweave/internal/specialization"
)

// StarID identifies a star. The hub created at world generation is always 0.
type StarID uint32

// ConnectionID identifies a connection. IDs are never reused.
type ConnectionID uint32

// Position is a star's place on the galaxy plane. It has no effect on the simulation.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Star is a node of the network.
type Star struct {
	ID        StarID
	Name      string
	Position  Position
	Ledger    *resource.Ledger
	BaseRate  float64 // Units of each held resource per second at full efficiency
	Spec      specialization.State
	Hub       bool
	Colonized bool

	outgoing map[ConnectionID]struct{}
	incoming map[ConnectionID]struct{}
}

// NewStar creates an unconnected level-1 star with no specialization.
func NewStar(id StarID, name string) *Star {
	return &Star{
		ID:       id,
		Name:     name,
		Ledger:   resource.NewLedger(),
		Spec:     specialization.NewState(specialization.None),
		outgoing: make(map[ConnectionID]struct{}),
		incoming: make(map[ConnectionID]struct{}),
	}
}

// OutDegree returns the number of outgoing connections.
func (s *Star) OutDegree() int {
	return len(s.outgoing)
}

// InDegree returns the number of incoming connections.
func (s *Star) InDegree() int {
	return len(s.incoming)
}

// FanOutLimit returns the maximum outgoing connections at the star's level.
func (s *Star) FanOutLimit() uint64 {
	return phi.FanOutLimit(s.Spec.Level)
}

// Outgoing returns the ids of outgoing connections in ascending order.
func (s *Star) Outgoing() []ConnectionID {
	return sortedIDs(s.outgoing)
}

// Incoming returns the ids of incoming connections in ascending order.
func (s *Star) Incoming() []ConnectionID {
	return sortedIDs(s.incoming)
}

func sortedIDs(set map[ConnectionID]struct{}) []ConnectionID {
	out := make([]ConnectionID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
