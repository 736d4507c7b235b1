// Simulation ties the network, routing, constellations and production together
// and applies player requests between ticks.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/starweave/internal/constellation"
	"github.com/talgya/starweave/internal/cycle"
	"github.com/talgya/starweave/internal/network"
	"github.com/talgya/starweave/internal/resource"
	"github.com/talgya/starweave/internal/routing"
	"github.com/talgya/starweave/internal/specialization"
)

// Event categories.
const (
	CategoryNetwork       = "network"
	CategoryConstellation = "constellation"
	CategoryConstruction  = "construction"
	CategoryProduction    = "production"
	CategoryRequest       = "request"
)

// Default economy settings.
const (
	DefaultCollectionInterval = 5.0
	DefaultPlayerCapacity     = 1000.0
)

// DefaultPlayerStock is the player's starting stock.
var DefaultPlayerStock = map[resource.Kind]float64{
	resource.Water:         50,
	resource.Oxygen:        30,
	resource.Food:          40,
	resource.Iron:          20,
	resource.Copper:        15,
	resource.Silicon:       10,
	resource.Uranium:       5,
	resource.Helium3:       2,
	resource.EnergyCrystal: 1,
}

// Event is a notable occurrence in the simulation.
type Event struct {
	Tick        uint64         `json:"tick"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// Options configures a Simulation. Zero values select the defaults.
type Options struct {
	CollectionInterval float64
	PlayerCapacity     float64
	PlayerStock        map[resource.Kind]float64
	Units              UnitSink
}

// Stats tracks aggregate simulation statistics.
type Stats struct {
	Tick           uint64  `json:"tick"`
	SimSeconds     float64 `json:"sim_seconds"`
	Stars          int     `json:"stars"`
	Colonized      int     `json:"colonized"`
	Reachable      int     `json:"reachable"`
	Connections    int     `json:"connections"`
	Constellations int     `json:"constellations"`
	RequestErrors  int     `json:"request_errors"`
	SkippedCycles  int     `json:"skipped_cycles"`
	UnitsProduced  int     `json:"units_produced"`
	Hauled         float64 `json:"hauled"`
}

// Simulation holds the complete network state. It is not safe for concurrent
// use; only Enqueue may be called from other goroutines.
type Simulation struct {
	LastTick   uint64  // Most recent tick processed
	SimSeconds float64 // Simulated time covered

	graph       *network.Graph
	hub         network.StarID
	routes      routing.Table
	routesDirty bool
	registry    *constellation.Registry

	player             *resource.Ledger
	basePlayerCapacity float64
	collection         float64
	cycleElapsed       map[network.StarID]float64
	haulElapsed        float64

	units *UnitTally
	sink  UnitSink

	events []Event
	stats  Stats

	mu      sync.Mutex
	pending []Request
}

// NewSimulation creates a Simulation over g with hub as the primary sink.
func NewSimulation(g *network.Graph, hub network.StarID, opts Options) (*Simulation, error) {
	h := g.Star(hub)
	if h == nil {
		return nil, fmt.Errorf("new simulation: hub %d: %w", hub, network.ErrUnknownStar)
	}
	h.Hub = true
	h.Colonized = true

	if opts.CollectionInterval <= 0 {
		opts.CollectionInterval = DefaultCollectionInterval
	}
	if opts.PlayerCapacity <= 0 {
		opts.PlayerCapacity = DefaultPlayerCapacity
	}
	if opts.PlayerStock == nil {
		opts.PlayerStock = DefaultPlayerStock
	}

	sim := &Simulation{
		graph:              g,
		hub:                hub,
		registry:           constellation.NewRegistry(),
		player:             resource.NewLedger(),
		basePlayerCapacity: opts.PlayerCapacity,
		collection:         opts.CollectionInterval,
		cycleElapsed:       make(map[network.StarID]float64),
		units:              NewUnitTally(),
		sink:               opts.Units,
	}
	sim.refreshRoutes()
	for _, k := range resource.All() {
		sim.player.Add(k, opts.PlayerStock[k])
	}
	return sim, nil
}

// Graph returns the underlying network.
func (s *Simulation) Graph() *network.Graph {
	return s.graph
}

// Hub returns the designated hub.
func (s *Simulation) Hub() network.StarID {
	return s.hub
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// Tick advances the simulation by dt seconds. Queued requests are applied
// first, then every star produces, then stock is hauled. Routing is refreshed
// whenever completed construction changed the sink set.
func (s *Simulation) Tick(dt float64) {
	s.LastTick++
	s.SimSeconds += dt

	for _, req := range s.drain() {
		if err := s.Apply(req); err != nil {
			s.rejectRequest(req, err)
		}
	}
	if s.routesDirty {
		s.refreshRoutes()
	}
	s.produce(dt)
	if s.routesDirty {
		s.refreshRoutes()
	}
	s.haul(dt)
}

// RequestConnection links source to target. When the new connection closes a
// cycle of three or more unclaimed stars, a constellation forms.
func (s *Simulation) RequestConnection(source, target network.StarID) (network.ConnectionID, error) {
	id, err := s.graph.AddConnection(source, target)
	if err != nil {
		return 0, err
	}
	s.refreshRoutes()
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: fmt.Sprintf("%s linked to %s", s.name(source), s.name(target)),
		Category:    CategoryNetwork,
		Meta:        map[string]any{"connection": id, "source": source, "target": target},
	})

	c, found := cycle.CheckNewCycle(s.graph, *s.graph.Connection(id), s.claimed)
	if !found {
		return id, nil
	}
	cid, err := s.registry.TryRegister(c, s.LastTick)
	if err != nil {
		slog.Debug("cycle not registered", "tick", s.LastTick, "stars", c.Stars, "error", err)
		return id, nil
	}
	con, _ := s.registry.Get(cid)
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: fmt.Sprintf("constellation %d formed from %d stars", cid, len(con.Members)),
		Category:    CategoryConstellation,
		Meta:        map[string]any{"constellation": cid, "members": con.Members, "color": con.Color.Hex()},
	})
	slog.Info("constellation formed", "tick", s.LastTick, "constellation", cid, "members", con.Members)
	return id, nil
}

func (s *Simulation) claimed(id network.StarID) bool {
	_, ok := s.registry.MemberOf(id)
	return ok
}

// RequestDisconnection removes a connection. Connections that are part of a
// constellation cannot be removed.
func (s *Simulation) RequestDisconnection(id network.ConnectionID) error {
	c := s.graph.Connection(id)
	if c == nil {
		return fmt.Errorf("disconnect %d: %w", id, network.ErrUnknownConnection)
	}
	source, target := c.Source, c.Target
	if err := s.graph.RemoveConnection(id, s.registry); err != nil {
		return err
	}
	s.refreshRoutes()
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: fmt.Sprintf("%s unlinked from %s", s.name(source), s.name(target)),
		Category:    CategoryNetwork,
		Meta:        map[string]any{"connection": id, "source": source, "target": target},
	})
	return nil
}

// RequestSpecialization starts converting star to kind.
func (s *Simulation) RequestSpecialization(star network.StarID, kind specialization.Kind) error {
	st := s.graph.Star(star)
	if st == nil {
		return fmt.Errorf("specialize %d: %w", star, network.ErrUnknownStar)
	}
	if err := st.Spec.StartBuild(kind); err != nil {
		return fmt.Errorf("specialize %s: %w", st.Name, err)
	}
	s.refreshRoutes()
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: fmt.Sprintf("%s began %s construction (%.0fs)", st.Name, kind, st.Spec.Total),
		Category:    CategoryConstruction,
		Meta:        map[string]any{"star": star, "kind": kind.String()},
	})
	return nil
}

// RequestUpgrade starts raising star's level.
func (s *Simulation) RequestUpgrade(star network.StarID) error {
	st := s.graph.Star(star)
	if st == nil {
		return fmt.Errorf("upgrade %d: %w", star, network.ErrUnknownStar)
	}
	if err := st.Spec.StartUpgrade(); err != nil {
		return fmt.Errorf("upgrade %s: %w", st.Name, err)
	}
	s.refreshRoutes()
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: fmt.Sprintf("%s began upgrade to level %d (%.0fs)", st.Name, st.Spec.Level+1, st.Spec.Total),
		Category:    CategoryConstruction,
		Meta:        map[string]any{"star": star, "level": st.Spec.Level + 1},
	})
	return nil
}

// Player returns a copy of the player's ledger.
func (s *Simulation) Player() *resource.Ledger {
	return s.player.Clone()
}

// Units returns the units delivered so far, by kind.
func (s *Simulation) Units() map[specialization.UnitKind]int {
	return s.units.Counts()
}

// Stats returns aggregate statistics for the current state.
func (s *Simulation) Stats() Stats {
	st := s.stats
	st.Tick = s.LastTick
	st.SimSeconds = s.SimSeconds
	st.Stars = s.graph.Len()
	st.Connections = s.graph.ConnectionCount()
	st.Constellations = s.registry.Len()
	st.Colonized = 0
	st.Reachable = 0
	for _, star := range s.graph.Stars() {
		if star.Colonized {
			st.Colonized++
		}
		if s.routes.Reachable(star.ID) {
			st.Reachable++
		}
	}
	return st
}

// EmitEvent records an event.
func (s *Simulation) EmitEvent(e Event) {
	s.events = append(s.events, e)
}

// DrainEvents returns and clears the events recorded since the last call.
func (s *Simulation) DrainEvents() []Event {
	out := s.events
	s.events = nil
	return out
}

func (s *Simulation) rejectRequest(req Request, err error) {
	s.stats.RequestErrors++
	kind := ErrorKind(err)
	slog.Warn("request rejected", "tick", s.LastTick, "request", req.String(), "reason", kind, "error", err)
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: fmt.Sprintf("%s rejected: %v", req, err),
		Category:    CategoryRequest,
		Meta:        map[string]any{"error": kind},
	})
}

// sinks returns the hub plus every Ready Storage star.
func (s *Simulation) sinks() []network.StarID {
	out := []network.StarID{s.hub}
	for _, st := range s.graph.Stars() {
		if st.ID != s.hub && st.Spec.Phase == specialization.Ready && st.Spec.Kind == specialization.Storage {
			out = append(out, st.ID)
		}
	}
	return out
}

func (s *Simulation) refreshRoutes() {
	sinks := s.sinks()
	s.routes = routing.Recompute(s.graph, sinks)
	s.routesDirty = false
	s.updatePlayerCapacity(sinks)
}

// updatePlayerCapacity sets the player's capacity per kind to the base plus
// every sink's capacity.
func (s *Simulation) updatePlayerCapacity(sinks []network.StarID) {
	for _, k := range resource.All() {
		c := s.basePlayerCapacity
		for _, id := range sinks {
			c += s.graph.Star(id).Ledger.Capacity(k)
		}
		s.player.SetCapacity(k, c)
	}
}

func (s *Simulation) name(id network.StarID) string {
	if st := s.graph.Star(id); st != nil {
		return st.Name
	}
	return fmt.Sprintf("star %d", id)
}

// ErrorKind returns a short label for a request error, for metrics and events.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, network.ErrFanOutExceeded):
		return "fan_out_exceeded"
	case errors.Is(err, network.ErrDuplicateEdge):
		return "duplicate_edge"
	case errors.Is(err, network.ErrSelfLoop):
		return "self_loop"
	case errors.Is(err, network.ErrConnectionLocked):
		return "connection_locked"
	case errors.Is(err, network.ErrUnknownStar):
		return "unknown_star"
	case errors.Is(err, network.ErrUnknownConnection):
		return "unknown_connection"
	case errors.Is(err, specialization.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrUnknownRequest):
		return "unknown_request"
	default:
		return "other"
	}
}
