package network

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for graph mutation.
var (
	// ErrFanOutExceeded is returned when the source already holds fib(level) outgoing connections.
	ErrFanOutExceeded = errors.New("network: fan-out limit exceeded")

	// ErrDuplicateEdge is returned when the ordered pair is already connected.
	ErrDuplicateEdge = errors.New("network: connection already exists")

	// ErrSelfLoop is returned when source and target are the same star.
	ErrSelfLoop = errors.New("network: self loop")

	// ErrConnectionLocked is returned when removing a connection a guard protects.
	ErrConnectionLocked = errors.New("network: connection locked")

	// ErrUnknownStar is returned for a star id the graph does not hold.
	ErrUnknownStar = errors.New("network: unknown star")

	// ErrUnknownConnection is returned for a connection id the graph does not hold.
	ErrUnknownConnection = errors.New("network: unknown connection")
)

// Connection is a directed link from Source to Target.
type Connection struct {
	ID     ConnectionID `json:"id"`
	Source StarID       `json:"source"`
	Target StarID       `json:"target"`
}

type pair struct {
	from, to StarID
}

// Guard decides whether a connection may be removed.
type Guard interface {
	Locks(id ConnectionID) bool
}

// Graph owns stars and connections. It is not safe for concurrent use.
type Graph struct {
	stars       map[StarID]*Star
	connections map[ConnectionID]*Connection
	byPair      map[pair]ConnectionID
	nextConn    ConnectionID
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		stars:       make(map[StarID]*Star),
		connections: make(map[ConnectionID]*Connection),
		byPair:      make(map[pair]ConnectionID),
	}
}

// AddStar inserts s. A star with the same id is replaced.
func (g *Graph) AddStar(s *Star) {
	if s.outgoing == nil {
		s.outgoing = make(map[ConnectionID]struct{})
	}
	if s.incoming == nil {
		s.incoming = make(map[ConnectionID]struct{})
	}
	g.stars[s.ID] = s
}

// Star returns the star with the given id, or nil.
func (g *Graph) Star(id StarID) *Star {
	return g.stars[id]
}

// Stars returns every star in ascending id order.
func (g *Graph) Stars() []*Star {
	out := make([]*Star, 0, len(g.stars))
	for _, s := range g.stars {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of stars.
func (g *Graph) Len() int {
	return len(g.stars)
}

// ConnectionCount returns the number of connections.
func (g *Graph) ConnectionCount() int {
	return len(g.connections)
}

// AddConnection links source to target.
// Checks run in order: unknown ids, self loop, duplicate, fan-out.
func (g *Graph) AddConnection(source, target StarID) (ConnectionID, error) {
	src, ok := g.stars[source]
	if !ok {
		return 0, fmt.Errorf("connect %d->%d: source: %w", source, target, ErrUnknownStar)
	}
	dst, ok := g.stars[target]
	if !ok {
		return 0, fmt.Errorf("connect %d->%d: target: %w", source, target, ErrUnknownStar)
	}
	if source == target {
		return 0, fmt.Errorf("connect %d->%d: %w", source, target, ErrSelfLoop)
	}
	if _, exists := g.byPair[pair{source, target}]; exists {
		return 0, fmt.Errorf("connect %d->%d: %w", source, target, ErrDuplicateEdge)
	}
	if limit := src.FanOutLimit(); uint64(src.OutDegree()) >= limit {
		return 0, fmt.Errorf("connect %d->%d: level %d allows %d: %w",
			source, target, src.Spec.Level, limit, ErrFanOutExceeded)
	}

	id := g.nextConn
	g.nextConn++
	g.connections[id] = &Connection{ID: id, Source: source, Target: target}
	g.byPair[pair{source, target}] = id
	src.outgoing[id] = struct{}{}
	dst.incoming[id] = struct{}{}
	src.Colonized = true
	dst.Colonized = true
	return id, nil
}

// RemoveConnection deletes the connection unless guard locks it. A nil guard locks nothing.
func (g *Graph) RemoveConnection(id ConnectionID, guard Guard) error {
	c, ok := g.connections[id]
	if !ok {
		return fmt.Errorf("disconnect %d: %w", id, ErrUnknownConnection)
	}
	if guard != nil && guard.Locks(id) {
		return fmt.Errorf("disconnect %d (%d->%d): %w", id, c.Source, c.Target, ErrConnectionLocked)
	}

	delete(g.connections, id)
	delete(g.byPair, pair{c.Source, c.Target})
	delete(g.stars[c.Source].outgoing, id)
	delete(g.stars[c.Target].incoming, id)
	return nil
}

// Connection returns the connection with the given id, or nil.
func (g *Graph) Connection(id ConnectionID) *Connection {
	return g.connections[id]
}

// Connections returns every connection in ascending id order.
func (g *Graph) Connections() []*Connection {
	out := make([]*Connection, 0, len(g.connections))
	for _, c := range g.connections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ConnectionBetween returns the id of the source→target connection, if any.
func (g *Graph) ConnectionBetween(source, target StarID) (ConnectionID, bool) {
	id, ok := g.byPair[pair{source, target}]
	return id, ok
}

// Successors returns the targets of id's outgoing connections in ascending order.
func (g *Graph) Successors(id StarID) []StarID {
	s, ok := g.stars[id]
	if !ok {
		return nil
	}
	out := make([]StarID, 0, len(s.outgoing))
	for cid := range s.outgoing {
		out = append(out, g.connections[cid].Target)
	}
	sortStars(out)
	return out
}

// Predecessors returns the sources of id's incoming connections in ascending order.
func (g *Graph) Predecessors(id StarID) []StarID {
	s, ok := g.stars[id]
	if !ok {
		return nil
	}
	out := make([]StarID, 0, len(s.incoming))
	for cid := range s.incoming {
		out = append(out, g.connections[cid].Source)
	}
	sortStars(out)
	return out
}

// FanOutLimit returns the fan-out limit of the star, or an error for an unknown id.
func (g *Graph) FanOutLimit(id StarID) (uint64, error) {
	s, ok := g.stars[id]
	if !ok {
		return 0, fmt.Errorf("fan-out %d: %w", id, ErrUnknownStar)
	}
	return s.FanOutLimit(), nil
}

func sortStars(ids []StarID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
