// Package constellation records the permanent star groups formed when a
// connection closes a directed cycle. The registry is append-only: a
// constellation is never edited or dissolved, and a star belongs to at most one.
package constellation

import (
	"errors"
	"fmt"

	"github.com/talgya/starweave/internal/cycle"
	"github.com/talgya/starweave/internal/network"
)

var (
	// ErrNodeAlreadyClaimed is returned when a cycle member already belongs to a constellation.
	ErrNodeAlreadyClaimed = errors.New("constellation: star already claimed")

	// ErrCycleTooSmall is returned for cycles with fewer than three stars.
	ErrCycleTooSmall = errors.New("constellation: cycle too small")
)

// Production multipliers for members and non-members.
const (
	MemberBonus    = 2.0
	NonMemberBonus = 1.0
)

// ID identifies a constellation. IDs count up from 0 in formation order.
type ID uint32

// Constellation is an immutable group of stars joined by a closed cycle.
type Constellation struct {
	ID          ID
	Members     []network.StarID
	Connections []network.ConnectionID
	Color       Color
	FormedAt    uint64
}

// Registry holds every constellation and the star and connection claims they make.
type Registry struct {
	all         []*Constellation
	memberOf    map[network.StarID]ID
	lockedConns map[network.ConnectionID]ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		memberOf:    make(map[network.StarID]ID),
		lockedConns: make(map[network.ConnectionID]ID),
	}
}

// TryRegister turns c into a constellation formed at tick. Either every member
// is claimed or, on error, nothing changes.
func (r *Registry) TryRegister(c cycle.Cycle, tick uint64) (ID, error) {
	if c.Len() < cycle.MinStars {
		return 0, fmt.Errorf("register %d stars: %w", c.Len(), ErrCycleTooSmall)
	}
	seen := make(map[network.StarID]struct{}, len(c.Stars))
	for _, s := range c.Stars {
		if owner, ok := r.memberOf[s]; ok {
			return 0, fmt.Errorf("register: star %d in constellation %d: %w", s, owner, ErrNodeAlreadyClaimed)
		}
		if _, dup := seen[s]; dup {
			return 0, fmt.Errorf("register: star %d repeated: %w", s, ErrNodeAlreadyClaimed)
		}
		seen[s] = struct{}{}
	}

	id := ID(len(r.all))
	con := &Constellation{
		ID:          id,
		Members:     append([]network.StarID(nil), c.Stars...),
		Connections: append([]network.ConnectionID(nil), c.Connections...),
		Color:       ColorFor(int(id)),
		FormedAt:    tick,
	}
	r.all = append(r.all, con)
	for _, s := range con.Members {
		r.memberOf[s] = id
	}
	for _, cid := range con.Connections {
		r.lockedConns[cid] = id
	}
	return id, nil
}

// BonusFor returns the production multiplier of star.
func (r *Registry) BonusFor(star network.StarID) float64 {
	if _, ok := r.memberOf[star]; ok {
		return MemberBonus
	}
	return NonMemberBonus
}

// MemberOf returns the constellation star belongs to, if any.
func (r *Registry) MemberOf(star network.StarID) (ID, bool) {
	id, ok := r.memberOf[star]
	return id, ok
}

// Locks reports whether the connection is part of a constellation's cycle.
// It satisfies network.Guard.
func (r *Registry) Locks(conn network.ConnectionID) bool {
	_, ok := r.lockedConns[conn]
	return ok
}

// Get returns a copy of the constellation with the given id.
func (r *Registry) Get(id ID) (Constellation, bool) {
	if int(id) >= len(r.all) {
		return Constellation{}, false
	}
	return clone(r.all[id]), true
}

// All returns copies of every constellation in formation order.
func (r *Registry) All() []Constellation {
	out := make([]Constellation, len(r.all))
	for i, c := range r.all {
		out[i] = clone(c)
	}
	return out
}

// Len returns the number of constellations.
func (r *Registry) Len() int {
	return len(r.all)
}

func clone(c *Constellation) Constellation {
	cp := *c
	cp.Members = append([]network.StarID(nil), c.Members...)
	cp.Connections = append([]network.ConnectionID(nil), c.Connections...)
	return cp
}
