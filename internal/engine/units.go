package engine

import (
	"github.com/talgya/starweave/internal/network"
	"github.com/talgya/starweave/internal/specialization"
)

// UnitSink receives units produced by specialized stars.
type UnitSink interface {
	Deliver(star network.StarID, unit specialization.UnitKind, count int)
}

// UnitTally counts delivered units per kind and per star.
type UnitTally struct {
	byKind map[specialization.UnitKind]int
	byStar map[network.StarID]int
}

// NewUnitTally creates an empty tally.
func NewUnitTally() *UnitTally {
	return &UnitTally{
		byKind: make(map[specialization.UnitKind]int),
		byStar: make(map[network.StarID]int),
	}
}

// Deliver implements UnitSink.
func (t *UnitTally) Deliver(star network.StarID, unit specialization.UnitKind, count int) {
	if count <= 0 {
		return
	}
	t.byKind[unit] += count
	t.byStar[star] += count
}

// Counts returns a copy of the totals per unit kind.
func (t *UnitTally) Counts() map[specialization.UnitKind]int {
	out := make(map[specialization.UnitKind]int, len(t.byKind))
	for k, n := range t.byKind {
		out[k] = n
	}
	return out
}

// FromStar returns the number of units star has produced.
func (t *UnitTally) FromStar(star network.StarID) int {
	return t.byStar[star]
}
