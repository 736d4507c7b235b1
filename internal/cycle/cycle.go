// Package cycle finds the directed cycle, if any, closed by a newly inserted
// connection.
package cycle

import (
	"github.com/talgya/starweave/internal/network"
)

// MinStars is the smallest cycle that counts. Two stars linked both ways do not.
const MinStars = 3

// Cycle is a closed directed loop. Stars runs from the new connection's target
// to its source; Connections holds the edges between consecutive stars followed
// by the new connection itself, which closes the loop.
type Cycle struct {
	Stars       []network.StarID
	Connections []network.ConnectionID
}

// Len returns the number of stars in the cycle.
func (c Cycle) Len() int {
	return len(c.Stars)
}

type frame struct {
	star network.StarID
	next []network.StarID
}

// Claimed reports whether a star already belongs to a constellation.
type Claimed func(network.StarID) bool

// CheckNewCycle searches for a directed path from conn.Target back to
// conn.Source. Successors are visited in ascending id order, so the result is
// deterministic. The direct target→source edge never closes the loop, so only
// cycles of MinStars or more are returned.
//
// When claimed is set and neither endpoint is claimed, the search routes
// around claimed stars and returns a loop of unclaimed stars if one exists.
// A claimed endpoint disables the filter: every loop through it is claimed.
func CheckNewCycle(g *network.Graph, conn network.Connection, claimed Claimed) (Cycle, bool) {
	if g.Connection(conn.ID) == nil || conn.Source == conn.Target {
		return Cycle{}, false
	}
	if claimed != nil && (claimed(conn.Source) || claimed(conn.Target)) {
		claimed = nil
	}

	visited := map[network.StarID]bool{conn.Target: true}
	stack := []frame{{star: conn.Target, next: g.Successors(conn.Target)}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.next) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		n := top.next[0]
		top.next = top.next[1:]

		if n == conn.Source {
			if len(stack) < MinStars-1 {
				continue
			}
			return build(g, stack, conn), true
		}
		if visited[n] || (claimed != nil && claimed(n)) {
			continue
		}
		visited[n] = true
		stack = append(stack, frame{star: n, next: g.Successors(n)})
	}
	return Cycle{}, false
}

func build(g *network.Graph, stack []frame, conn network.Connection) Cycle {
	c := Cycle{
		Stars:       make([]network.StarID, 0, len(stack)+1),
		Connections: make([]network.ConnectionID, 0, len(stack)+1),
	}
	for _, f := range stack {
		c.Stars = append(c.Stars, f.star)
	}
	c.Stars = append(c.Stars, conn.Source)

	for i := 0; i+1 < len(c.Stars); i++ {
		id, _ := g.ConnectionBetween(c.Stars[i], c.Stars[i+1])
		c.Connections = append(c.Connections, id)
	}
	c.Connections = append(c.Connections, conn.ID)
	return c
}
