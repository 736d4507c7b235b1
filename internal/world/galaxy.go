// Package world generates the galaxy a simulation starts from.
package world

import (
	"fmt"
	"math"

	"github.com/talgya/starweave/internal/network"
)

// Galaxy holds a generated star network and where it lies on the plane.
type Galaxy struct {
	Graph  *network.Graph `json:"-"`
	Hub    network.StarID `json:"hub"`
	Seed   int64          `json:"seed"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
}

// Star returns the star with the given id, or nil.
func (g *Galaxy) Star(id network.StarID) *network.Star {
	return g.Graph.Star(id)
}

// StarCount returns the total number of stars.
func (g *Galaxy) StarCount() int {
	return g.Graph.Len()
}

// InBounds reports whether pos lies on the galaxy plane.
func (g *Galaxy) InBounds(pos network.Position) bool {
	return math.Abs(pos.X) <= g.Width/2 && math.Abs(pos.Y) <= g.Height/2
}

// Nearest returns the star closest to pos, excluding skip.
func (g *Galaxy) Nearest(pos network.Position, skip network.StarID) (*network.Star, bool) {
	var best *network.Star
	bestDist := math.Inf(1)
	for _, s := range g.Graph.Stars() {
		if s.ID == skip {
			continue
		}
		if d := Distance(pos, s.Position); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, best != nil
}

// String returns a summary of the galaxy.
func (g *Galaxy) String() string {
	return fmt.Sprintf("Galaxy(seed=%d, stars=%d, %gx%g)", g.Seed, g.StarCount(), g.Width, g.Height)
}

// Distance returns the Euclidean distance between two positions.
func Distance(a, b network.Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
