// Galaxy generation: star placement by rejection sampling, resource endowments,
// and production rates shaped by a layered simplex "stellar density" field.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/starweave/internal/network"
	"github.com/talgya/starweave/internal/phi"
	"github.com/talgya/starweave/internal/resource"
	"github.com/talgya/starweave/internal/specialization"
)

// HubName is the name of the starting hub.
const HubName = "Sol System"

// Hub endowment.
const (
	hubBaseRate  = 2.0
	hubFillRatio = 0.1
)

// GenConfig holds galaxy generation parameters.
type GenConfig struct {
	Stars       int     // Total stars including the hub
	Width       float64 // Galaxy plane width, centred on the hub
	Height      float64 // Galaxy plane height, centred on the hub
	Margin      float64 // Keep-out band along the edges
	MinDistance float64 // Minimum spacing between stars
	MaxAttempts int     // Placement attempts before the last sample is kept
	Seed        int64   // Random seed (0 = random)
}

// DefaultGenConfig returns the standard twelve-star galaxy.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Stars:       12,
		Width:       700,
		Height:      500,
		Margin:      50,
		MinDistance: 90,
		MaxAttempts: 500,
	}
}

// Generate creates a galaxy. The same non-zero seed always yields the same galaxy.
func Generate(cfg GenConfig) *Galaxy {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	if cfg.Stars < 1 {
		cfg.Stars = 1
	}
	rng := rand.New(rand.NewSource(seed))
	density := opensimplex.NewNormalized(seed + 1)

	gal := &Galaxy{
		Graph:  network.NewGraph(),
		Hub:    0,
		Seed:   seed,
		Width:  cfg.Width,
		Height: cfg.Height,
	}

	hub := network.NewStar(0, HubName)
	hub.Hub = true
	hub.Colonized = true
	hub.BaseRate = hubBaseRate
	for _, k := range resource.All() {
		if k.Category() == resource.CategoryEnergy {
			continue
		}
		capacity := uniform(rng, 100, 200) * specialization.StorageCapacityFactor
		hub.Ledger.SetCapacity(k, capacity)
		hub.Ledger.Add(k, capacity*hubFillRatio)
	}
	gal.Graph.AddStar(hub)

	positions := []network.Position{hub.Position}
	names := generateNames(rng, cfg.Stars-1)
	for i := 1; i < cfg.Stars; i++ {
		pos := placeStar(rng, cfg, positions)
		positions = append(positions, pos)

		s := network.NewStar(network.StarID(i), names[i-1])
		s.Position = pos
		endow(rng, s.Ledger)
		s.BaseRate = baseRate(rng, density, pos)
		gal.Graph.AddStar(s)
	}
	return gal
}

// placeStar samples positions until one is at least MinDistance from every
// existing star. After MaxAttempts the last sample is used anyway.
func placeStar(rng *rand.Rand, cfg GenConfig, existing []network.Position) network.Position {
	halfW := cfg.Width/2 - cfg.Margin
	halfH := cfg.Height/2 - cfg.Margin
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var pos network.Position
	for i := 0; i < attempts; i++ {
		pos = network.Position{
			X: uniform(rng, -halfW, halfW),
			Y: uniform(rng, -halfH, halfH),
		}
		if !tooClose(pos, existing, cfg.MinDistance) {
			break
		}
	}
	return pos
}

func tooClose(pos network.Position, existing []network.Position, minDist float64) bool {
	for _, p := range existing {
		if Distance(pos, p) < minDist {
			return true
		}
	}
	return false
}

// endow gives a star one to three random kinds, filled to capacity.
func endow(rng *rand.Rand, l *resource.Ledger) {
	kinds := resource.All()
	rng.Shuffle(len(kinds), func(i, j int) { kinds[i], kinds[j] = kinds[j], kinds[i] })

	n := 1 + rng.Intn(3)
	for _, k := range kinds[:n] {
		amount := initialAmount(rng, k)
		l.SetCapacity(k, amount)
		l.Add(k, amount)
	}
}

func initialAmount(rng *rand.Rand, k resource.Kind) float64 {
	switch k {
	case resource.EnergyCrystal, resource.Helium3:
		return uniform(rng, 5, 30)
	case resource.Uranium:
		return uniform(rng, 10, 50)
	default:
		return uniform(rng, 50, 150)
	}
}

// baseRate blends the stellar density at pos with a per-star roll, weighted
// by the golden ratio, into [0.5, 2.5).
func baseRate(rng *rand.Rand, density opensimplex.Noise, pos network.Position) float64 {
	d := octaveNoise(density, pos.X, pos.Y, 3, 0.004, 0.5)
	mix := phi.Matter*d + phi.Psyche*rng.Float64()
	return 0.5 + 2.0*clamp01(mix)
}

// octaveNoise sums octaves of simplex noise, each at double the frequency and
// a persistence fraction of the amplitude, normalised to the noise range.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, math.Nextafter(1, 0)))
}
