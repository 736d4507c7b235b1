// Package specialization provides star specializations, their construction
// timings and production costs, and the per-star construction state machine.
package specialization

import (
	"fmt"
	"strings"

	"github.com/talgya/starweave/internal/resource"
)

// Kind is a star's production mode.
type Kind uint8

const (
	None        Kind = iota // Raw resource extraction
	Storage                 // Capacity ×10, acts as a supply sink
	Military                // Warships
	Mining                  // Mining ships
	Agriculture             // Farmers
	Research                // Scientists
	Medical                 // Doctors
	Industrial              // Builders

	kindCount
)

// StorageCapacityFactor multiplies a star's capacity while it is a Storage star.
const StorageCapacityFactor = 10.0

// UnitKind enumerates the units specialized stars produce.
type UnitKind uint8

const (
	Warship UnitKind = iota
	MiningShip
	Farmer
	Scientist
	Doctor
	Builder
	StorageModule

	unitCount
)

// Kinds lists every specialization in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// UnitKinds lists every unit kind in declaration order.
func UnitKinds() []UnitKind {
	out := make([]UnitKind, 0, unitCount)
	for u := UnitKind(0); u < unitCount; u++ {
		out = append(out, u)
	}
	return out
}

// Valid reports whether k is a defined specialization.
func (k Kind) Valid() bool {
	return k < kindCount
}

// Producer reports whether the kind runs periodic unit production.
// None extracts resources and Storage only stores.
func (k Kind) Producer() bool {
	return k.Valid() && k != None && k != Storage
}

// String returns the lowercase identifier used in config and scripts.
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Storage:
		return "storage"
	case Military:
		return "military"
	case Mining:
		return "mining"
	case Agriculture:
		return "agriculture"
	case Research:
		return "research"
	case Medical:
		return "medical"
	case Industrial:
		return "industrial"
	default:
		return "unknown"
	}
}

// Title returns the display name of the kind.
func (k Kind) Title() string {
	switch k {
	case None:
		return "Resource Extraction"
	case Storage:
		return "Storage Hub"
	case Military:
		return "Military Base"
	case Mining:
		return "Mining Station"
	case Agriculture:
		return "Agricultural Colony"
	case Research:
		return "Research Center"
	case Medical:
		return "Medical Facility"
	case Industrial:
		return "Industrial Complex"
	default:
		return "Unknown"
	}
}

// ParseKind resolves a lowercase identifier such as "mining".
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("specialization: unknown kind %q", s)
}

// BuildDuration returns the seconds needed to convert a star to k.
func BuildDuration(k Kind) float64 {
	switch k {
	case None:
		return 5
	case Storage:
		return 10
	case Military:
		return 20
	case Mining:
		return 15
	case Agriculture:
		return 12
	case Research:
		return 25
	case Medical:
		return 15
	case Industrial:
		return 18
	default:
		return 0
	}
}

// UpgradeDuration returns the seconds needed to raise a star of kind k from level.
func UpgradeDuration(k Kind, level int) float64 {
	return BuildDuration(k) * float64(level) * 1.5
}

// BaseCost returns the level-1 cost of one production cycle.
func BaseCost(k Kind) resource.Cost {
	switch k {
	case Storage:
		return resource.Cost{{Kind: resource.Iron, Amount: 10}, {Kind: resource.Silicon, Amount: 5}}
	case Military:
		return resource.Cost{{Kind: resource.Iron, Amount: 20}, {Kind: resource.Uranium, Amount: 10}, {Kind: resource.Silicon, Amount: 15}}
	case Mining:
		return resource.Cost{{Kind: resource.Iron, Amount: 15}, {Kind: resource.Copper, Amount: 10}}
	case Agriculture:
		return resource.Cost{{Kind: resource.Water, Amount: 20}, {Kind: resource.Food, Amount: 10}}
	case Research:
		return resource.Cost{{Kind: resource.Silicon, Amount: 20}, {Kind: resource.EnergyCrystal, Amount: 2}}
	case Medical:
		return resource.Cost{{Kind: resource.Oxygen, Amount: 15}, {Kind: resource.Water, Amount: 10}}
	case Industrial:
		return resource.Cost{{Kind: resource.Iron, Amount: 25}, {Kind: resource.Copper, Amount: 15}, {Kind: resource.Silicon, Amount: 10}}
	default:
		return nil
	}
}

// CostFactor is the level discount: 1 / (1 + (level-1)·0.2).
func CostFactor(level int) float64 {
	if level < 1 {
		level = 1
	}
	return 1 / (1 + float64(level-1)*0.2)
}

// ProductionCost returns the cost of one production cycle at the given level.
func ProductionCost(k Kind, level int) resource.Cost {
	return BaseCost(k).Scale(CostFactor(level))
}

// Unit returns the unit kind k produces and its per-level multiplier.
// ok is false for None.
func Unit(k Kind) (unit UnitKind, multiplier int, ok bool) {
	switch k {
	case Military:
		return Warship, 1, true
	case Mining:
		return MiningShip, 2, true
	case Agriculture:
		return Farmer, 3, true
	case Research:
		return Scientist, 1, true
	case Medical:
		return Doctor, 2, true
	case Industrial:
		return Builder, 2, true
	case Storage:
		return StorageModule, 1, true
	default:
		return 0, 0, false
	}
}

// UnitCount returns how many units one successful cycle yields at level.
func UnitCount(k Kind, level int) int {
	_, mul, ok := Unit(k)
	if !ok {
		return 0
	}
	return mul * level
}

func (u UnitKind) String() string {
	switch u {
	case Warship:
		return "Warship"
	case MiningShip:
		return "Mining Ship"
	case Farmer:
		return "Farmer"
	case Scientist:
		return "Scientist"
	case Doctor:
		return "Doctor"
	case Builder:
		return "Builder"
	case StorageModule:
		return "Storage Module"
	default:
		return "Unknown"
	}
}
