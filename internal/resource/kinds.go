// Package resource provides resource kinds and the capped per-kind ledgers
// held by every star and by the player.
package resource

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned by ParseKind for an unrecognized name.
var ErrUnknownKind = errors.New("resource: unknown kind")

// Kind enumerates the resources a star can hold.
type Kind uint8

const (
	Water Kind = iota
	Oxygen
	Food
	Iron
	Copper
	Silicon
	Uranium
	Helium3
	EnergyCrystal

	kindCount
)

// Category groups kinds for display. It has no effect on simulation rules.
type Category uint8

const (
	CategoryLife    Category = iota // Water, oxygen, food
	CategoryMineral                 // Construction minerals
	CategoryEnergy                  // Fuel and exotic energy
)

// All lists every kind in declaration order.
func All() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Valid reports whether k is one of the nine defined kinds.
func (k Kind) Valid() bool {
	return k < kindCount
}

// Category returns the display category of the kind.
func (k Kind) Category() Category {
	switch k {
	case Water, Oxygen, Food:
		return CategoryLife
	case Iron, Copper, Silicon:
		return CategoryMineral
	default:
		return CategoryEnergy
	}
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case Water:
		return "Water"
	case Oxygen:
		return "Oxygen"
	case Food:
		return "Food"
	case Iron:
		return "Iron"
	case Copper:
		return "Copper"
	case Silicon:
		return "Silicon"
	case Uranium:
		return "Uranium"
	case Helium3:
		return "Helium-3"
	case EnergyCrystal:
		return "Energy Crystal"
	default:
		return "Unknown"
	}
}

// ParseKind resolves a kind by name, ignoring case, spaces, hyphens and
// underscores, so "energy_crystal" and "Helium-3" both resolve.
func ParseKind(name string) (Kind, error) {
	want := normalize(name)
	for _, k := range All() {
		if normalize(k.String()) == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownKind, name)
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(s))
}

func (c Category) String() string {
	switch c {
	case CategoryLife:
		return "Life"
	case CategoryMineral:
		return "Mineral"
	case CategoryEnergy:
		return "Energy"
	default:
		return "Unknown"
	}
}
