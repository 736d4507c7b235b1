package world

import (
	"fmt"
	"math/rand"
)

var (
	namePrefixes = []string{
		"Alpha", "Beta", "Gamma", "Delta", "Epsilon",
		"Zeta", "Eta", "Theta", "Iota", "Kappa",
	}
	nameSuffixes = []string{
		"Centauri", "Orionis", "Draconis", "Pegasi", "Andromedae",
		"Leonis", "Aquarii", "Scorpii", "Tauri", "Geminorum",
	}
)

// generateNames produces unique star names from a Greek-letter prefix and a
// constellation genitive. Once every pairing is taken, names get a numeral.
func generateNames(rng *rand.Rand, count int) []string {
	used := make(map[string]bool)
	names := make([]string, 0, count)
	combos := len(namePrefixes) * len(nameSuffixes)

	for len(names) < count {
		name := namePrefixes[rng.Intn(len(namePrefixes))] + " " + nameSuffixes[rng.Intn(len(nameSuffixes))]
		if len(used) >= combos {
			name = fmt.Sprintf("%s %d", name, len(names)+1)
		}
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}

	return names
}
