// Package phi provides the golden-ratio constants the simulation is tuned with,
// and the Fibonacci sequence that bounds star fan-out.
package phi

import "math"

// Phi is the golden ratio.
const Phi = 1.6180339887498948

// GrowthAngle is the golden angle in degrees (360 / Φ²).
// Stepping hues by this angle keeps successive colours well spread.
const GrowthAngle = 137.50776

// Derived ratios.
var (
	// Matter (Φ⁻¹) ~0.618.
	Matter = math.Pow(Phi, -1)

	// Psyche (Φ⁻²) ~0.382.
	Psyche = math.Pow(Phi, -2)
)

// Hue returns the n-th hue (degrees in [0, 360)) of the golden-angle sequence.
func Hue(n int) float64 {
	h := math.Mod(float64(n)*GrowthAngle, 360)
	if h < 0 {
		h += 360
	}
	return h
}
