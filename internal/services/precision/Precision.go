package precision

import "math"

// CountSigDigits derives the significant-digit count implied by a market
// tick or lot step. Fractional steps map to their decimal places
// (0.001 -> 3); whole-number steps are treated as a single digit.
// Non-positive steps are invalid input and clamp to 1.
func CountSigDigits(step float64) int {
	if step <= 0 {
		return 1
	}
	if step < 1 {
		return int(math.Abs(math.Round(math.Log10(step))))
	}
	return 1
}

// RoundToSigFigs rounds v to sigFigs significant decimal digits,
// round-half-away-from-zero. Zero stays exactly zero.
func RoundToSigFigs(v float64, sigFigs int) float64 {
	if v == 0 {
		return 0
	}
	if sigFigs < 1 {
		sigFigs = 1
	}
	magnitude := int(math.Floor(math.Log10(math.Abs(v))))
	scale := math.Pow(10, float64(sigFigs-magnitude-1))
	return math.Round(v*scale) / scale
}
