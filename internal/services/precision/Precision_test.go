package precision

import (
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestCountSigDigits(t *testing.T) {
	cases := []struct {
		step float64
		want int
	}{
		{0.1, 1},
		{0.01, 2},
		{0.001, 3},
		{0.0001, 4},
		{0.00001, 5},
		{0.5, 0}, // log10(0.5) rounds to 0
		{1, 1},
		{10, 1},
		{100, 1},
	}
	for _, c := range cases {
		if got := CountSigDigits(c.step); got != c.want {
			t.Errorf("CountSigDigits(%v) = %d, want %d", c.step, got, c.want)
		}
	}
}

func TestCountSigDigitsInvalidStep(t *testing.T) {
	// Contractually undefined, but must not blow up.
	if got := CountSigDigits(0); got != 1 {
		t.Errorf("CountSigDigits(0) = %d, want clamp to 1", got)
	}
	if got := CountSigDigits(-0.01); got != 1 {
		t.Errorf("CountSigDigits(-0.01) = %d, want clamp to 1", got)
	}
}

func TestRoundToSigFigs(t *testing.T) {
	cases := []struct {
		v    float64
		figs int
		want float64
	}{
		{98.0, 4, 98.0},
		{123.456, 4, 123.5},
		{123.456, 2, 120},
		{0.0012345, 3, 0.00123},
		{-123.456, 4, -123.5},
		{9.999, 2, 10},
		// Pins round-half-away-from-zero.
		{1.25, 2, 1.3},
		{-1.25, 2, -1.3},
	}
	for _, c := range cases {
		got := RoundToSigFigs(c.v, c.figs)
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("RoundToSigFigs(%v, %d) = %v, want %v", c.v, c.figs, got, c.want)
		}
	}
}

func TestRoundToSigFigsZero(t *testing.T) {
	for n := 0; n < 8; n++ {
		if got := RoundToSigFigs(0, n); got != 0 {
			t.Errorf("RoundToSigFigs(0, %d) = %v, want 0", n, got)
		}
	}
}

// Rounding a value at the digit count implied by a step never produces
// more significant digits than the step allows.
func TestStepDerivedRoundingProperty(t *testing.T) {
	steps := []float64{0.1, 0.01, 0.001, 0.0001, 1, 10}
	values := []float64{123.456789, 0.000987654, 45678.9, 3.14159, 0.25}

	for _, step := range steps {
		figs := CountSigDigits(step)
		if figs < 1 {
			figs = 1
		}
		for _, v := range values {
			got := RoundToSigFigs(v, figs)
			if n := sigDigitCount(got); n > figs {
				t.Errorf("step %v (figs %d): RoundToSigFigs(%v) = %v has %d significant digits",
					step, figs, v, got, n)
			}
		}
	}
}

func sigDigitCount(v float64) int {
	s := strconv.FormatFloat(math.Abs(v), 'e', -1, 64)
	mantissa := strings.SplitN(s, "e", 2)[0]
	mantissa = strings.ReplaceAll(mantissa, ".", "")
	mantissa = strings.TrimRight(mantissa, "0")
	if mantissa == "" {
		return 1
	}
	return len(mantissa)
}
