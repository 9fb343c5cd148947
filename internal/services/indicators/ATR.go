package indicators

import "math"

// ATRService computes the Wilder Average True Range.
type ATRService struct{}

func NewATRService() *ATRService {
	return &ATRService{}
}

// Calculate returns the ATR series for aligned high/low/close slices.
// True range per bar is max(high-low, |high-prevClose|, |low-prevClose|).
// The first ATR value at index `period` is a simple mean of the first
// `period` true ranges, later points use Wilder smoothing. Points before
// index `period` are left at zero. Requires at least period+1 bars.
func (s *ATRService) Calculate(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	if period <= 0 || n < period+1 || len(highs) != n || len(lows) != n {
		return nil
	}

	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		tr[i] = s.trueRange(highs[i], lows[i], closes[i-1])
	}

	atr := make([]float64, n)
	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	atr[period] = sum / float64(period)

	for i := period + 1; i < n; i++ {
		atr[i] = (atr[i-1]*float64(period-1) + tr[i]) / float64(period)
	}

	return atr
}

func (s *ATRService) trueRange(high, low, prevClose float64) float64 {
	return math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
}
