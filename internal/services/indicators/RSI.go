package indicators

import "math"

// RSIService computes the Wilder Relative Strength Index.
type RSIService struct{}

func NewRSIService() *RSIService {
	return &RSIService{}
}

// Calculate returns the RSI series. The first average gain/loss is a
// simple mean of the first `period` changes, subsequent points use
// Wilder smoothing: avg = (prev*(period-1) + current) / period. Points
// before index `period` are undefined and left at zero. Requires at
// least period+1 prices.
func (s *RSIService) Calculate(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}

	rsi := make([]float64, len(prices))

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += math.Abs(change)
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	rsi[period] = s.value(avgGain, avgLoss)

	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = math.Abs(change)
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		rsi[i] = s.value(avgGain, avgLoss)
	}

	return rsi
}

func (s *RSIService) value(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
