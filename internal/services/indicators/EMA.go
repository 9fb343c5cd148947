package indicators

// EMAService provides Exponential Moving Average calculations
type EMAService struct{}

// NewEMAService creates a new EMA service instance
func NewEMAService() *EMAService {
	return &EMAService{}
}

// Calculate computes the recursive EMA over the whole price series.
// The series is seeded with the first value rather than an SMA warm-up:
// ema[0] = prices[0], ema[i] = prices[i]*m + ema[i-1]*(1-m) with
// m = 2/(period+1). Every output point is defined.
func (s *EMAService) Calculate(prices []float64, period int) []float64 {
	if len(prices) == 0 || period <= 0 {
		return nil
	}

	multiplier := s.getMultiplier(period)

	ema := make([]float64, len(prices))
	ema[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		ema[i] = s.calculatePoint(prices[i], ema[i-1], multiplier)
	}

	return ema
}

// Latest returns the EMA at the most recent point of the series.
func (s *EMAService) Latest(prices []float64, period int) float64 {
	ema := s.Calculate(prices, period)
	if len(ema) == 0 {
		return 0
	}
	return ema[len(ema)-1]
}

// Private helper methods

func (s *EMAService) getMultiplier(period int) float64 {
	return 2.0 / float64(period+1)
}

func (s *EMAService) calculatePoint(price, prevEMA, multiplier float64) float64 {
	return (price-prevEMA)*multiplier + prevEMA
}
