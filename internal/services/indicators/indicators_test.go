package indicators

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEMASeedsWithFirstValue(t *testing.T) {
	prices := []float64{10, 11, 12}
	ema := NewEMAService().Calculate(prices, 9)
	if ema == nil {
		t.Fatal("expected EMA series, got nil")
	}
	if !almostEqual(ema[0], 10) {
		t.Errorf("ema[0] = %v, want seed value 10", ema[0])
	}

	// Hand-computed recursion with m = 2/10 = 0.2.
	want1 := 11*0.2 + 10*0.8 // 10.2
	want2 := 12*0.2 + want1*0.8
	if !almostEqual(ema[1], want1) || !almostEqual(ema[2], want2) {
		t.Errorf("ema = %v, want [10 %v %v]", ema, want1, want2)
	}
}

func TestEMAFastLeadsSlowOnUptrend(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	svc := NewEMAService()
	fast := svc.Latest(prices, 9)
	slow := svc.Latest(prices, 21)

	if fast <= slow {
		t.Errorf("on a rising series fast EMA should lead: fast=%v slow=%v", fast, slow)
	}
}

func TestEMAInvalidInputs(t *testing.T) {
	svc := NewEMAService()
	if svc.Calculate(nil, 9) != nil {
		t.Error("expected nil for empty series")
	}
	if svc.Calculate([]float64{1, 2}, 0) != nil {
		t.Error("expected nil for non-positive period")
	}
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5, 6}
	rsi := NewRSIService().Calculate(prices, 5)
	if rsi == nil {
		t.Fatal("expected RSI series, got nil")
	}
	if !almostEqual(rsi[5], 100) {
		t.Errorf("rsi on pure gains = %v, want 100", rsi[5])
	}
}

func TestRSIWilderSmoothing(t *testing.T) {
	// Alternating +2/-1 changes, period 3.
	prices := []float64{10, 12, 11, 13, 12}
	rsi := NewRSIService().Calculate(prices, 3)
	if rsi == nil {
		t.Fatal("expected RSI series, got nil")
	}

	// First point: avgGain = (2+0+2)/3, avgLoss = (0+1+0)/3.
	avgGain, avgLoss := 4.0/3.0, 1.0/3.0
	want := 100 - 100/(1+avgGain/avgLoss)
	if !almostEqual(rsi[3], want) {
		t.Errorf("rsi[3] = %v, want %v", rsi[3], want)
	}

	// Next point folds the -1 change in with Wilder smoothing.
	avgGain = (avgGain * 2) / 3
	avgLoss = (avgLoss*2 + 1) / 3
	want = 100 - 100/(1+avgGain/avgLoss)
	if !almostEqual(rsi[4], want) {
		t.Errorf("rsi[4] = %v, want %v", rsi[4], want)
	}
}

func TestRSIInsufficientData(t *testing.T) {
	if NewRSIService().Calculate([]float64{1, 2, 3}, 10) != nil {
		t.Error("expected nil when fewer than period+1 prices")
	}
}

func TestATRWilderSmoothing(t *testing.T) {
	highs := []float64{11, 12, 13, 14, 15}
	lows := []float64{9, 10, 11, 12, 13}
	closes := []float64{10, 11, 12, 13, 14}

	atr := NewATRService().Calculate(highs, lows, closes, 3)
	if atr == nil {
		t.Fatal("expected ATR series, got nil")
	}

	// Every bar: high-low = 2, |high-prevClose| = 2, |low-prevClose| = 1,
	// so TR = 2 throughout and the smoothed ATR stays 2.
	if !almostEqual(atr[3], 2) || !almostEqual(atr[4], 2) {
		t.Errorf("atr = %v, want constant 2 after warm-up", atr)
	}
	if !almostEqual(atr[0], 0) || !almostEqual(atr[2], 0) {
		t.Errorf("atr warm-up points should be zero, got %v", atr)
	}
}

func TestATRGapRange(t *testing.T) {
	// Second bar gaps far above the prior close; TR must use the gap.
	highs := []float64{11, 20, 21}
	lows := []float64{9, 19, 20}
	closes := []float64{10, 19, 20}

	atr := NewATRService().Calculate(highs, lows, closes, 2)
	if atr == nil {
		t.Fatal("expected ATR series, got nil")
	}

	// TR[1] = max(1, |20-10|, |19-10|) = 10, TR[2] = max(1, 2, 1) = 2.
	want := (10.0 + 2.0) / 2
	if !almostEqual(atr[2], want) {
		t.Errorf("atr[2] = %v, want %v", atr[2], want)
	}
}

func TestATRMismatchedSlices(t *testing.T) {
	if NewATRService().Calculate([]float64{1, 2}, []float64{1}, []float64{1, 2}, 1) != nil {
		t.Error("expected nil for mismatched slice lengths")
	}
}
