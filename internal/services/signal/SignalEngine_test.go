package signal

import (
	"errors"
	"testing"
	"time"

	"PerpTradeBot/internal/models"
)

func testParams() Params {
	return Params{
		FastPeriod:      9,
		SlowPeriod:      21,
		ATRPeriod:       10,
		RSIPeriod:       10,
		VolatilityFloor: 0.015,
		Overbought:      70,
		Oversold:        30,
	}
}

// candlesFromCloses builds a window where each bar spans close±spread.
func candlesFromCloses(closes []float64, spread float64) []models.Candle {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{
			OpenTime: base.Add(time.Duration(i) * time.Hour),
			Open:     c,
			High:     c + spread,
			Low:      c - spread,
			Close:    c,
			Volume:   1000,
		}
	}
	return candles
}

func TestEvaluateInsufficientData(t *testing.T) {
	engine := NewEngine(testParams())
	if engine.MinBars() != 21 {
		t.Fatalf("MinBars() = %d, want 21", engine.MinBars())
	}

	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100
	}
	_, err := engine.Evaluate(candlesFromCloses(closes, 1))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestEvaluateOversoldDowntrendBuys(t *testing.T) {
	// Steadily falling closes: RSI pinned to 0, fast EMA below slow,
	// true range dominated by the gap to the prior close.
	closes := make([]float64, 22)
	for i := range closes {
		closes[i] = 100 - 2*float64(i)
	}

	sig, err := NewEngine(testParams()).Evaluate(candlesFromCloses(closes, 1))
	if err != nil {
		t.Fatal(err)
	}

	if sig.Trend != models.TrendDown {
		t.Errorf("trend = %q, want downtrend", sig.Trend)
	}
	if sig.RSINow > 30 {
		t.Errorf("rsi = %v, expected oversold", sig.RSINow)
	}
	if sig.ATRNormalized <= 0.015 {
		t.Errorf("atr_norm = %v, expected above floor", sig.ATRNormalized)
	}
	if !sig.ShouldTrade || sig.Side != models.SideBuy {
		t.Errorf("verdict = (%v, %q), want (true, buy)", sig.ShouldTrade, sig.Side)
	}
}

func TestEvaluateOverboughtUptrendSells(t *testing.T) {
	closes := make([]float64, 22)
	for i := range closes {
		closes[i] = 100 + 2*float64(i)
	}

	sig, err := NewEngine(testParams()).Evaluate(candlesFromCloses(closes, 1))
	if err != nil {
		t.Fatal(err)
	}

	if sig.Trend != models.TrendUp {
		t.Errorf("trend = %q, want uptrend", sig.Trend)
	}
	if sig.RSINow < 70 {
		t.Errorf("rsi = %v, expected overbought", sig.RSINow)
	}
	if !sig.ShouldTrade || sig.Side != models.SideSell {
		t.Errorf("verdict = (%v, %q), want (true, sell)", sig.ShouldTrade, sig.Side)
	}
}

func TestEvaluateVolatilityFloorBlocksTrade(t *testing.T) {
	// Same exhaustion setup as the sell case, but with tiny bar ranges
	// relative to price so normalized ATR stays under the floor.
	closes := make([]float64, 22)
	for i := range closes {
		closes[i] = 1000 + 0.5*float64(i)
	}

	sig, err := NewEngine(testParams()).Evaluate(candlesFromCloses(closes, 0.1))
	if err != nil {
		t.Fatal(err)
	}

	if sig.ATRNormalized > 0.015 {
		t.Fatalf("atr_norm = %v, test needs it below the floor", sig.ATRNormalized)
	}
	if sig.RSINow < 70 || sig.Trend != models.TrendUp {
		t.Fatalf("setup should be overbought uptrend, got rsi=%v trend=%q", sig.RSINow, sig.Trend)
	}
	if sig.ShouldTrade {
		t.Error("volatility floor should block the trade")
	}
}

func TestEvaluateNeutralRSINoTrade(t *testing.T) {
	// Rising overall but with regular pullbacks: uptrend with RSI
	// between the bands, so neither entry rule fires.
	closes := make([]float64, 22)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 3
		} else {
			closes[i] = closes[i-1] - 2
		}
	}

	sig, err := NewEngine(testParams()).Evaluate(candlesFromCloses(closes, 2))
	if err != nil {
		t.Fatal(err)
	}

	if sig.Trend != models.TrendUp {
		t.Fatalf("trend = %q, want uptrend", sig.Trend)
	}
	if sig.RSINow <= 30 || sig.RSINow >= 70 {
		t.Fatalf("rsi = %v, test needs it between the bands", sig.RSINow)
	}
	if sig.ShouldTrade {
		t.Error("neutral RSI should not trade")
	}
}

func TestEvaluateIsPureOfItsWindow(t *testing.T) {
	closes := make([]float64, 22)
	for i := range closes {
		closes[i] = 100 - 2*float64(i)
	}
	window := candlesFromCloses(closes, 1)

	engine := NewEngine(testParams())
	first, err := engine.Evaluate(window)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Evaluate(window)
	if err != nil {
		t.Fatal(err)
	}

	if *first != *second {
		t.Errorf("repeated evaluation diverged: %+v vs %+v", first, second)
	}
}
