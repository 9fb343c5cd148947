package signal

import (
	"PerpTradeBot/internal/models"
	"PerpTradeBot/internal/services/indicators"
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when the candle window is too short to
// warm up every indicator.
var ErrInsufficientData = errors.New("insufficient candle data")

// Params are the fixed lookbacks and thresholds of the entry rule.
type Params struct {
	FastPeriod int
	SlowPeriod int
	ATRPeriod  int
	RSIPeriod  int

	VolatilityFloor float64 // minimum ATR/close to consider trading
	Overbought      float64
	Oversold        float64
}

// Engine turns a candle window into a trade/no-trade verdict. It is a
// pure function of its input window; nothing is retained across calls.
type Engine struct {
	params Params

	ema *indicators.EMAService
	atr *indicators.ATRService
	rsi *indicators.RSIService
}

func NewEngine(params Params) *Engine {
	return &Engine{
		params: params,
		ema:    indicators.NewEMAService(),
		atr:    indicators.NewATRService(),
		rsi:    indicators.NewRSIService(),
	}
}

// MinBars is the smallest window Evaluate accepts: the slow EMA span,
// or enough closes for the current and previous RSI / the ATR warm-up,
// whichever is larger.
func (e *Engine) MinBars() int {
	min := e.params.SlowPeriod
	if n := e.params.RSIPeriod + 2; n > min {
		min = n
	}
	if n := e.params.ATRPeriod + 1; n > min {
		min = n
	}
	return min
}

// Evaluate computes the indicator set over the window and applies the
// entry rule on the most recent completed bar: a contrarian entry in the
// trend's exhaustion zone, gated by a volatility floor.
func (e *Engine) Evaluate(candles []models.Candle) (*models.TradeSignal, error) {
	if len(candles) < e.MinBars() {
		return nil, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientData, len(candles), e.MinBars())
	}

	n := len(candles)
	closes := models.Closes(candles)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := range candles {
		highs[i] = candles[i].High
		lows[i] = candles[i].Low
	}

	emaFast := e.ema.Latest(closes, e.params.FastPeriod)
	emaSlow := e.ema.Latest(closes, e.params.SlowPeriod)

	atrSeries := e.atr.Calculate(highs, lows, closes, e.params.ATRPeriod)
	rsiSeries := e.rsi.Calculate(closes, e.params.RSIPeriod)
	if atrSeries == nil || rsiSeries == nil {
		return nil, fmt.Errorf("%w: indicator warm-up failed on %d bars", ErrInsufficientData, n)
	}

	latestClose := closes[n-1]
	atrNorm := atrSeries[n-1] / latestClose
	rsiNow := rsiSeries[n-1]
	rsiPrev := rsiSeries[n-2]

	trend := models.TrendSideways
	if emaFast > emaSlow {
		trend = models.TrendUp
	} else if emaFast < emaSlow {
		trend = models.TrendDown
	}

	sig := &models.TradeSignal{
		Trend:         trend,
		ATRNormalized: atrNorm,
		EMAFast:       emaFast,
		EMASlow:       emaSlow,
		RSINow:        rsiNow,
		RSIPrev:       rsiPrev,
	}

	if atrNorm <= e.params.VolatilityFloor {
		return sig, nil
	}

	switch {
	case trend == models.TrendDown && rsiNow <= e.params.Oversold:
		sig.ShouldTrade = true
		sig.Side = models.SideBuy
	case trend == models.TrendUp && rsiNow >= e.params.Overbought:
		sig.ShouldTrade = true
		sig.Side = models.SideSell
	}

	return sig, nil
}
