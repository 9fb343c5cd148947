package models

import "time"

// Candle is one OHLCV bar as returned by the exchange, most-recent-last
// when stacked into a window. Candles are never persisted; each cycle
// fetches a fresh window.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

const (
	CandleInterval5m  = "5m"
	CandleInterval15m = "15m"
	CandleInterval1h  = "1h"
	CandleInterval4h  = "4h"
)

// Closes extracts the close series from a candle window.
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i := range candles {
		closes[i] = candles[i].Close
	}
	return closes
}
