package models

// Position is a read-only snapshot of an open contract on the exchange.
// The exchange owns this state; snapshots are re-fetched every time they
// are needed and never cached across cycles.
type Position struct {
	Symbol           string
	Side             string  // "long"/"short" when the exchange reports it, else ""
	Contracts        float64 // unsigned contract count
	Size             float64 // signed size, negative for shorts, 0 when unknown
	EntryPrice       float64
	MarkPrice        float64
	LiquidationPrice float64
	Leverage         float64
	Notional         float64

	// RawSide carries the venue's own side string ("buy"/"sell") for
	// venues that report neither Side nor a signed Size.
	RawSide string
}

const (
	PositionSideLong  = "long"
	PositionSideShort = "short"
)
