package models

// TradeSignal is the verdict for one symbol in one cycle. It is produced
// once, consumed immediately and never kept past the cycle.
type TradeSignal struct {
	ShouldTrade bool
	Side        string // "buy", "sell" or "" when no trade
	Trend       string

	ATRNormalized float64
	EMAFast       float64
	EMASlow       float64
	RSINow        float64
	RSIPrev       float64
}

const (
	SideBuy  = "buy"
	SideSell = "sell"

	TrendUp       = "uptrend"
	TrendDown     = "downtrend"
	TrendSideways = "sideways"
)

// PositionSideForOrder maps an order side to the position side it opens.
func PositionSideForOrder(side string) string {
	if side == SideBuy {
		return PositionSideLong
	}
	return PositionSideShort
}
