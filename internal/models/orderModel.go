package models

// Order is a write-only request sent to the exchange. The bot does not
// track order lifecycle beyond the synchronous placement response.
type Order struct {
	Symbol string
	Type   string
	Side   string
	Amount float64
	Price  float64 // limit orders only

	// PosSide tags the hedge-mode leg ("Long"/"Short"). Empty means the
	// order is submitted untagged; it is only set on the one retry after
	// a position-mode rejection.
	PosSide string

	ClientOrderID string
}

type OrderConfirmation struct {
	OrderID       int64
	ClientOrderID string
	Symbol        string
	Status        string
}

// PrecisionSpec holds the tick and lot step for a symbol, sourced from
// market metadata. Cheap to re-fetch; callers must tolerate fetching it
// every cycle.
type PrecisionSpec struct {
	PriceStep  float64
	AmountStep float64
}

const (
	OrderTypeMarket = "market"
	OrderTypeLimit  = "limit"

	PosSideTagLong  = "Long"
	PosSideTagShort = "Short"
)

// PosSideTagForOrder derives the hedge-mode tag used on position-mode
// retries: buy opens the Long leg, sell the Short leg.
func PosSideTagForOrder(side string) string {
	if side == SideBuy {
		return PosSideTagLong
	}
	return PosSideTagShort
}
