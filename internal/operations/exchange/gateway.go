package exchange

import (
	"context"
	"errors"
	"fmt"

	"PerpTradeBot/internal/models"
)

// Gateway is the capability set the trading core needs from a venue.
// Every call blocks until response or error; the core adds no deadline
// of its own beyond the context it passes in.
type Gateway interface {
	FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
	FetchLastPrice(ctx context.Context, symbol string) (float64, error)
	FetchPositions(ctx context.Context, symbols []string) ([]models.Position, error)
	FetchMarketPrecision(ctx context.Context, symbol string) (models.PrecisionSpec, error)
	SetMarginMode(ctx context.Context, mode, symbol string) error
	SetLeverage(ctx context.Context, leverage int, symbol string) error
	PlaceOrder(ctx context.Context, order models.Order) (*models.OrderConfirmation, error)
	ListTradableSymbols(ctx context.Context) ([]string, error)
}

const (
	MarginModeIsolated = "isolated"
	MarginModeCross    = "cross"
)

// PositionModeError is the one venue rejection that warrants a retry
// with an explicit position-side tag. Everything else is terminal for
// the symbol within the cycle.
type PositionModeError struct {
	Code    int64
	Message string
}

func (e *PositionModeError) Error() string {
	return fmt.Sprintf("position mode mismatch (code %d): %s", e.Code, e.Message)
}

// IsPositionModeMismatch reports whether err, anywhere in its chain, is
// a position-mode rejection.
func IsPositionModeMismatch(err error) bool {
	var pm *PositionModeError
	return errors.As(err, &pm)
}
