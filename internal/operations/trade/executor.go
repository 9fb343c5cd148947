package trade

import (
	"context"
	"fmt"
	"time"

	"PerpTradeBot/internal/metrics"
	"PerpTradeBot/internal/models"
	"PerpTradeBot/internal/operations/exchange"
	"PerpTradeBot/internal/services/positions"
	"PerpTradeBot/internal/services/precision"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config are the fixed sizing inputs for every entry. Immutable after
// construction; never read from ambient state.
type Config struct {
	Notional        float64 // quote-currency value of the market entry
	Leverage        int
	ReentryFraction float64 // fraction of the entry-to-liquidation distance
}

// OrderJournal receives a record of every placed order. Optional.
type OrderJournal interface {
	RecordOrder(record *models.OrderRecord) error
}

// Executor runs the two-phase entry for one symbol: a market order at
// the last price, then a liquidation-anchored limit re-entry. The
// market leg failing aborts the flow; the re-entry leg failing only
// degrades it, the filled entry is never rolled back.
type Executor struct {
	gateway exchange.Gateway
	tracker *positions.Tracker
	cfg     Config
	journal OrderJournal
	logger  *zap.Logger
}

func NewExecutor(gateway exchange.Gateway, cfg Config, journal OrderJournal, logger *zap.Logger) *Executor {
	return &Executor{
		gateway: gateway,
		tracker: positions.NewTracker(),
		cfg:     cfg,
		journal: journal,
		logger:  logger,
	}
}

// Execute opens a market position on side for symbol and stages the
// re-entry limit order. Margin-mode and leverage setup are best-effort;
// the venue may already be configured or reject redundant changes.
func (e *Executor) Execute(ctx context.Context, symbol, side string) error {
	lastPrice, err := e.gateway.FetchLastPrice(ctx, symbol)
	if err != nil {
		return fmt.Errorf("quote %s: %w", symbol, err)
	}
	if lastPrice <= 0 {
		return fmt.Errorf("quote %s: non-positive last price %v", symbol, lastPrice)
	}
	baseAmount := e.cfg.Notional / lastPrice

	if err := e.gateway.SetMarginMode(ctx, exchange.MarginModeIsolated, symbol); err != nil {
		e.logger.Warn("failed to set margin mode", zap.String("symbol", symbol), zap.Error(err))
	}
	if err := e.gateway.SetLeverage(ctx, e.cfg.Leverage, symbol); err != nil {
		e.logger.Warn("failed to set leverage", zap.String("symbol", symbol), zap.Error(err))
	}

	e.logger.Info("submitting market entry",
		zap.String("symbol", symbol),
		zap.String("side", side),
		zap.Float64("price", lastPrice),
		zap.Float64("amount", baseAmount))

	marketOrder := models.Order{
		Symbol:        symbol,
		Type:          models.OrderTypeMarket,
		Side:          side,
		Amount:        baseAmount,
		ClientOrderID: uuid.NewString(),
	}
	placed, conf, err := e.placeWithPosModeRetry(ctx, marketOrder)
	if err != nil {
		return fmt.Errorf("market entry %s: %w", symbol, err)
	}
	e.record(placed, conf)

	e.logger.Info("market entry filled",
		zap.String("symbol", symbol),
		zap.Int64("orderID", conf.OrderID),
		zap.String("status", conf.Status))

	// Everything past here is the re-entry phase. Its failures degrade
	// the flow to entry-only and are not surfaced as errors.
	e.stageReentry(ctx, symbol, side)
	return nil
}

// placeWithPosModeRetry submits the order untagged and, on the specific
// position-mode rejection, retries exactly once with the hedge-mode tag
// derived from the order side. A second rejection of any kind is
// terminal. Returns the order as actually submitted.
func (e *Executor) placeWithPosModeRetry(ctx context.Context, order models.Order) (models.Order, *models.OrderConfirmation, error) {
	conf, err := e.gateway.PlaceOrder(ctx, order)
	if err == nil {
		return order, conf, nil
	}
	if !exchange.IsPositionModeMismatch(err) {
		return order, nil, err
	}

	e.logger.Info("retrying order with position side",
		zap.String("symbol", order.Symbol),
		zap.String("side", order.Side),
		zap.Error(err))

	order.PosSide = models.PosSideTagForOrder(order.Side)
	order.ClientOrderID = uuid.NewString()
	conf, err = e.gateway.PlaceOrder(ctx, order)
	if err != nil {
		return order, nil, err
	}
	return order, conf, nil
}

func (e *Executor) stageReentry(ctx context.Context, symbol, side string) {
	pos, ok := e.lookupOpenedPosition(ctx, symbol, side)
	if !ok {
		return
	}

	spec, err := e.gateway.FetchMarketPrecision(ctx, symbol)
	if err != nil {
		e.logger.Warn("could not fetch market precision, skipping re-entry",
			zap.String("symbol", symbol), zap.Error(err))
		return
	}
	priceSigDigits := precision.CountSigDigits(spec.PriceStep)
	amountSigDigits := precision.CountSigDigits(spec.AmountStep)

	targetPrice := reentryTargetPrice(pos.EntryPrice, pos.LiquidationPrice, e.cfg.ReentryFraction, priceSigDigits)

	if pos.MarkPrice <= 0 {
		e.logger.Warn("mark price unavailable, skipping re-entry", zap.String("symbol", symbol))
		return
	}
	// The re-entry doubles the position at the target level.
	orderAmount := precision.RoundToSigFigs(pos.Notional*2/pos.MarkPrice, amountSigDigits)

	e.logger.Info("staging re-entry limit order",
		zap.String("symbol", symbol),
		zap.Float64("entryPrice", pos.EntryPrice),
		zap.Float64("liquidationPrice", pos.LiquidationPrice),
		zap.Float64("targetPrice", targetPrice),
		zap.Float64("amount", orderAmount))

	limitOrder := models.Order{
		Symbol:        symbol,
		Type:          models.OrderTypeLimit,
		Side:          side,
		Amount:        orderAmount,
		Price:         targetPrice,
		ClientOrderID: uuid.NewString(),
	}
	placed, conf, err := e.placeWithPosModeRetry(ctx, limitOrder)
	if err != nil {
		// Market leg already filled; entry-only is an accepted end state.
		e.logger.Error("re-entry limit order failed",
			zap.String("symbol", symbol), zap.Error(err))
		return
	}
	e.record(placed, conf)

	e.logger.Info("re-entry limit order placed",
		zap.String("symbol", symbol),
		zap.Int64("orderID", conf.OrderID))
}

// lookupOpenedPosition re-fetches the symbol's positions and locates
// the leg matching the just-opened side. Missing position or zero
// liquidation price degrades the flow.
func (e *Executor) lookupOpenedPosition(ctx context.Context, symbol, side string) (models.Position, bool) {
	snapshot, err := e.gateway.FetchPositions(ctx, []string{symbol})
	if err != nil {
		e.logger.Warn("could not fetch positions after entry, skipping re-entry",
			zap.String("symbol", symbol), zap.Error(err))
		return models.Position{}, false
	}

	wantSide := models.PositionSideForOrder(side)
	for _, pos := range snapshot {
		if pos.Symbol != symbol || e.tracker.SideOf(pos) != wantSide {
			continue
		}
		if pos.LiquidationPrice == 0 {
			e.logger.Warn("liquidation price unavailable, skipping re-entry",
				zap.String("symbol", symbol))
			return models.Position{}, false
		}
		return pos, true
	}

	e.logger.Warn("no matching position after entry, skipping re-entry",
		zap.String("symbol", symbol), zap.String("side", wantSide))
	return models.Position{}, false
}

// reentryTargetPrice places the scale-in level a fixed fraction of the
// way from the entry price toward the liquidation price, rounded to the
// symbol's tradable precision.
func reentryTargetPrice(entryPrice, liquidationPrice, fraction float64, sigDigits int) float64 {
	return precision.RoundToSigFigs(entryPrice+(liquidationPrice-entryPrice)*fraction, sigDigits)
}

func (e *Executor) record(order models.Order, conf *models.OrderConfirmation) {
	metrics.OrdersTotal.WithLabelValues(order.Symbol, order.Type).Inc()
	if e.journal == nil {
		return
	}
	rec := &models.OrderRecord{
		Symbol:    order.Symbol,
		OrderType: order.Type,
		Side:      order.Side,
		Amount:    order.Amount,
		Price:     order.Price,
		PosSide:   order.PosSide,
		PlacedAt:  time.Now(),
	}
	if conf != nil {
		rec.ExchangeOrderID = conf.OrderID
		rec.Status = conf.Status
	}
	if err := e.journal.RecordOrder(rec); err != nil {
		e.logger.Warn("failed to journal order", zap.String("symbol", order.Symbol), zap.Error(err))
	}
}
