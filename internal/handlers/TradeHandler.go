package handlers

import (
	"context"
	"time"

	"PerpTradeBot/internal/metrics"
	"PerpTradeBot/internal/models"
	"PerpTradeBot/internal/operations/exchange"
	"PerpTradeBot/internal/services/positions"
	"PerpTradeBot/internal/services/signal"

	"go.uber.org/zap"
)

// Config are the fixed per-deployment loop settings.
type Config struct {
	Interval          string
	CandleLimit       int
	MaxShortPositions int
	MaxLongPositions  int
	CycleInterval     time.Duration
}

// EntryExecutor runs the two-phase order flow for one symbol.
type EntryExecutor interface {
	Execute(ctx context.Context, symbol, side string) error
}

// SignalJournal receives a record of every evaluation. Optional.
type SignalJournal interface {
	RecordSignal(record *models.SignalRecord) error
}

// TradeHandler drives one evaluation-and-execution pass per trigger.
// Symbols are processed strictly one at a time in the order the venue
// lists them; a symbol's failure never aborts the rest of the cycle.
type TradeHandler struct {
	gateway  exchange.Gateway
	engine   *signal.Engine
	tracker  *positions.Tracker
	executor EntryExecutor
	journal  SignalJournal
	cfg      Config
	logger   *zap.Logger
}

func NewTradeHandler(
	gateway exchange.Gateway,
	engine *signal.Engine,
	executor EntryExecutor,
	journal SignalJournal,
	cfg Config,
	logger *zap.Logger,
) *TradeHandler {
	return &TradeHandler{
		gateway:  gateway,
		engine:   engine,
		tracker:  positions.NewTracker(),
		executor: executor,
		journal:  journal,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start blocks, running one cycle immediately and then one per trigger
// until the context is cancelled. At most one cycle is ever active: a
// trigger that fires while a cycle is still running is dropped, not
// queued.
func (h *TradeHandler) Start(ctx context.Context) error {
	h.logger.Info("decision loop started",
		zap.String("interval", h.cfg.Interval),
		zap.Duration("cycleInterval", h.cfg.CycleInterval))

	ticker := time.NewTicker(h.cfg.CycleInterval)
	defer ticker.Stop()

	h.runCycleLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("decision loop stopped")
			return nil
		case <-ticker.C:
			h.runCycleLogged(ctx)
			// An overrunning cycle leaves a stale tick behind; drain it
			// so the missed trigger is skipped.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

func (h *TradeHandler) runCycleLogged(ctx context.Context) {
	if err := h.RunCycle(ctx); err != nil {
		h.logger.Error("cycle failed", zap.Error(err))
	}
}

// RunCycle evaluates every symbol without an open position and executes
// the entries that pass the signal and capacity gates.
func (h *TradeHandler) RunCycle(ctx context.Context) error {
	metrics.CyclesTotal.Inc()

	symbols, err := h.gateway.ListTradableSymbols(ctx)
	if err != nil {
		return err
	}

	// Advisory snapshot: only used to exclude symbols that already hold
	// a position. The counts that gate a commit are re-fetched per trade.
	snapshot, err := h.gateway.FetchPositions(ctx, symbols)
	if err != nil {
		return err
	}
	open := h.tracker.Classify(snapshot).OpenSymbols()

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, held := open[symbol]; held {
			continue
		}
		if err := h.processSymbol(ctx, symbol, symbols); err != nil {
			h.logger.Warn("symbol skipped",
				zap.String("symbol", symbol), zap.Error(err))
		}
	}
	return nil
}

func (h *TradeHandler) processSymbol(ctx context.Context, symbol string, allSymbols []string) error {
	candles, err := h.gateway.FetchCandles(ctx, symbol, h.cfg.Interval, h.cfg.CandleLimit)
	if err != nil {
		return err
	}

	sig, err := h.engine.Evaluate(candles)
	if err != nil {
		return err
	}
	metrics.EvaluationsTotal.WithLabelValues(symbol).Inc()
	h.recordSignal(symbol, sig)

	h.logger.Debug("signal evaluated",
		zap.String("symbol", symbol),
		zap.Bool("shouldTrade", sig.ShouldTrade),
		zap.String("side", sig.Side),
		zap.String("trend", sig.Trend),
		zap.Float64("rsi", sig.RSINow),
		zap.Float64("atrNorm", sig.ATRNormalized))

	if !sig.ShouldTrade {
		return nil
	}

	// Authoritative count, taken immediately before committing to the
	// trade. The top-of-cycle snapshot may be stale by now.
	snapshot, err := h.gateway.FetchPositions(ctx, allSymbols)
	if err != nil {
		return err
	}
	summary := h.tracker.Classify(snapshot)

	if sig.Side == models.SideSell && summary.ShortCount >= h.cfg.MaxShortPositions {
		h.logger.Info("sell capacity reached, skipping",
			zap.String("symbol", symbol), zap.Int("shortCount", summary.ShortCount))
		metrics.CapacitySkipsTotal.WithLabelValues(models.SideSell).Inc()
		return nil
	}
	if sig.Side == models.SideBuy && summary.LongCount >= h.cfg.MaxLongPositions {
		h.logger.Info("buy capacity reached, skipping",
			zap.String("symbol", symbol), zap.Int("longCount", summary.LongCount))
		metrics.CapacitySkipsTotal.WithLabelValues(models.SideBuy).Inc()
		return nil
	}

	if err := h.executor.Execute(ctx, symbol, sig.Side); err != nil {
		return err
	}
	metrics.TradesTotal.WithLabelValues(symbol, sig.Side).Inc()
	return nil
}

func (h *TradeHandler) recordSignal(symbol string, sig *models.TradeSignal) {
	if h.journal == nil {
		return
	}
	err := h.journal.RecordSignal(&models.SignalRecord{
		Symbol:        symbol,
		ShouldTrade:   sig.ShouldTrade,
		Side:          sig.Side,
		Trend:         sig.Trend,
		ATRNormalized: sig.ATRNormalized,
		EMAFast:       sig.EMAFast,
		EMASlow:       sig.EMASlow,
		RSINow:        sig.RSINow,
		EvaluatedAt:   time.Now(),
	})
	if err != nil {
		h.logger.Warn("failed to journal signal", zap.String("symbol", symbol), zap.Error(err))
	}
}
