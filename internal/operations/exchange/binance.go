package exchange

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"PerpTradeBot/internal/models"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Binance error code for an order whose position side does not match
// the account's position-mode setting.
const codePositionSideMismatch = -4061

// BinanceGateway implements Gateway against USDT-M futures.
type BinanceGateway struct {
	client      *futures.Client
	rateLimiter *rate.Limiter
	httpClient  *http.Client
	quoteAsset  string
}

func NewBinanceGateway(apiKey, secretKey, quoteAsset string) *BinanceGateway {
	// Create custom HTTP client with timeouts
	httpClient := &http.Client{
		Timeout: time.Second * 10,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	futuresClient := futures.NewClient(apiKey, secretKey)
	futuresClient.HTTPClient = httpClient

	// 10 requests per second with burst of 20
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &BinanceGateway{
		client:      futuresClient,
		rateLimiter: limiter,
		httpClient:  httpClient,
		quoteAsset:  quoteAsset,
	}
}

func (g *BinanceGateway) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	maxRetries := 3
	backoff := 100 * time.Millisecond

	var klines []*futures.Kline
	for attempt := 0; ; attempt++ {
		if err := g.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		var err error
		klines, err = g.client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			Limit(limit).
			Do(ctx)
		if err == nil {
			break
		}
		if attempt == maxRetries {
			return nil, fmt.Errorf("fetch candles %s: %w", symbol, err)
		}

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * backoff
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTime):
		}
	}

	candles := make([]models.Candle, 0, len(klines))
	for _, k := range klines {
		candles = append(candles, models.Candle{
			OpenTime: time.UnixMilli(k.OpenTime),
			Open:     parseFloat(k.Open),
			High:     parseFloat(k.High),
			Low:      parseFloat(k.Low),
			Close:    parseFloat(k.Close),
			Volume:   parseFloat(k.Volume),
		})
	}
	return candles, nil
}

func (g *BinanceGateway) FetchLastPrice(ctx context.Context, symbol string) (float64, error) {
	if err := g.rateLimiter.Wait(ctx); err != nil {
		return 0, err
	}

	prices, err := g.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch last price %s: %w", symbol, err)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("fetch last price %s: empty response", symbol)
	}
	return parseFloat(prices[0].Price), nil
}

func (g *BinanceGateway) FetchPositions(ctx context.Context, symbols []string) ([]models.Position, error) {
	if err := g.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	svc := g.client.NewGetPositionRiskService()
	if len(symbols) == 1 {
		svc = svc.Symbol(symbols[0])
	}
	risks, err := svc.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}

	wanted := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		wanted[s] = struct{}{}
	}

	positions := make([]models.Position, 0, len(risks))
	for _, r := range risks {
		if len(symbols) > 1 {
			if _, ok := wanted[r.Symbol]; !ok {
				continue
			}
		}

		size := parseFloat(r.PositionAmt)
		positions = append(positions, models.Position{
			Symbol:           r.Symbol,
			Side:             mapPositionSide(r.PositionSide),
			Contracts:        math.Abs(size),
			Size:             size,
			EntryPrice:       parseFloat(r.EntryPrice),
			MarkPrice:        parseFloat(r.MarkPrice),
			LiquidationPrice: parseFloat(r.LiquidationPrice),
			Leverage:         parseFloat(r.Leverage),
			Notional:         math.Abs(parseFloat(r.Notional)),
		})
	}
	return positions, nil
}

func (g *BinanceGateway) FetchMarketPrecision(ctx context.Context, symbol string) (models.PrecisionSpec, error) {
	if err := g.rateLimiter.Wait(ctx); err != nil {
		return models.PrecisionSpec{}, err
	}

	info, err := g.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return models.PrecisionSpec{}, fmt.Errorf("fetch exchange info: %w", err)
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		spec := models.PrecisionSpec{}
		if pf := s.PriceFilter(); pf != nil {
			spec.PriceStep = parseFloat(pf.TickSize)
		}
		if lf := s.LotSizeFilter(); lf != nil {
			spec.AmountStep = parseFloat(lf.StepSize)
		}
		return spec, nil
	}
	return models.PrecisionSpec{}, fmt.Errorf("fetch market precision: symbol %s not found", symbol)
}

func (g *BinanceGateway) SetMarginMode(ctx context.Context, mode, symbol string) error {
	if err := g.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	marginType := futures.MarginTypeCrossed
	if mode == MarginModeIsolated {
		marginType = futures.MarginTypeIsolated
	}

	err := g.client.NewChangeMarginTypeService().
		Symbol(symbol).
		MarginType(marginType).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("set margin mode %s %s: %w", mode, symbol, err)
	}
	return nil
}

func (g *BinanceGateway) SetLeverage(ctx context.Context, leverage int, symbol string) error {
	if err := g.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	_, err := g.client.NewChangeLeverageService().
		Symbol(symbol).
		Leverage(leverage).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("set leverage %d %s: %w", leverage, symbol, err)
	}
	return nil
}

func (g *BinanceGateway) PlaceOrder(ctx context.Context, order models.Order) (*models.OrderConfirmation, error) {
	if err := g.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	side := futures.SideTypeBuy
	if order.Side == models.SideSell {
		side = futures.SideTypeSell
	}

	svc := g.client.NewCreateOrderService().
		Symbol(order.Symbol).
		Side(side).
		Quantity(formatQuantity(order.Amount))

	if order.ClientOrderID != "" {
		svc = svc.NewClientOrderID(order.ClientOrderID)
	}

	switch order.Type {
	case models.OrderTypeLimit:
		svc = svc.Type(futures.OrderTypeLimit).
			TimeInForce(futures.TimeInForceTypeGTC).
			Price(formatQuantity(order.Price))
	default:
		svc = svc.Type(futures.OrderTypeMarket)
	}

	switch order.PosSide {
	case models.PosSideTagLong:
		svc = svc.PositionSide(futures.PositionSideTypeLong)
	case models.PosSideTagShort:
		svc = svc.PositionSide(futures.PositionSideTypeShort)
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return nil, classifyOrderError(order.Symbol, err)
	}

	return &models.OrderConfirmation{
		OrderID:       resp.OrderID,
		ClientOrderID: resp.ClientOrderID,
		Symbol:        resp.Symbol,
		Status:        string(resp.Status),
	}, nil
}

func (g *BinanceGateway) ListTradableSymbols(ctx context.Context) ([]string, error) {
	if err := g.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	info, err := g.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tradable symbols: %w", err)
	}

	var symbols []string
	for _, s := range info.Symbols {
		if s.ContractType != "PERPETUAL" || s.Status != "TRADING" || s.QuoteAsset != g.quoteAsset {
			continue
		}
		symbols = append(symbols, s.Symbol)
	}
	return symbols, nil
}

// classifyOrderError lifts the venue's position-mode rejection into the
// typed error the executor retries on; anything else passes through
// wrapped.
func classifyOrderError(symbol string, err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == codePositionSideMismatch ||
			strings.Contains(apiErr.Message, "TE_ERR_INCONSISTENT_POS_MODE") {
			return fmt.Errorf("place order %s: %w", symbol, &PositionModeError{
				Code:    apiErr.Code,
				Message: apiErr.Message,
			})
		}
	}
	return fmt.Errorf("place order %s: %w", symbol, err)
}

func mapPositionSide(positionSide string) string {
	switch positionSide {
	case "LONG":
		return models.PositionSideLong
	case "SHORT":
		return models.PositionSideShort
	}
	// One-way mode reports BOTH; the side falls through to the signed
	// size during classification.
	return ""
}

// formatQuantity renders a price or amount without float exponent
// notation, which the order endpoint rejects.
func formatQuantity(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
