package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func Load() (*config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	return &config{
		Exchange: ExchangeConfig{
			APIKey:     os.Getenv("BINANCE_API_KEY"),
			SecretKey:  os.Getenv("BINANCE_SECRET_KEY"),
			QuoteAsset: envOr("QUOTE_ASSET", "USDT"),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     EnvtoInt(os.Getenv("DB_PORT")),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Trading: TradingConfig{
			Notional:          envToFloat("TRADE_NOTIONAL", 1.5),
			Leverage:          envToIntOr("TRADE_LEVERAGE", 10),
			MaxShortPositions: envToIntOr("MAX_SHORT_POSITIONS", 8),
			MaxLongPositions:  envToIntOr("MAX_LONG_POSITIONS", 2),
			ReentryFraction:   envToFloat("REENTRY_FRACTION", 0.1),
			Interval:          envOr("CANDLE_INTERVAL", "1h"),
			CandleLimit:       envToIntOr("CANDLE_LIMIT", 50),
			CycleInterval:     envToDuration("CYCLE_INTERVAL", 6*time.Second),
		},
		Signal: SignalConfig{
			FastPeriod:      envToIntOr("EMA_FAST_PERIOD", 9),
			SlowPeriod:      envToIntOr("EMA_SLOW_PERIOD", 21),
			ATRPeriod:       envToIntOr("ATR_PERIOD", 10),
			RSIPeriod:       envToIntOr("RSI_PERIOD", 10),
			VolatilityFloor: envToFloat("VOLATILITY_FLOOR", 0.015),
			Overbought:      envToFloat("RSI_OVERBOUGHT", 70),
			Oversold:        envToFloat("RSI_OVERSOLD", 30),
		},
		MetricsAddr: envOr("METRICS_ADDR", ":9090"),
	}, nil
}

// helper env(string) to int
func EnvtoInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envToIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envToFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envToDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
