package config

import "time"

type config struct {
	Exchange    ExchangeConfig
	Database    DatabaseConfig
	Trading     TradingConfig
	Signal      SignalConfig
	MetricsAddr string
}

type ExchangeConfig struct {
	APIKey     string
	SecretKey  string
	QuoteAsset string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// Enabled reports whether the journal database is configured at all.
// The bot trades fine without one.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type TradingConfig struct {
	Notional          float64 // quote-currency value per market entry
	Leverage          int
	MaxShortPositions int
	MaxLongPositions  int
	ReentryFraction   float64
	Interval          string
	CandleLimit       int
	CycleInterval     time.Duration
}

type SignalConfig struct {
	FastPeriod int
	SlowPeriod int
	ATRPeriod  int
	RSIPeriod  int

	VolatilityFloor float64
	Overbought      float64
	Oversold        float64
}
