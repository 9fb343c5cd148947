package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PerpTradeBot/config"
	"PerpTradeBot/internal/handlers"
	"PerpTradeBot/internal/metrics"
	"PerpTradeBot/internal/models"
	"PerpTradeBot/internal/operations/exchange"
	"PerpTradeBot/internal/operations/trade"
	"PerpTradeBot/internal/repositories"
	signals "PerpTradeBot/internal/services/signal"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer zlog.Sync()

	// Journal database is optional; the bot trades without one.
	var orderJournal trade.OrderJournal
	var signalJournal handlers.SignalJournal
	if cfg.Database.Enabled() {
		db := setupDatabase(cfg.Database)
		repo := repositories.NewJournalRepository(db)
		orderJournal, signalJournal = repo, repo
		zlog.Info("signal journal enabled", zap.String("host", cfg.Database.Host))
	}

	gateway := exchange.NewBinanceGateway(
		cfg.Exchange.APIKey,
		cfg.Exchange.SecretKey,
		cfg.Exchange.QuoteAsset,
	)

	engine := signals.NewEngine(signals.Params{
		FastPeriod:      cfg.Signal.FastPeriod,
		SlowPeriod:      cfg.Signal.SlowPeriod,
		ATRPeriod:       cfg.Signal.ATRPeriod,
		RSIPeriod:       cfg.Signal.RSIPeriod,
		VolatilityFloor: cfg.Signal.VolatilityFloor,
		Overbought:      cfg.Signal.Overbought,
		Oversold:        cfg.Signal.Oversold,
	})

	executor := trade.NewExecutor(gateway, trade.Config{
		Notional:        cfg.Trading.Notional,
		Leverage:        cfg.Trading.Leverage,
		ReentryFraction: cfg.Trading.ReentryFraction,
	}, orderJournal, zlog)

	handler := handlers.NewTradeHandler(gateway, engine, executor, signalJournal, handlers.Config{
		Interval:          cfg.Trading.Interval,
		CandleLimit:       cfg.Trading.CandleLimit,
		MaxShortPositions: cfg.Trading.MaxShortPositions,
		MaxLongPositions:  cfg.Trading.MaxLongPositions,
		CycleInterval:     cfg.Trading.CycleInterval,
	}, zlog)

	metricsServer := metrics.Serve(cfg.MetricsAddr)
	zlog.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		zlog.Info("shutting down")
		cancel()
	}()

	if err := handler.Start(ctx); err != nil {
		zlog.Error("decision loop exited", zap.Error(err))
	}

	_ = metricsServer.Close()
	zlog.Info("shutdown complete")
}

func setupDatabase(dbConfig config.DatabaseConfig) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto migrate database schemas
	err = db.AutoMigrate(&models.SignalRecord{}, &models.OrderRecord{})
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	return db
}
