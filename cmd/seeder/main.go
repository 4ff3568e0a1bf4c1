package main

// Development seeder: fills trade_records with randomized completed trades
// so the report endpoints have data to aggregate locally.
//
// Usage:
//   go run ./cmd/seeder --user 7b0c... --trades 500 --months 12

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"plutus/internal/adapters/config"
	pgclient "plutus/internal/adapters/postgres"
	"plutus/internal/domain/trade"
	pgrepo "plutus/internal/repository/postgres"
	"plutus/pkg/logger"
)

var (
	symbols    = []string{"BTC/USDT", "ETH/USDT", "SOL/USDT", "XRP/USDT", "DOGE/USDT"}
	exchanges  = []string{"binance", "kraken", "bybit"}
	strategies = []string{"grid", "dca", "momentum", "manual"}
)

func main() {
	rawUser := flag.String("user", "", "User UUID to seed trades for (random if empty)")
	count := flag.Int("trades", 200, "Number of completed trades to insert")
	months := flag.Int("months", 12, "Spread trades over the last N months")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()

	userID := uuid.New()
	if *rawUser != "" {
		userID, err = uuid.Parse(*rawUser)
		if err != nil {
			log.Fatalf("Invalid user UUID: %v", err)
		}
	}

	pg, err := pgclient.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()

	repo := pgrepo.NewTradeRepository(pg.DB())
	ctx := context.Background()

	log.Infow("Seeding trade records",
		"user_id", userID, "trades", *count, "months", *months)

	now := time.Now().UTC()
	window := time.Duration(*months) * 30 * 24 * time.Hour

	for i := 0; i < *count; i++ {
		rec := randomTrade(userID, now, window)
		if err := repo.Create(ctx, rec); err != nil {
			log.Fatalf("Failed to insert trade %d: %v", i, err)
		}
	}

	log.Infow("Seeding complete", "user_id", userID, "trades", *count)
}

func randomTrade(userID uuid.UUID, now time.Time, window time.Duration) *trade.Record {
	buy := decimal.NewFromFloat(100 + rand.Float64()*50000).Round(2)
	qty := decimal.NewFromFloat(0.01 + rand.Float64()*2).Round(4)

	// Slight positive drift so seeded reports look like a live account
	move := (rand.Float64() - 0.45) * 0.1
	sell := buy.Mul(decimal.NewFromFloat(1 + move)).Round(2)

	profit := sell.Sub(buy).Mul(qty).Round(2)
	fees := buy.Mul(qty).Mul(decimal.NewFromFloat(0.001)).Round(2)

	executed := now.Add(-time.Duration(rand.Int63n(int64(window))))

	return &trade.Record{
		ID:             uuid.New(),
		UserID:         userID,
		Symbol:         symbols[rand.Intn(len(symbols))],
		Exchange:       exchanges[rand.Intn(len(exchanges))],
		Strategy:       strategies[rand.Intn(len(strategies))],
		BuyPrice:       buy,
		SellPrice:      sell,
		Quantity:       qty,
		ActualProfit:   profit.Sub(fees),
		TotalFees:      fees,
		Status:         trade.StatusCompleted,
		SellExecutedAt: executed,
		CreatedAt:      executed,
	}
}
