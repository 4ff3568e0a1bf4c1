package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Report is the derived P&L aggregation over one fetched snapshot of
// completed trades. It is recomputed on every filter change and never
// persisted; the Redis cache only memoizes it for a short TTL.
type Report struct {
	// TotalProfit is the sum of realized profit over the filtered set
	TotalProfit decimal.Decimal `json:"total_profit"`

	// RealizedGains is gross profit before fees: total_profit + total_fees
	RealizedGains decimal.Decimal `json:"realized_gains"`

	// TotalFees is the sum of fees over the filtered set
	TotalFees decimal.Decimal `json:"total_fees"`

	// WinRate is the percentage of trades with strictly positive profit.
	// Zero-profit trades count in the denominator but not as wins.
	WinRate float64 `json:"win_rate"`

	TradeCount int `json:"trade_count"`

	// ChartSeries has exactly one point per trade, chronological
	ChartSeries []ChartPoint `json:"chart_series"`

	// Transactions are the per-trade rows enriched with ROI
	Transactions []Transaction `json:"transactions"`

	// FetchFailed distinguishes "store query failed" from a genuine empty
	// period; metrics are zero in both cases
	FetchFailed bool `json:"fetch_failed,omitempty"`
}

// ChartPoint is one entry of the cumulative/periodic profit series
type ChartPoint struct {
	// DateLabel granularity follows the view mode: day for monthly,
	// month for yearly
	DateLabel string `json:"date_label"`

	CumulativeProfit decimal.Decimal `json:"cumulative_profit"`
	PeriodicProfit   decimal.Decimal `json:"periodic_profit"`
}

// Transaction is a per-trade report row. ExecutedAt is retained alongside
// the display label so sorting never has to re-parse a formatted date.
type Transaction struct {
	ID       uuid.UUID `json:"id"`
	Symbol   string    `json:"symbol"`
	Exchange string    `json:"exchange"`
	Strategy string    `json:"strategy,omitempty"`

	BuyPrice  decimal.Decimal `json:"buy_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Profit    decimal.Decimal `json:"profit"`
	Fees      decimal.Decimal `json:"fees"`

	// ROI is profit / (buy_price * quantity) * 100; zero when the cost
	// basis is zero (malformed record policy)
	ROI decimal.Decimal `json:"roi"`

	ExecutedAt time.Time `json:"executed_at"`
	DateLabel  string    `json:"date_label"`
}

// Empty returns an all-zero report with non-nil, empty series and rows.
func Empty() Report {
	return Report{
		TotalProfit:   decimal.Zero,
		RealizedGains: decimal.Zero,
		TotalFees:     decimal.Zero,
		ChartSeries:   []ChartPoint{},
		Transactions:  []Transaction{},
	}
}
