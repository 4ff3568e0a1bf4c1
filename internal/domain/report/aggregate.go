package report

import (
	"time"

	"github.com/shopspring/decimal"

	"plutus/internal/domain/trade"
)

// Date label layouts per view mode. The mode changes only the x-axis
// granularity of the chart, never the arithmetic.
const (
	monthlyLabelLayout = "Jan 2"
	yearlyLabelLayout  = "Jan 2006"
)

var hundred = decimal.NewFromInt(100)

// Aggregate folds an ordered list of completed trades into the P&L report.
// It is a pure function: no filtering, no I/O, no mutation of its input.
// Records are assumed to arrive in chronological order (the repository
// contract); the cumulative series preserves every rise and fall exactly.
func Aggregate(records []trade.Record, mode trade.ViewMode) Report {
	r := Empty()
	if len(records) == 0 {
		return r
	}

	r.TradeCount = len(records)
	r.ChartSeries = make([]ChartPoint, 0, len(records))
	r.Transactions = make([]Transaction, 0, len(records))

	cumulative := decimal.Zero
	wins := 0

	for _, rec := range records {
		r.TotalProfit = r.TotalProfit.Add(rec.ActualProfit)
		r.TotalFees = r.TotalFees.Add(rec.TotalFees)

		if rec.ActualProfit.IsPositive() {
			wins++
		}

		cumulative = cumulative.Add(rec.ActualProfit)
		label := FormatDateLabel(rec.SellExecutedAt, mode)

		r.ChartSeries = append(r.ChartSeries, ChartPoint{
			DateLabel:        label,
			CumulativeProfit: cumulative,
			PeriodicProfit:   rec.ActualProfit,
		})

		r.Transactions = append(r.Transactions, Transaction{
			ID:         rec.ID,
			Symbol:     rec.Symbol,
			Exchange:   rec.Exchange,
			Strategy:   rec.Strategy,
			BuyPrice:   rec.BuyPrice,
			SellPrice:  rec.SellPrice,
			Quantity:   rec.Quantity,
			Profit:     rec.ActualProfit,
			Fees:       rec.TotalFees,
			ROI:        roi(rec),
			ExecutedAt: rec.SellExecutedAt,
			DateLabel:  label,
		})
	}

	r.RealizedGains = r.TotalProfit.Add(r.TotalFees)
	r.WinRate = float64(wins) / float64(len(records)) * 100

	return r
}

// roi computes the per-trade return percentage. A zero cost basis
// (malformed record) yields 0 rather than excluding the row, so the
// series-length invariant holds.
func roi(rec trade.Record) decimal.Decimal {
	basis := rec.CostBasis()
	if basis.IsZero() {
		return decimal.Zero
	}
	return rec.ActualProfit.Div(basis).Mul(hundred)
}

// FormatDateLabel renders a chart/table date label for the view mode.
func FormatDateLabel(t time.Time, mode trade.ViewMode) string {
	if mode == trade.ViewMonthly {
		return t.UTC().Format(monthlyLabelLayout)
	}
	return t.UTC().Format(yearlyLabelLayout)
}
