package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"time"

	"plutus/internal/domain/report"
	"plutus/internal/domain/trade"
	"plutus/pkg/errors"
)

var csvHeader = []string{
	"date", "symbol", "exchange",
	"buy_price", "sell_price", "quantity",
	"profit", "roi",
}

// Compile-time check
var _ Renderer = (*CSVRenderer)(nil)

// CSVRenderer writes every transaction row, uncapped. Dates are RFC3339 so
// downstream spreadsheets and scripts parse them unambiguously.
type CSVRenderer struct{}

// NewCSVRenderer creates a new CSV renderer
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

// Render produces the CSV artifact
func (c *CSVRenderer) Render(_ context.Context, r *report.Report, _ trade.Period) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, errors.Wrap(err, "failed to write csv header")
	}

	for _, tx := range r.Transactions {
		row := []string{
			tx.ExecutedAt.UTC().Format(time.RFC3339),
			tx.Symbol,
			tx.Exchange,
			tx.BuyPrice.String(),
			tx.SellPrice.String(),
			tx.Quantity.String(),
			tx.Profit.String(),
			tx.ROI.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, errors.Wrap(err, "failed to write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush csv")
	}

	return buf.Bytes(), nil
}
