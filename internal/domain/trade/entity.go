package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record represents a completed round-trip trade as persisted in the
// trading operations table. Records are written once by the ingestion
// consumer and read-only for the reporting pipeline.
type Record struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id"`

	Symbol   string `db:"symbol"`   // trading pair, e.g. "BTC/USDT"
	Exchange string `db:"exchange"` // venue name
	Strategy string `db:"strategy"`

	// Prices & size
	BuyPrice  decimal.Decimal `db:"buy_price"`
	SellPrice decimal.Decimal `db:"sell_price"`
	Quantity  decimal.Decimal `db:"quantity"`

	// Realized outcome in quote currency
	ActualProfit decimal.Decimal `db:"actual_profit"`
	TotalFees    decimal.Decimal `db:"total_fees"`

	Status Status `db:"status"`

	// SellExecutedAt defines chronological ordering and the period filter boundary
	SellExecutedAt time.Time `db:"sell_executed_at"`
	CreatedAt      time.Time `db:"created_at"`
}

// CostBasis returns buy price * quantity, the ROI denominator.
func (r *Record) CostBasis() decimal.Decimal {
	return r.BuyPrice.Mul(r.Quantity)
}

// Status defines trade lifecycle status
type Status string

const (
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// Valid checks if the status is valid
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// String returns string representation
func (s Status) String() string {
	return string(s)
}

// IsCompleted reports whether the trade is eligible for reporting
func (s Status) IsCompleted() bool {
	return s == StatusCompleted
}
