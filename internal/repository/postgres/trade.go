package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"plutus/internal/domain/trade"
	"plutus/pkg/errors"
)

// Compile-time check
var _ trade.Repository = (*TradeRepository)(nil)

// TradeRepository implements trade.Repository using sqlx
type TradeRepository struct {
	db DBTX
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db DBTX) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create inserts a trade record
func (r *TradeRepository) Create(ctx context.Context, rec *trade.Record) error {
	query := `
		INSERT INTO trade_records (
			id, user_id, symbol, exchange, strategy,
			buy_price, sell_price, quantity,
			actual_profit, total_fees,
			status, sell_executed_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.Symbol, rec.Exchange, rec.Strategy,
		rec.BuyPrice, rec.SellPrice, rec.Quantity,
		rec.ActualProfit, rec.TotalFees,
		rec.Status, rec.SellExecutedAt, rec.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errors.Wrapf(errors.ErrDuplicateRecord, "trade %s", rec.ID)
		}
		return err
	}

	return nil
}

// GetCompletedInRange retrieves completed trades inside the period window,
// narrowed by the active filter dimensions, oldest first.
func (r *TradeRepository) GetCompletedInRange(ctx context.Context, userID uuid.UUID, period trade.Period, filter trade.Filter) ([]trade.Record, error) {
	start, end := period.Range()

	query := `
		SELECT * FROM trade_records
		WHERE user_id = $1
		  AND status = $2
		  AND sell_executed_at BETWEEN $3 AND $4`
	args := []interface{}{userID, trade.StatusCompleted, start, end}

	if filter.HasExchange() {
		args = append(args, filter.Exchange)
		query += fmt.Sprintf(" AND exchange = $%d", len(args))
	}
	if filter.HasTradingPair() {
		args = append(args, filter.TradingPair)
		query += fmt.Sprintf(" AND symbol = $%d", len(args))
	}
	if filter.HasStrategy() {
		args = append(args, filter.Strategy)
		query += fmt.Sprintf(" AND strategy = $%d", len(args))
	}

	query += " ORDER BY sell_executed_at ASC"

	var records []trade.Record
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, err
	}

	return records, nil
}

// GetActiveUserIDs returns users with at least one completed trade since
// the given time
func (r *TradeRepository) GetActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT user_id FROM trade_records
		WHERE status = $1 AND sell_executed_at >= $2`

	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, trade.StatusCompleted, since); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []uuid.UUID{}, nil
		}
		return nil, err
	}

	return ids, nil
}
