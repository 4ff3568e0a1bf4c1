package consumers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	kafkaadapter "plutus/internal/adapters/kafka"
	"plutus/internal/domain/trade"
	"plutus/internal/metrics"
	"plutus/pkg/errors"
	"plutus/pkg/logger"
)

// ReportInvalidator drops cached reports after new trades land
type ReportInvalidator interface {
	InvalidateUser(ctx context.Context, userID uuid.UUID)
}

// tradeClosedEvent is the wire format on trades.closed. Monetary fields
// travel as strings to keep exact decimal values.
type tradeClosedEvent struct {
	TradeID  string `json:"trade_id"`
	UserID   string `json:"user_id"`
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
	Strategy string `json:"strategy"`

	BuyPrice  string `json:"buy_price"`
	SellPrice string `json:"sell_price"`
	Quantity  string `json:"quantity"`
	Profit    string `json:"profit"`
	Fees      string `json:"fees"`

	ClosedAt time.Time `json:"closed_at"`
}

// TradeConsumer reads closed-trade events from Kafka and stores them as
// completed trade records. Malformed messages are logged and skipped, a
// poison message must never wedge the partition.
type TradeConsumer struct {
	consumer    *kafkaadapter.Consumer
	trades      trade.Repository
	invalidator ReportInvalidator
	log         *logger.Logger
}

// NewTradeConsumer creates a new trade ingestion consumer
func NewTradeConsumer(
	consumer *kafkaadapter.Consumer,
	trades trade.Repository,
	invalidator ReportInvalidator,
	log *logger.Logger,
) *TradeConsumer {
	return &TradeConsumer{
		consumer:    consumer,
		trades:      trades,
		invalidator: invalidator,
		log:         log.With("consumer", "trade"),
	}
}

// Start begins consuming closed-trade events until ctx is cancelled
func (c *TradeConsumer) Start(ctx context.Context) error {
	c.log.Info("Starting trade ingestion consumer...")

	defer func() {
		if err := c.consumer.Close(); err != nil {
			c.log.Error("Failed to close trade consumer", "error", err)
		}
	}()

	err := c.consumer.Consume(ctx, c.handleMessage)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *TradeConsumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	rec, err := c.parseEvent(msg.Value)
	if err != nil {
		// Skip, don't retry: the payload will not get better
		metrics.RecordIngestion(msg.Topic, "malformed")
		c.log.Warnw("Skipping malformed trade event",
			"topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}

	if err := c.trades.Create(ctx, rec); err != nil {
		if errors.Is(err, errors.ErrDuplicateRecord) {
			// Redelivery after a rebalance, already stored
			metrics.RecordIngestion(msg.Topic, "duplicate")
			return nil
		}
		metrics.RecordIngestion(msg.Topic, "error")
		return errors.Wrapf(err, "failed to store trade %s", rec.ID)
	}

	metrics.RecordIngestion(msg.Topic, "stored")
	c.invalidator.InvalidateUser(ctx, rec.UserID)

	c.log.Debugw("Trade record ingested",
		"trade_id", rec.ID, "user_id", rec.UserID, "symbol", rec.Symbol)

	return nil
}

func (c *TradeConsumer) parseEvent(data []byte) (*trade.Record, error) {
	var event tradeClosedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedRecord, err.Error())
	}

	tradeID, err := uuid.Parse(event.TradeID)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedRecord, "bad trade_id %q", event.TradeID)
	}
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedRecord, "bad user_id %q", event.UserID)
	}

	if event.Symbol == "" || event.Exchange == "" {
		return nil, errors.Wrap(errors.ErrMalformedRecord, "missing symbol or exchange")
	}
	if event.ClosedAt.IsZero() {
		return nil, errors.Wrap(errors.ErrMalformedRecord, "missing closed_at")
	}

	buyPrice, err := parseDecimal("buy_price", event.BuyPrice)
	if err != nil {
		return nil, err
	}
	sellPrice, err := parseDecimal("sell_price", event.SellPrice)
	if err != nil {
		return nil, err
	}
	quantity, err := parseDecimal("quantity", event.Quantity)
	if err != nil {
		return nil, err
	}
	profit, err := parseDecimal("profit", event.Profit)
	if err != nil {
		return nil, err
	}
	fees, err := parseDecimal("fees", event.Fees)
	if err != nil {
		return nil, err
	}

	return &trade.Record{
		ID:             tradeID,
		UserID:         userID,
		Symbol:         event.Symbol,
		Exchange:       event.Exchange,
		Strategy:       event.Strategy,
		BuyPrice:       buyPrice,
		SellPrice:      sellPrice,
		Quantity:       quantity,
		ActualProfit:   profit,
		TotalFees:      fees,
		Status:         trade.StatusCompleted,
		SellExecutedAt: event.ClosedAt.UTC(),
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, errors.Wrapf(errors.ErrMalformedRecord, "bad %s %q", field, value)
	}
	return d, nil
}
