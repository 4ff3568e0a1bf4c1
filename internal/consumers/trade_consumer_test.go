package consumers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plutus/internal/domain/trade"
	"plutus/pkg/errors"
	"plutus/pkg/logger"
)

func testLogger() *logger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &logger.Logger{SugaredLogger: zapLogger.Sugar()}
}

// MockTradeRepository is a mock for trade.Repository
type MockTradeRepository struct {
	mock.Mock
}

func (m *MockTradeRepository) Create(ctx context.Context, rec *trade.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockTradeRepository) GetCompletedInRange(ctx context.Context, userID uuid.UUID, period trade.Period, filter trade.Filter) ([]trade.Record, error) {
	args := m.Called(ctx, userID, period, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Record), args.Error(1)
}

func (m *MockTradeRepository) GetActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockInvalidator is a mock for ReportInvalidator
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}

func newTestConsumer() (*TradeConsumer, *MockTradeRepository, *MockInvalidator) {
	repo := new(MockTradeRepository)
	inv := new(MockInvalidator)
	c := NewTradeConsumer(nil, repo, inv, testLogger())
	return c, repo, inv
}

func validEvent(tradeID, userID uuid.UUID) tradeClosedEvent {
	return tradeClosedEvent{
		TradeID:   tradeID.String(),
		UserID:    userID.String(),
		Symbol:    "BTC/USDT",
		Exchange:  "binance",
		Strategy:  "grid",
		BuyPrice:  "100.5",
		SellPrice: "110.25",
		Quantity:  "0.5",
		Profit:    "4.875",
		Fees:      "0.11",
		ClosedAt:  time.Date(2025, time.July, 2, 15, 30, 0, 0, time.UTC),
	}
}

func message(t *testing.T, event tradeClosedEvent) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Topic: "trades.closed", Value: data}
}

func TestTradeConsumer_StoresRecord(t *testing.T) {
	c, repo, inv := newTestConsumer()
	tradeID := uuid.New()
	userID := uuid.New()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(rec *trade.Record) bool {
		return rec.ID == tradeID &&
			rec.UserID == userID &&
			rec.Status == trade.StatusCompleted &&
			rec.ActualProfit.String() == "4.875" &&
			rec.SellExecutedAt.Equal(time.Date(2025, time.July, 2, 15, 30, 0, 0, time.UTC))
	})).Return(nil)
	inv.On("InvalidateUser", mock.Anything, userID).Return()

	err := c.handleMessage(context.Background(), message(t, validEvent(tradeID, userID)))

	require.NoError(t, err)
	repo.AssertExpectations(t)
	inv.AssertExpectations(t)
}

func TestTradeConsumer_SkipsMalformed(t *testing.T) {
	c, repo, inv := newTestConsumer()

	cases := map[string]func(*tradeClosedEvent){
		"bad trade id":     func(e *tradeClosedEvent) { e.TradeID = "not-a-uuid" },
		"bad user id":      func(e *tradeClosedEvent) { e.UserID = "" },
		"missing symbol":   func(e *tradeClosedEvent) { e.Symbol = "" },
		"bad profit":       func(e *tradeClosedEvent) { e.Profit = "lots" },
		"missing closed_at": func(e *tradeClosedEvent) { e.ClosedAt = time.Time{} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			event := validEvent(uuid.New(), uuid.New())
			mutate(&event)

			err := c.handleMessage(context.Background(), message(t, event))

			// Skipped, not retried
			assert.NoError(t, err)
		})
	}

	t.Run("not json", func(t *testing.T) {
		err := c.handleMessage(context.Background(), kafka.Message{
			Topic: "trades.closed", Value: []byte("not json"),
		})
		assert.NoError(t, err)
	})

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	inv.AssertNotCalled(t, "InvalidateUser", mock.Anything, mock.Anything)
}

func TestTradeConsumer_DuplicateIsNotAnError(t *testing.T) {
	c, repo, inv := newTestConsumer()

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.ErrDuplicateRecord)

	err := c.handleMessage(context.Background(), message(t, validEvent(uuid.New(), uuid.New())))

	require.NoError(t, err)
	inv.AssertNotCalled(t, "InvalidateUser", mock.Anything, mock.Anything)
}

func TestTradeConsumer_StoreErrorPropagates(t *testing.T) {
	c, repo, _ := newTestConsumer()

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	err := c.handleMessage(context.Background(), message(t, validEvent(uuid.New(), uuid.New())))

	assert.Error(t, err)
}
