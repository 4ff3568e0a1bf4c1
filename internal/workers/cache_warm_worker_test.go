package workers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"plutus/internal/domain/trade"
	"plutus/pkg/errors"
)

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

// MockWarmer is a mock for ReportWarmer
type MockWarmer struct {
	mock.Mock
}

func (m *MockWarmer) WarmCache(ctx context.Context, userID uuid.UUID, now time.Time) error {
	args := m.Called(ctx, userID, now)
	return args.Error(0)
}

func TestCacheWarmWorker_WarmsActiveUsers(t *testing.T) {
	repo := new(MockTradeRepository)
	warmer := new(MockWarmer)
	w := NewCacheWarmWorker(repo, warmer, time.Minute, 24*time.Hour, true)

	user1, user2 := uuid.New(), uuid.New()
	repo.On("GetActiveUserIDs", mock.Anything, mock.Anything).
		Return([]uuid.UUID{user1, user2}, nil)
	warmer.On("WarmCache", mock.Anything, user1, mock.Anything).Return(nil)
	warmer.On("WarmCache", mock.Anything, user2, mock.Anything).Return(nil)

	err := w.Run(context.Background())

	require.NoError(t, err)
	warmer.AssertNumberOfCalls(t, "WarmCache", 2)

	health := w.Health()
	assert.Equal(t, int64(1), health.RunCount)
	assert.Zero(t, health.ErrorCount)
}

func TestCacheWarmWorker_OneUserFailureDoesNotStopOthers(t *testing.T) {
	repo := new(MockTradeRepository)
	warmer := new(MockWarmer)
	w := NewCacheWarmWorker(repo, warmer, time.Minute, 24*time.Hour, true)

	user1, user2 := uuid.New(), uuid.New()
	repo.On("GetActiveUserIDs", mock.Anything, mock.Anything).
		Return([]uuid.UUID{user1, user2}, nil)
	warmer.On("WarmCache", mock.Anything, user1, mock.Anything).
		Return(errors.New("redis down"))
	warmer.On("WarmCache", mock.Anything, user2, mock.Anything).Return(nil)

	err := w.Run(context.Background())

	require.NoError(t, err)
	warmer.AssertNumberOfCalls(t, "WarmCache", 2)
}

func TestCacheWarmWorker_FetchFailure(t *testing.T) {
	repo := new(MockTradeRepository)
	warmer := new(MockWarmer)
	w := NewCacheWarmWorker(repo, warmer, time.Minute, 24*time.Hour, true)

	repo.On("GetActiveUserIDs", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	err := w.Run(context.Background())

	assert.Error(t, err)
	warmer.AssertNotCalled(t, "WarmCache", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, int64(1), w.Health().ErrorCount)
}
