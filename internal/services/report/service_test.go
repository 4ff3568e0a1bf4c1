package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plutus/internal/domain/audit"
	"plutus/internal/domain/prefs"
	"plutus/internal/domain/report"
	"plutus/internal/domain/trade"
	"plutus/internal/export"
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

// MockPrefsRepository is a mock for prefs.Repository
type MockPrefsRepository struct {
	mock.Mock
}

func (m *MockPrefsRepository) Get(ctx context.Context, userID uuid.UUID) (*prefs.Preferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prefs.Preferences), args.Error(1)
}

func (m *MockPrefsRepository) Save(ctx context.Context, p *prefs.Preferences) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPrefsRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockAuditRepository is a mock for audit.Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) RecordExport(ctx context.Context, event *audit.ExportEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditRepository) CountExportsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, userID, since)
	return args.Get(0).(int64), args.Error(1)
}

// MockCache is a mock for Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, userID uuid.UUID, period trade.Period, filter trade.Filter) (*report.Report, error) {
	args := m.Called(ctx, userID, period, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, userID uuid.UUID, period trade.Period, filter trade.Filter, r *report.Report) error {
	args := m.Called(ctx, userID, period, filter, r)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type serviceMocks struct {
	trades *MockTradeRepository
	prefs  *MockPrefsRepository
	audits *MockAuditRepository
	cache  *MockCache
}

func newTestService() (*Service, *serviceMocks) {
	m := &serviceMocks{
		trades: new(MockTradeRepository),
		prefs:  new(MockPrefsRepository),
		audits: new(MockAuditRepository),
		cache:  new(MockCache),
	}
	svc := NewService(m.trades, m.prefs, m.audits, m.cache, export.NewRegistry(0), testLogger())
	return svc, m
}

func completedTrade(userID uuid.UUID, profit string, at time.Time) trade.Record {
	return trade.Record{
		ID:             uuid.New(),
		UserID:         userID,
		Symbol:         "BTC/USDT",
		Exchange:       "binance",
		BuyPrice:       decimal.NewFromInt(100),
		SellPrice:      decimal.NewFromInt(110),
		Quantity:       decimal.NewFromInt(1),
		ActualProfit:   decimal.RequireFromString(profit),
		TotalFees:      decimal.NewFromInt(1),
		Status:         trade.StatusCompleted,
		SellExecutedAt: at,
	}
}

func july2025() trade.Period {
	return trade.Period{Mode: trade.ViewMonthly, Year: 2025, Month: time.July}
}

func TestService_GetReport_CacheHit(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()
	period := july2025()

	cached := report.Empty()
	cached.TradeCount = 7

	m.cache.On("Get", mock.Anything, userID, period, trade.Filter{}).Return(&cached, nil)

	result, err := svc.GetReport(context.Background(), userID, period, trade.Filter{})

	require.NoError(t, err)
	assert.Equal(t, 7, result.TradeCount)
	m.trades.AssertNotCalled(t, "GetCompletedInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.cache.AssertExpectations(t)
}

func TestService_GetReport_CacheMiss(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()
	period := july2025()

	records := []trade.Record{
		completedTrade(userID, "100", time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)),
		completedTrade(userID, "-40", time.Date(2025, time.July, 2, 0, 0, 0, 0, time.UTC)),
	}

	m.cache.On("Get", mock.Anything, userID, period, trade.Filter{}).
		Return(nil, errors.ErrNotFound)
	m.trades.On("GetCompletedInRange", mock.Anything, userID, period, trade.Filter{}).
		Return(records, nil)
	m.cache.On("Set", mock.Anything, userID, period, trade.Filter{}, mock.Anything).
		Return(nil)

	result, err := svc.GetReport(context.Background(), userID, period, trade.Filter{})

	require.NoError(t, err)
	assert.Equal(t, "60", result.TotalProfit.String())
	assert.Equal(t, 2, result.TradeCount)
	assert.False(t, result.FetchFailed)
	m.trades.AssertExpectations(t)
	m.cache.AssertExpectations(t)
}

func TestService_GetReport_FetchFailure(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()
	period := july2025()

	m.cache.On("Get", mock.Anything, userID, period, trade.Filter{}).
		Return(nil, errors.ErrNotFound)
	m.trades.On("GetCompletedInRange", mock.Anything, userID, period, trade.Filter{}).
		Return(nil, errors.New("connection refused"))

	result, err := svc.GetReport(context.Background(), userID, period, trade.Filter{})

	require.NoError(t, err)
	assert.True(t, result.FetchFailed)
	assert.Zero(t, result.TradeCount)
	assert.True(t, result.TotalProfit.IsZero())
	m.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_GetReport_InvalidPeriod(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetReport(context.Background(), uuid.New(),
		trade.Period{Mode: "weekly", Year: 2025}, trade.Filter{})

	assert.ErrorIs(t, err, errors.ErrInvalidPeriod)
}

func TestService_GetReport_SupersededRequestNotCached(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()
	period := july2025()
	newer := trade.Period{Mode: trade.ViewMonthly, Year: 2025, Month: time.June}

	m.cache.On("Get", mock.Anything, userID, mock.Anything, mock.Anything).
		Return(nil, errors.ErrNotFound)
	m.trades.On("GetCompletedInRange", mock.Anything, userID, newer, trade.Filter{}).
		Return([]trade.Record{}, nil)
	m.cache.On("Set", mock.Anything, userID, newer, trade.Filter{}, mock.Anything).
		Return(nil)

	// While the July fetch is in flight, a June request for the same user
	// starts and finishes, advancing the generation.
	m.trades.On("GetCompletedInRange", mock.Anything, userID, period, trade.Filter{}).
		Run(func(_ mock.Arguments) {
			_, err := svc.GetReport(context.Background(), userID, newer, trade.Filter{})
			require.NoError(t, err)
		}).
		Return([]trade.Record{completedTrade(userID, "10", time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC))}, nil)

	result, err := svc.GetReport(context.Background(), userID, period, trade.Filter{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.TradeCount) // caller still gets its answer

	// Only the June (newer) result reached the cache
	m.cache.AssertNumberOfCalls(t, "Set", 1)
}

func TestService_Export_CSV(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()
	period := july2025()

	records := []trade.Record{
		completedTrade(userID, "100", time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)),
	}

	m.cache.On("Get", mock.Anything, userID, period, trade.Filter{}).
		Return(nil, errors.ErrNotFound)
	m.trades.On("GetCompletedInRange", mock.Anything, userID, period, trade.Filter{}).
		Return(records, nil)
	m.cache.On("Set", mock.Anything, userID, period, trade.Filter{}, mock.Anything).
		Return(nil)
	m.audits.On("RecordExport", mock.Anything, mock.MatchedBy(func(e *audit.ExportEvent) bool {
		return e.UserID == userID && e.Format == "csv" && e.Succeeded && e.TradeCount == 1
	})).Return(nil)

	result, err := svc.Export(context.Background(), userID, period, trade.Filter{}, export.FormatCSV)

	require.NoError(t, err)
	assert.Equal(t, "pnl-report-monthly-2025-07.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.NotEmpty(t, result.Data)
	m.audits.AssertExpectations(t)
}

func TestService_Export_FetchFailed(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()
	period := july2025()

	m.cache.On("Get", mock.Anything, userID, period, trade.Filter{}).
		Return(nil, errors.ErrNotFound)
	m.trades.On("GetCompletedInRange", mock.Anything, userID, period, trade.Filter{}).
		Return(nil, errors.New("timeout"))

	_, err := svc.Export(context.Background(), userID, period, trade.Filter{}, export.FormatCSV)

	assert.ErrorIs(t, err, errors.ErrFetchFailed)
	m.audits.AssertNotCalled(t, "RecordExport", mock.Anything, mock.Anything)
}

func TestService_Export_UnsupportedFormat(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Export(context.Background(), uuid.New(), july2025(), trade.Filter{}, export.Format("xlsx"))

	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
}

func TestService_Export_AuditFailureDoesNotBlock(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()
	period := july2025()

	m.cache.On("Get", mock.Anything, userID, period, trade.Filter{}).
		Return(nil, errors.ErrNotFound)
	m.trades.On("GetCompletedInRange", mock.Anything, userID, period, trade.Filter{}).
		Return([]trade.Record{}, nil)
	m.cache.On("Set", mock.Anything, userID, period, trade.Filter{}, mock.Anything).
		Return(nil)
	m.audits.On("RecordExport", mock.Anything, mock.Anything).
		Return(errors.New("clickhouse down"))

	result, err := svc.Export(context.Background(), userID, period, trade.Filter{}, export.FormatCSV)

	require.NoError(t, err)
	assert.NotEmpty(t, result.Data)
}

func TestService_GetPreferences_Defaults(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()

	m.prefs.On("Get", mock.Anything, userID).Return(nil, errors.ErrNotFound)

	p, err := svc.GetPreferences(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, trade.ViewMonthly, p.ViewMode)
	assert.Equal(t, trade.FilterAll, p.Exchange)
	assert.NoError(t, p.Validate())
}

func TestService_GetPreferences_Stored(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()

	stored := &prefs.Preferences{
		UserID:      userID,
		ViewMode:    trade.ViewYearly,
		Year:        2024,
		Exchange:    "kraken",
		TradingPair: trade.FilterAll,
		Strategy:    trade.FilterAll,
	}
	m.prefs.On("Get", mock.Anything, userID).Return(stored, nil)

	p, err := svc.GetPreferences(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, trade.ViewYearly, p.ViewMode)
	assert.Equal(t, "kraken", p.Exchange)
}

func TestService_SavePreferences_Invalid(t *testing.T) {
	svc, m := newTestService()

	err := svc.SavePreferences(context.Background(), &prefs.Preferences{
		UserID:   uuid.New(),
		ViewMode: "weekly",
		Year:     2025,
	})

	assert.ErrorIs(t, err, errors.ErrInvalidPeriod)
	m.prefs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_WarmCache(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()
	now := time.Date(2025, time.July, 15, 10, 0, 0, 0, time.UTC)
	period := july2025()

	m.cache.On("Get", mock.Anything, userID, period, trade.Filter{}).
		Return(nil, errors.ErrNotFound)
	m.trades.On("GetCompletedInRange", mock.Anything, userID, period, trade.Filter{}).
		Return([]trade.Record{}, nil)
	m.cache.On("Set", mock.Anything, userID, period, trade.Filter{}, mock.Anything).
		Return(nil)

	err := svc.WarmCache(context.Background(), userID, now)

	require.NoError(t, err)
	m.cache.AssertExpectations(t)
}
