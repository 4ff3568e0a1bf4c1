package workers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"plutus/internal/domain/trade"
)

// ReportWarmer precomputes one user's current-month report
type ReportWarmer interface {
	WarmCache(ctx context.Context, userID uuid.UUID, now time.Time) error
}

// CacheWarmWorker precomputes current-month reports for recently active
// users so their first page load after login is a cache hit.
type CacheWarmWorker struct {
	*BaseWorker
	trades       trade.Repository
	warmer       ReportWarmer
	activeWindow time.Duration
}

// NewCacheWarmWorker creates a new report cache warm worker
func NewCacheWarmWorker(trades trade.Repository, warmer ReportWarmer, interval, activeWindow time.Duration, enabled bool) *CacheWarmWorker {
	return &CacheWarmWorker{
		BaseWorker:   NewBaseWorker("cache_warm", interval, enabled),
		trades:       trades,
		warmer:       warmer,
		activeWindow: activeWindow,
	}
}

// Run warms the report cache for every recently active user
func (w *CacheWarmWorker) Run(ctx context.Context) error {
	start := time.Now()

	userIDs, err := w.trades.GetActiveUserIDs(ctx, start.Add(-w.activeWindow))
	if err != nil {
		w.RecordError(err, time.Since(start))
		return err
	}

	warmed := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := w.warmer.WarmCache(ctx, userID, start); err != nil {
			// One user failing must not starve the rest
			w.Log().Warnw("Failed to warm report cache", "user_id", userID, "error", err)
			continue
		}
		warmed++
	}

	w.RecordRun(time.Since(start))
	w.Log().Infow("Report cache warm cycle finished",
		"active_users", len(userIDs), "warmed", warmed, "duration", time.Since(start))

	return nil
}
