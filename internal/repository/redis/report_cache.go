package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"plutus/internal/domain/report"
	"plutus/internal/domain/trade"
	"plutus/pkg/errors"
)

// ReportCache memoizes computed reports for a short TTL. Keys encode the
// full request shape, so any filter change is a distinct entry.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a new report cache
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

// Get returns the cached report, or errors.ErrNotFound on a miss
func (c *ReportCache) Get(ctx context.Context, userID uuid.UUID, period trade.Period, filter trade.Filter) (*report.Report, error) {
	key := c.getKey(userID, period, filter)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "report cache miss: %s", key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get report from cache: %s", key)
	}

	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal cached report: %s", key)
	}

	return &r, nil
}

// Set stores a computed report. Failed-fetch placeholders are never
// cached; the caller enforces that.
func (c *ReportCache) Set(ctx context.Context, userID uuid.UUID, period trade.Period, filter trade.Filter, r *report.Report) error {
	key := c.getKey(userID, period, filter)

	data, err := json.Marshal(r)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal report for cache: %s", key)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to cache report: %s", key)
	}

	return nil
}

// Invalidate drops every cached report for a user. Called when new trades
// land so the next request recomputes.
func (c *ReportCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	pattern := fmt.Sprintf("report:%s:*", userID)

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrapf(err, "failed to scan report cache keys: user=%s", userID)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrapf(err, "failed to invalidate report cache: user=%s", userID)
	}

	return nil
}

func (c *ReportCache) getKey(userID uuid.UUID, period trade.Period, filter trade.Filter) string {
	return fmt.Sprintf("report:%s:%s:%d:%d:%s:%s:%s",
		userID, period.Mode, period.Year, int(period.Month),
		filter.Exchange, filter.TradingPair, filter.Strategy)
}
