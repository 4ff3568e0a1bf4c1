package metrics

import (
	"context"
	"time"

	"plutus/pkg/logger"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// CustomCollector derives gauges from the data stores on each scrape
type CustomCollector struct {
	log        *logger.Logger
	postgres   *sqlx.DB
	clickhouse driver.Conn
	redis      *redis.Client

	totalTradeRecords *prometheus.Desc
	activeUsers       *prometheus.Desc
	exportsRecent     *prometheus.Desc
	cachedReports     *prometheus.Desc
}

// NewCustomCollector creates a new custom metrics collector
func NewCustomCollector(log *logger.Logger, postgres *sqlx.DB, clickhouse driver.Conn, redis *redis.Client) *CustomCollector {
	return &CustomCollector{
		log:        log,
		postgres:   postgres,
		clickhouse: clickhouse,
		redis:      redis,

		totalTradeRecords: prometheus.NewDesc(
			"plutus_total_trade_records",
			"Total number of stored trade records by status",
			[]string{"status"}, nil,
		),
		activeUsers: prometheus.NewDesc(
			"plutus_active_users_24h",
			"Users with at least one completed trade in the last 24h",
			nil, nil,
		),
		exportsRecent: prometheus.NewDesc(
			"plutus_exports_24h",
			"Export events recorded in the last 24h",
			nil, nil,
		),
		cachedReports: prometheus.NewDesc(
			"plutus_cached_reports",
			"Number of report cache entries currently in Redis",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CustomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalTradeRecords
	ch <- c.activeUsers
	ch <- c.exportsRecent
	ch <- c.cachedReports
}

// Collect implements prometheus.Collector
func (c *CustomCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.collectTradeRecords(ctx, ch)
	c.collectActiveUsers(ctx, ch)
	c.collectExports(ctx, ch)
	c.collectCachedReports(ctx, ch)
}

func (c *CustomCollector) collectTradeRecords(ctx context.Context, ch chan<- prometheus.Metric) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}

	err := c.postgres.SelectContext(ctx, &rows,
		"SELECT status, COUNT(*) as count FROM trade_records GROUP BY status")
	if err != nil {
		c.log.Error("Failed to collect trade record counts", "error", err)
		return
	}

	for _, row := range rows {
		ch <- prometheus.MustNewConstMetric(
			c.totalTradeRecords,
			prometheus.GaugeValue,
			float64(row.Count),
			row.Status,
		)
	}
}

func (c *CustomCollector) collectActiveUsers(ctx context.Context, ch chan<- prometheus.Metric) {
	var count int
	err := c.postgres.GetContext(ctx, &count,
		"SELECT COUNT(DISTINCT user_id) FROM trade_records WHERE sell_executed_at >= NOW() - INTERVAL '24 hours'")
	if err != nil {
		c.log.Error("Failed to collect active user count", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.activeUsers, prometheus.GaugeValue, float64(count))
}

func (c *CustomCollector) collectExports(ctx context.Context, ch chan<- prometheus.Metric) {
	var count uint64
	row := c.clickhouse.QueryRow(ctx,
		"SELECT count() FROM export_events WHERE created_at >= now() - INTERVAL 24 HOUR")
	if err := row.Scan(&count); err != nil {
		c.log.Error("Failed to collect export event count", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.exportsRecent, prometheus.GaugeValue, float64(count))
}

func (c *CustomCollector) collectCachedReports(ctx context.Context, ch chan<- prometheus.Metric) {
	var count float64

	iter := c.redis.Scan(ctx, 0, "report:*", 1000).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		c.log.Error("Failed to count cached reports", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.cachedReports, prometheus.GaugeValue, count)
}

// RegisterCollector registers the store-backed collector with the default
// Prometheus registry
func RegisterCollector(log *logger.Logger, postgres *sqlx.DB, clickhouse driver.Conn, redis *redis.Client) {
	prometheus.MustRegister(NewCustomCollector(log, postgres, clickhouse, redis))
}
