package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"plutus/internal/domain/audit"
	"plutus/pkg/clickhouse"
	"plutus/pkg/errors"
)

// Compile-time check
var _ audit.Repository = (*AuditRepository)(nil)

// AuditRepository implements audit.Repository using ClickHouse. Export
// events go through a batch writer; single-row inserts are pathological
// for ClickHouse and the audit log tolerates a few seconds of delay.
type AuditRepository struct {
	conn   driver.Conn
	writer *clickhouse.BatchWriter
}

// NewAuditRepository creates a new export audit repository
func NewAuditRepository(conn driver.Conn) *AuditRepository {
	r := &AuditRepository{conn: conn}

	r.writer = clickhouse.NewBatchWriter(clickhouse.BatchWriterConfig{
		FlushFunc:    r.flushBatch,
		TableName:    "export_events",
		MaxBatchSize: 500,
		MaxAge:       5 * time.Second,
	})

	return r
}

// Start begins the background batch flush loop
func (r *AuditRepository) Start(ctx context.Context) {
	r.writer.Start(ctx)
}

// Stop flushes pending events and stops the writer
func (r *AuditRepository) Stop(ctx context.Context) error {
	return r.writer.Stop(ctx)
}

// RecordExport buffers one export event for the next batch flush
func (r *AuditRepository) RecordExport(ctx context.Context, event *audit.ExportEvent) error {
	return r.writer.Add(ctx, event)
}

func (r *AuditRepository) flushBatch(ctx context.Context, items []interface{}) error {
	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO export_events (
			id, user_id, format, view_mode, period_label,
			trade_count, size_bytes, duration_ms, succeeded, created_at
		)`)
	if err != nil {
		return err
	}

	for _, item := range items {
		event, ok := item.(*audit.ExportEvent)
		if !ok {
			return errors.Newf("unexpected batch item type %T", item)
		}

		err := batch.Append(
			event.ID, event.UserID, event.Format, event.ViewMode, event.PeriodLabel,
			event.TradeCount, event.SizeBytes, event.DurationMs, event.Succeeded, event.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

// CountExportsSince returns how many exports the user performed since the
// given time
func (r *AuditRepository) CountExportsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	query := `
		SELECT count() FROM export_events
		WHERE user_id = $1 AND created_at >= $2`

	var count uint64
	row := r.conn.QueryRow(ctx, query, userID, since)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}

	return int64(count), nil
}
