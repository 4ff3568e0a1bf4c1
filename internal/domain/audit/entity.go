package audit

import (
	"time"

	"github.com/google/uuid"
)

// ExportEvent is one row of the export audit log kept in ClickHouse.
// The log is append-only analytics data: who exported which period in
// which format, how large the artifact was and how long it took.
type ExportEvent struct {
	ID     uuid.UUID `ch:"id"`
	UserID uuid.UUID `ch:"user_id"`

	Format      string `ch:"format"` // "csv" or "pdf"
	ViewMode    string `ch:"view_mode"`
	PeriodLabel string `ch:"period_label"`

	TradeCount int   `ch:"trade_count"`
	SizeBytes  int64 `ch:"size_bytes"`
	DurationMs int64 `ch:"duration_ms"`

	// Succeeded is false when rendering failed after the request was accepted
	Succeeded bool `ch:"succeeded"`

	CreatedAt time.Time `ch:"created_at"`
}
