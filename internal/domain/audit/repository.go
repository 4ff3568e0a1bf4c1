package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for export audit persistence
type Repository interface {
	// RecordExport appends one export event. Failures are logged, never
	// surfaced to the exporting user.
	RecordExport(ctx context.Context, event *ExportEvent) error

	// CountExportsSince returns the number of exports the user performed
	// since the given time (rate limit accounting)
	CountExportsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}
