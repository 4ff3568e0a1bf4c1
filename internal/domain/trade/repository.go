package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for trade record data access
type Repository interface {
	// Create inserts a trade record (ingestion path)
	Create(ctx context.Context, rec *Record) error

	// GetCompletedInRange retrieves completed trades for a user within the
	// period window, narrowed by filter, ordered ascending by sell_executed_at.
	// All reporting-set filtering lives here; the aggregator trusts its input.
	GetCompletedInRange(ctx context.Context, userID uuid.UUID, period Period, filter Filter) ([]Record, error)

	// GetActiveUserIDs returns users with at least one completed trade since
	// the given time (used by the report cache warmer)
	GetActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}
