package reports

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ExportLimiter throttles export requests per user. Rendering a PDF is the
// most expensive request the service handles; an unthrottled loop from one
// client must not crowd out everyone else.
type ExportLimiter struct {
	mu       sync.Mutex
	limiters map[uuid.UUID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewExportLimiter creates a per-user limiter allowing ratePerMinute
// requests with a small burst.
func NewExportLimiter(ratePerMinute int) *ExportLimiter {
	if ratePerMinute < 1 {
		ratePerMinute = 1
	}
	return &ExportLimiter{
		limiters: make(map[uuid.UUID]*rate.Limiter),
		limit:    rate.Limit(float64(ratePerMinute) / 60.0),
		burst:    ratePerMinute,
	}
}

// Allow reports whether the user may export right now
func (l *ExportLimiter) Allow(userID uuid.UUID) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
