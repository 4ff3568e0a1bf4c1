package report

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"plutus/internal/domain/audit"
	"plutus/internal/domain/prefs"
	"plutus/internal/domain/report"
	"plutus/internal/domain/trade"
	"plutus/internal/export"
	"plutus/internal/metrics"
	"plutus/pkg/errors"
	"plutus/pkg/logger"
)

// Cache memoizes computed reports keyed by the full request shape
type Cache interface {
	Get(ctx context.Context, userID uuid.UUID, period trade.Period, filter trade.Filter) (*report.Report, error)
	Set(ctx context.Context, userID uuid.UUID, period trade.Period, filter trade.Filter, r *report.Report) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// ExportResult is a rendered artifact ready for download
type ExportResult struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Service computes P&L reports: fetch completed trades, aggregate, cache.
// A per-user generation counter guards the fetch/cache race: when a newer
// request for the same user starts mid-computation, the older result is
// still served to its own caller but never written to the cache.
type Service struct {
	trades    trade.Repository
	prefsRepo prefs.Repository
	audits    audit.Repository
	cache     Cache
	renderers export.Registry
	log       *logger.Logger

	mu          sync.Mutex
	generations map[uuid.UUID]uint64
}

// NewService creates a new report service
func NewService(
	trades trade.Repository,
	prefsRepo prefs.Repository,
	audits audit.Repository,
	cache Cache,
	renderers export.Registry,
	log *logger.Logger,
) *Service {
	return &Service{
		trades:      trades,
		prefsRepo:   prefsRepo,
		audits:      audits,
		cache:       cache,
		renderers:   renderers,
		log:         log.With("service", "report"),
		generations: make(map[uuid.UUID]uint64),
	}
}

// GetReport returns the P&L report for one user, period and filter.
// A failed store fetch yields an empty report flagged FetchFailed, not an
// error: the caller renders zeros plus an error banner.
func (s *Service) GetReport(ctx context.Context, userID uuid.UUID, period trade.Period, filter trade.Filter) (*report.Report, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	if cached, err := s.cache.Get(ctx, userID, period, filter); err == nil {
		metrics.RecordCacheLookup("hit")
		return cached, nil
	} else if !errors.Is(err, errors.ErrNotFound) {
		metrics.RecordCacheLookup("error")
		s.log.Warnw("Report cache lookup failed", "user_id", userID, "error", err)
	} else {
		metrics.RecordCacheLookup("miss")
	}

	gen := s.nextGeneration(userID)
	start := time.Now()

	records, err := s.trades.GetCompletedInRange(ctx, userID, period, filter)
	if err != nil {
		s.log.Errorw("Trade fetch failed, serving empty report",
			"user_id", userID, "period", period.Label(), "error", err)
		metrics.RecordReport(period.Mode.String(), 0, time.Since(start), "fetch_failed")

		r := report.Empty()
		r.FetchFailed = true
		return &r, nil
	}

	result := report.Aggregate(records, period.Mode)

	if !s.isCurrentGeneration(userID, gen) {
		// A newer request superseded this one; keep its result out of
		// the cache so the latest selection wins.
		metrics.RecordReport(period.Mode.String(), result.TradeCount, time.Since(start), "stale")
		return &result, nil
	}

	if err := s.cache.Set(ctx, userID, period, filter, &result); err != nil {
		s.log.Warnw("Report cache write failed", "user_id", userID, "error", err)
	}

	metrics.RecordReport(period.Mode.String(), result.TradeCount, time.Since(start), "success")
	return &result, nil
}

// Export renders the report for download and records the audit event.
func (s *Service) Export(ctx context.Context, userID uuid.UUID, period trade.Period, filter trade.Filter, format export.Format) (*ExportResult, error) {
	renderer, err := s.renderers.Get(format)
	if err != nil {
		return nil, err
	}

	r, err := s.GetReport(ctx, userID, period, filter)
	if err != nil {
		return nil, err
	}
	if r.FetchFailed {
		return nil, errors.Wrap(errors.ErrFetchFailed, "cannot export: trade fetch failed")
	}

	start := time.Now()
	data, err := renderer.Render(ctx, r, period)
	duration := time.Since(start)

	metrics.RecordExport(string(format), len(data), duration, err)
	s.recordAudit(ctx, userID, period, format, r.TradeCount, len(data), duration, err == nil)

	if err != nil {
		return nil, errors.Wrapf(err, "failed to render %s export", format)
	}

	s.log.Infow("Report exported",
		"user_id", userID,
		"format", format,
		"period", period.Label(),
		"trades", r.TradeCount,
		"bytes", len(data),
	)

	return &ExportResult{
		Data:        data,
		Filename:    export.Filename(period, format),
		ContentType: format.ContentType(),
	}, nil
}

// GetPreferences returns the stored view selection, or defaults when the
// user has never saved one.
func (s *Service) GetPreferences(ctx context.Context, userID uuid.UUID) (*prefs.Preferences, error) {
	p, err := s.prefsRepo.Get(ctx, userID)
	if errors.Is(err, errors.ErrNotFound) {
		d := prefs.Default(userID, time.Now())
		return &d, nil
	}
	if err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		s.log.Warnw("Stored preferences invalid, falling back to defaults",
			"user_id", userID, "error", err)
		d := prefs.Default(userID, time.Now())
		return &d, nil
	}

	return p, nil
}

// SavePreferences persists the user's view selection
func (s *Service) SavePreferences(ctx context.Context, p *prefs.Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.prefsRepo.Save(ctx, p); err != nil {
		return errors.Wrap(err, "failed to save report preferences")
	}

	return nil
}

// InvalidateUser drops cached reports after new trades land for the user
func (s *Service) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warnw("Report cache invalidation failed", "user_id", userID, "error", err)
	}
}

// WarmCache precomputes the current-month report so the first page load
// after login hits the cache.
func (s *Service) WarmCache(ctx context.Context, userID uuid.UUID, now time.Time) error {
	period := trade.CurrentMonth(now)
	_, err := s.GetReport(ctx, userID, period, trade.Filter{})
	return err
}

func (s *Service) recordAudit(ctx context.Context, userID uuid.UUID, period trade.Period, format export.Format, tradeCount, size int, duration time.Duration, succeeded bool) {
	event := &audit.ExportEvent{
		ID:          uuid.New(),
		UserID:      userID,
		Format:      string(format),
		ViewMode:    period.Mode.String(),
		PeriodLabel: period.Label(),
		TradeCount:  tradeCount,
		SizeBytes:   int64(size),
		DurationMs:  duration.Milliseconds(),
		Succeeded:   succeeded,
		CreatedAt:   time.Now().UTC(),
	}

	// Audit is best effort: a ClickHouse hiccup never blocks the download
	if err := s.audits.RecordExport(ctx, event); err != nil {
		s.log.Warnw("Failed to record export audit event", "user_id", userID, "error", err)
	}
}

func (s *Service) nextGeneration(userID uuid.UUID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++
	return s.generations[userID]
}

func (s *Service) isCurrentGeneration(userID uuid.UUID, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID] == gen
}
