package bootstrap

import (
	"context"
	"sync"
	"time"

	"plutus/pkg/errors"
	"plutus/pkg/logger"
)

// Lifecycle manages graceful shutdown of the container
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 60 * time.Second,
	}
}

// Shutdown stops components in dependency order: stop accepting requests,
// stop workers, unblock the consumer, flush telemetry, close stores last.
func (l *Lifecycle) Shutdown(c *Container, wg *sync.WaitGroup, log *logger.Logger) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	log.Info("[1/7] Stopping HTTP server...")
	httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 5*time.Second)
	if err := c.HTTPServer.Shutdown(httpCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}
	httpCancel()

	log.Info("[2/7] Stopping background workers...")
	if err := c.WorkerScheduler.Stop(); err != nil {
		log.Error("Workers shutdown failed", "error", err)
	}

	// The consumer goroutine exits via context cancellation; give it time
	// to finish the message in flight.
	log.Info("[3/7] Waiting for consumer goroutines...")
	l.waitForGoroutines(wg, 10*time.Second, log)

	log.Info("[4/7] Flushing export audit events...")
	if err := c.AuditRepo.Stop(shutdownCtx); err != nil {
		log.Error("Audit writer shutdown failed", "error", err)
	}

	log.Info("[5/7] Flushing error tracker...")
	l.flushErrorTracker(shutdownCtx, c.ErrorTracker, log)

	log.Info("[6/7] Syncing logs...")
	if err := logger.Sync(); err != nil {
		log.Warn("Log sync completed with warnings")
	}

	log.Info("[7/7] Closing database connections...")
	l.closeStores(c, log)

	log.Info("Graceful shutdown complete")
}

func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("All goroutines finished")
	case <-time.After(timeout):
		log.Warn("Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Error("Error tracker flush failed", "error", err)
	}
}

func (l *Lifecycle) closeStores(c *Container, log *logger.Logger) {
	var closeErrors []error

	if c.PG != nil {
		if err := c.PG.Close(); err != nil {
			closeErrors = append(closeErrors, errors.Wrap(err, "postgres"))
		}
	}
	if c.CH != nil {
		if err := c.CH.Close(); err != nil {
			closeErrors = append(closeErrors, errors.Wrap(err, "clickhouse"))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			closeErrors = append(closeErrors, errors.Wrap(err, "redis"))
		}
	}

	if len(closeErrors) > 0 {
		log.Error("Store close errors", "errors", closeErrors)
	}
}
