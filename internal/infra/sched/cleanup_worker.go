package sched

import (
	"context"
	"time"

	"pdf-ocr-service/internal/infra/metrics"
	"pdf-ocr-service/internal/usecase"

	"github.com/rs/zerolog"
)

// CleanupWorker runs the retention sweep on a fixed interval.
type CleanupWorker struct {
	cleanup  usecase.CleanupUseCase
	interval time.Duration
	log      *zerolog.Logger
}

func NewCleanupWorker(cleanup usecase.CleanupUseCase, interval time.Duration, logger *zerolog.Logger) *CleanupWorker {
	return &CleanupWorker{cleanup: cleanup, interval: interval, log: logger}
}

// Start blocks until ctx is cancelled. Sweep errors are logged and the
// loop keeps running; the next tick gets a fresh attempt.
func (w *CleanupWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("cleanup worker started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// One pass at startup so a restarted service does not wait a full
	// interval with an overdue backlog.
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("cleanup worker stopping")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *CleanupWorker) sweep(ctx context.Context) {
	cleaned, failed, err := w.cleanup.SweepExpired(ctx)
	if err != nil {
		metrics.IncSweepError()
		w.log.Error().Err(err).Msg("retention sweep failed")
		return
	}
	metrics.AddJobsReclaimed(cleaned)
	metrics.AddSweepErrors(failed)
	if cleaned > 0 || failed > 0 {
		w.log.Info().Int("cleaned", cleaned).Int("failed", failed).Msg("retention sweep finished")
	}
}
