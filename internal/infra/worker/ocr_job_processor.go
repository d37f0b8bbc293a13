package worker

import (
	"context"
	"fmt"
	"os"
	"time"

	"pdf-ocr-service/internal/domain"
	"pdf-ocr-service/internal/domain/model"
	"pdf-ocr-service/internal/domain/ports/adapter"
	"pdf-ocr-service/internal/domain/ports/repository"
	"pdf-ocr-service/internal/infra/logging"
	"pdf-ocr-service/internal/infra/metrics"
	"pdf-ocr-service/internal/usecase"

	"github.com/rs/zerolog"
)

// OCRJobProcessor drains pending jobs from the store and runs the
// conversion on a worker pool.
type OCRJobProcessor struct {
	jobs      repository.OCRJobRepository
	converter adapter.OCRConverter
	inspector adapter.PDFInspector
	cache     usecase.JobCache

	pollInterval time.Duration
	timeout      time.Duration
	log          *zerolog.Logger
}

func NewOCRJobProcessor(
	jobs repository.OCRJobRepository,
	converter adapter.OCRConverter,
	inspector adapter.PDFInspector,
	cache usecase.JobCache,
	pollInterval, timeout time.Duration,
	logger *zerolog.Logger,
) *OCRJobProcessor {
	return &OCRJobProcessor{
		jobs:         jobs,
		converter:    converter,
		inspector:    inspector,
		cache:        cache,
		pollInterval: pollInterval,
		timeout:      timeout,
		log:          logger,
	}
}

// Start runs the claim loop until ctx is cancelled. When the pool is
// saturated the tick is dropped and the pending job stays claimable,
// which is the backpressure mechanism.
func (p *OCRJobProcessor) Start(ctx context.Context, pool *Pool) {
	p.log.Info().Dur("poll_interval", p.pollInterval).Msg("OCR job processor started")
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("OCR job processor stopping")
			return
		case <-ticker.C:
			_ = pool.Submit(func(ctx context.Context) error {
				p.processOne(ctx)
				return nil
			})
		}
	}
}

func (p *OCRJobProcessor) processOne(ctx context.Context) {
	job, err := p.jobs.FetchAndMarkProcessing(ctx)
	if err != nil {
		if err != domain.ErrNotFound {
			p.log.Error().Err(err).Msg("failed to claim job")
		}
		return
	}
	p.invalidate(ctx, job.JobID)

	ctx = logging.WithJobID(logging.WithOwnerID(ctx, job.OwnerID), job.JobID)
	log := logging.With(ctx, p.log)

	log.Info().Msg("processing job")
	start := time.Now()

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	convErr := p.converter.Convert(cctx, job.OriginalPath, job.ConvertedPath)
	cancel()
	latency := time.Since(start)

	if convErr != nil {
		p.fail(log, job, convErr.Error())
	} else if fi, statErr := os.Stat(job.ConvertedPath); statErr != nil {
		p.fail(log, job, fmt.Sprintf("converted file missing: %v", statErr))
	} else {
		pages := job.PageCount
		if n, err := p.inspector.PageCount(job.ConvertedPath); err == nil {
			pages = n
		}
		if err := job.MarkCompleted(fi.Size(), pages, latency); err != nil {
			log.Error().Err(err).Msg("illegal completion transition")
			return
		}
		metrics.ObserveConversion(latency.Seconds(), job.FileSizeOriginal, fi.Size())
		log.Info().Dur("latency", latency).Int64("size_converted", fi.Size()).Msg("job completed")
	}

	metrics.IncJobProcessed(string(job.Status))

	// The outer ctx may already be cancelled during shutdown; the final
	// state still has to land in the store.
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.jobs.Save(saveCtx, repository.NoTX, job); err != nil {
		log.Error().Err(err).Msg("failed to persist final job state, job stuck in processing")
		return
	}
	p.invalidate(saveCtx, job.JobID)
}

func (p *OCRJobProcessor) fail(log *zerolog.Logger, job *model.OCRJob, msg string) {
	if err := job.MarkFailed(msg); err != nil {
		log.Error().Err(err).Msg("illegal failure transition")
		return
	}
	log.Warn().Str("reason", msg).Msg("job failed")
}

func (p *OCRJobProcessor) invalidate(ctx context.Context, jobID string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Invalidate(ctx, jobID); err != nil {
		p.log.Warn().Err(err).Str("job_id", jobID).Msg("cache invalidation failed")
	}
}
