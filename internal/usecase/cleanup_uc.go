package usecase

import (
	"context"
	"os"
	"time"

	"pdf-ocr-service/internal/domain/model"
	"pdf-ocr-service/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ CleanupUseCase = (*cleanupUC)(nil)

type CleanupUseCase interface {
	// SweepExpired returns how many jobs were fully reclaimed and how
	// many hit a per-job error during the pass.
	SweepExpired(ctx context.Context) (cleaned, failed int, err error)
}

type cleanupUC struct {
	jobs            repository.OCRJobRepository
	cache           JobCache
	staleProcessing time.Duration
	log             *zerolog.Logger
}

func NewCleanupUseCase(jobs repository.OCRJobRepository, cache JobCache, staleProcessing time.Duration, logger *zerolog.Logger) *cleanupUC {
	return &cleanupUC{jobs: jobs, cache: cache, staleProcessing: staleProcessing, log: logger}
}

// SweepExpired removes jobs past their retention window together with
// their files. Deletions are best-effort per item so one bad record
// never stalls the rest of the pass.
func (c *cleanupUC) SweepExpired(ctx context.Context) (int, int, error) {
	now := time.Now().UTC()
	expired, err := c.jobs.ListExpired(ctx, repository.NoTX, now)
	if err != nil {
		return 0, 0, err
	}

	cleaned, failed := 0, 0
	for _, job := range expired {
		if job.Status == model.JobStatusProcessing {
			age := now.Sub(job.UpdatedAt)
			if age < c.staleProcessing {
				// A worker may still hold this job; leave it for the next pass.
				c.log.Debug().Str("job_id", job.JobID).Dur("age", age).
					Msg("skipping expired job still in processing")
				continue
			}
			if err := job.MarkFailed("processing timed out"); err == nil {
				if err := c.jobs.Save(ctx, repository.NoTX, job); err != nil {
					c.log.Warn().Err(err).Str("job_id", job.JobID).Msg("failed to fail stale job")
				}
			}
		}

		c.removeFile(job.JobID, job.OriginalPath)
		c.removeFile(job.JobID, job.ConvertedPath)

		if err := c.jobs.Delete(ctx, repository.NoTX, job.JobID); err != nil {
			c.log.Error().Err(err).Str("job_id", job.JobID).Msg("failed to delete expired job")
			failed++
			continue
		}
		if c.cache != nil {
			if err := c.cache.Invalidate(ctx, job.JobID); err != nil {
				c.log.Warn().Err(err).Str("job_id", job.JobID).Msg("cache invalidation failed")
			}
		}
		cleaned++
	}
	return cleaned, failed, nil
}

func (c *cleanupUC) removeFile(jobID, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		c.log.Warn().Err(err).Str("job_id", jobID).Str("path", path).Msg("failed to remove file")
	}
}
