package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pdf-ocr-service/internal/domain"
	"pdf-ocr-service/internal/domain/model"
	"pdf-ocr-service/internal/domain/ports/adapter"
	"pdf-ocr-service/internal/domain/ports/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ SubmitUseCase = (*submitUC)(nil)

// UploadLimiter guards the submission path against bursty clients.
type UploadLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type SubmitUseCase interface {
	Submit(ctx context.Context, content []byte, filename, ownerID string) (*model.OCRJob, error)
}

// SubmitConfig carries the tunables the submission path needs.
type SubmitConfig struct {
	InputDir   string
	OutputDir  string
	MaxBytes   int64
	Retention  time.Duration
	RateLimit  int
	RateWindow time.Duration
}

type submitUC struct {
	jobs      repository.OCRJobRepository
	inspector adapter.PDFInspector
	limiter   UploadLimiter
	cfg       SubmitConfig
	log       *zerolog.Logger
}

func NewSubmitUseCase(
	jobs repository.OCRJobRepository,
	inspector adapter.PDFInspector,
	limiter UploadLimiter,
	cfg SubmitConfig,
	logger *zerolog.Logger,
) *submitUC {
	return &submitUC{jobs: jobs, inspector: inspector, limiter: limiter, cfg: cfg, log: logger}
}

func (s *submitUC) Submit(ctx context.Context, content []byte, filename, ownerID string) (*model.OCRJob, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidArgument)
	}
	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, uploadRateKey(ownerID), s.cfg.RateLimit, s.cfg.RateWindow)
		if err != nil {
			// Redis being down must not block uploads.
			s.log.Warn().Err(err).Str("owner_id", ownerID).Msg("rate limiter unavailable, allowing upload")
		} else if !ok {
			return nil, domain.ErrRateLimited
		}
	}

	if verr := ValidateUpload(content, filename, s.cfg.MaxBytes); verr != nil {
		return nil, verr
	}

	jobID := uuid.NewString()
	ts := time.Now().Unix()
	originalPath := filepath.Join(s.cfg.InputDir, fmt.Sprintf("%s_%d.pdf", jobID, ts))
	convertedPath := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("%s_%d_converted.pdf", jobID, ts))

	// The converter writes to the output dir later; create both up front
	// so the job cannot fail on a missing directory.
	if err := os.MkdirAll(s.cfg.InputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create input dir: %w", err)
	}
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(originalPath, content, 0o644); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	job, err := model.NewOCRJob(jobID, ownerID, filename, originalPath, convertedPath, int64(len(content)), s.cfg.Retention)
	if err != nil {
		return nil, err
	}
	if pages, err := s.inspector.PageCount(originalPath); err != nil {
		s.log.Warn().Err(err).Str("job_id", jobID).Msg("page count failed, leaving at zero")
	} else {
		job.PageCount = pages
	}

	if err := s.jobs.Save(ctx, repository.NoTX, job); err != nil {
		if rmErr := os.Remove(originalPath); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("path", originalPath).Msg("failed to remove orphaned upload")
		}
		return nil, fmt.Errorf("save job: %w", err)
	}

	s.log.Info().Str("job_id", jobID).Str("owner_id", ownerID).
		Int64("size_bytes", job.FileSizeOriginal).Int("pages", job.PageCount).
		Msg("upload accepted")
	return job, nil
}

func uploadRateKey(ownerID string) string {
	return "rate_limit:upload:" + ownerID
}
