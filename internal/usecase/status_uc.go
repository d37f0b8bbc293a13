package usecase

import (
	"context"
	"fmt"
	"os"
	"time"

	"pdf-ocr-service/internal/domain"
	"pdf-ocr-service/internal/domain/model"
	"pdf-ocr-service/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatusUseCase = (*statusUC)(nil)

// JobCache is a read-through cache for job lookups on the hot polling path.
type JobCache interface {
	Store(ctx context.Context, job *model.OCRJob) error
	Get(ctx context.Context, jobID string) (*model.OCRJob, error)
	Invalidate(ctx context.Context, jobID string) error
}

// JobView is the client-facing projection of a job record.
type JobView struct {
	JobID              string          `json:"job_id"`
	OriginalFilename   string          `json:"original_filename"`
	Status             model.JobStatus `json:"status"`
	FileSizeOriginal   int64           `json:"file_size_original"`
	FileSizeConverted  int64           `json:"file_size_converted"`
	FileSizeText       string          `json:"file_size_text"`
	PageCount          int             `json:"page_count"`
	ProcessingDuration int64           `json:"processing_duration_seconds"`
	ErrorMessage       string          `json:"error_message,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	DownloadAvailable  bool            `json:"download_available"`
}

type StatusUseCase interface {
	GetStatus(ctx context.Context, jobID, ownerID string) (*JobView, error)
	GetStatusPublic(ctx context.Context, jobID string) (*JobView, error)
	Download(ctx context.Context, jobID string) (path, filename string, err error)
	ListOwnerJobs(ctx context.Context, ownerID string, limit int) ([]*JobView, error)
}

type statusUC struct {
	jobs  repository.OCRJobRepository
	cache JobCache
	log   *zerolog.Logger
}

func NewStatusUseCase(jobs repository.OCRJobRepository, cache JobCache, logger *zerolog.Logger) *statusUC {
	return &statusUC{jobs: jobs, cache: cache, log: logger}
}

func (s *statusUC) GetStatus(ctx context.Context, jobID, ownerID string) (*JobView, error) {
	job, err := s.jobs.FindByJobIDAndOwner(ctx, repository.NoTX, jobID, ownerID)
	if err != nil {
		return nil, err
	}
	return newJobView(job), nil
}

// GetStatusPublic serves unauthenticated pollers and reads through the
// cache so a client hammering the status endpoint does not hammer the
// database.
func (s *statusUC) GetStatusPublic(ctx context.Context, jobID string) (*JobView, error) {
	if s.cache != nil {
		if job, err := s.cache.Get(ctx, jobID); err == nil {
			return newJobView(job), nil
		} else if err != domain.ErrNotFound {
			s.log.Warn().Err(err).Str("job_id", jobID).Msg("status cache read failed")
		}
	}

	job, err := s.jobs.FindByJobID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Store(ctx, job); err != nil {
			s.log.Warn().Err(err).Str("job_id", jobID).Msg("status cache write failed")
		}
	}
	return newJobView(job), nil
}

// Download resolves the converted file for a completed job. It is
// deliberately unauthenticated: the job id is an unguessable UUID handed
// out at submission.
func (s *statusUC) Download(ctx context.Context, jobID string) (string, string, error) {
	job, err := s.jobs.FindByJobID(ctx, repository.NoTX, jobID)
	if err != nil {
		return "", "", err
	}
	if job.Status != model.JobStatusCompleted {
		return "", "", fmt.Errorf("%w: conversion not completed yet", domain.ErrNotReady)
	}
	if _, err := os.Stat(job.ConvertedPath); err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Str("path", job.ConvertedPath).
			Msg("completed job has no converted file on disk")
		return "", "", domain.ErrNotFound
	}
	return job.ConvertedPath, job.DownloadFilename(), nil
}

func (s *statusUC) ListOwnerJobs(ctx context.Context, ownerID string, limit int) ([]*JobView, error) {
	jobs, err := s.jobs.ListByOwner(ctx, repository.NoTX, ownerID, limit)
	if err != nil {
		return nil, err
	}
	views := make([]*JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, newJobView(job))
	}
	return views, nil
}

func newJobView(job *model.OCRJob) *JobView {
	v := &JobView{
		JobID:              job.JobID,
		OriginalFilename:   job.OriginalFilename,
		Status:             job.Status,
		FileSizeOriginal:   job.FileSizeOriginal,
		FileSizeConverted:  job.FileSizeConverted,
		FileSizeText:       model.FormatFileSize(job.FileSizeOriginal),
		PageCount:          job.PageCount,
		ProcessingDuration: job.ProcessingDuration,
		ErrorMessage:       job.ErrorMessage,
		CreatedAt:          job.CreatedAt,
	}
	if job.Status == model.JobStatusCompleted {
		// The sweeper may have removed the file already.
		if _, err := os.Stat(job.ConvertedPath); err == nil {
			v.DownloadAvailable = true
		}
	}
	if !job.CompletedAt.IsZero() {
		t := job.CompletedAt
		v.CompletedAt = &t
	}
	return v
}
