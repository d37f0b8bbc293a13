package usecase

import (
	"context"
	"math"
	"time"

	"pdf-ocr-service/internal/domain/model"
	"pdf-ocr-service/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ MetricsUseCase = (*metricsUC)(nil)

// Overview aggregates platform-wide statistics for the admin dashboard.
type Overview struct {
	TotalJobs          int        `json:"total_jobs"`
	CompletedJobs      int        `json:"completed_jobs"`
	FailedJobs         int        `json:"failed_jobs"`
	ProcessingJobs     int        `json:"processing_jobs"`
	PendingJobs        int        `json:"pending_jobs"`
	UniqueOwners       int        `json:"unique_owners"`
	RecentJobs24h      int        `json:"recent_jobs_24h"`
	TotalPages         int64      `json:"total_pages"`
	TotalSizeOriginal  int64      `json:"total_size_original"`
	TotalSizeConverted int64      `json:"total_size_converted"`
	AvgProcessingTime  float64    `json:"avg_processing_time_seconds"`
	SuccessRate        float64    `json:"success_rate_percent"`
	SpaceSavings       float64    `json:"space_savings_percent"`
	Recent             []*JobView `json:"recent"`
}

// OwnerSummary aggregates statistics for a single owner.
type OwnerSummary struct {
	TotalJobs     int        `json:"total_jobs"`
	CompletedJobs int        `json:"completed_jobs"`
	FailedJobs    int        `json:"failed_jobs"`
	SuccessRate   float64    `json:"success_rate_percent"`
	TotalPages    int64      `json:"total_pages"`
	RecentJobs    []*JobView `json:"recent_jobs"`
}

type MetricsUseCase interface {
	Overview(ctx context.Context) *Overview
	OwnerSummary(ctx context.Context, ownerID string) *OwnerSummary
}

type metricsUC struct {
	jobs repository.OCRJobRepository
	log  *zerolog.Logger
}

func NewMetricsUseCase(jobs repository.OCRJobRepository, logger *zerolog.Logger) *metricsUC {
	return &metricsUC{jobs: jobs, log: logger}
}

// Overview never fails as a whole: each field falls back to its zero
// value when its query errors, so a partial dashboard still renders.
func (m *metricsUC) Overview(ctx context.Context) *Overview {
	o := &Overview{Recent: []*JobView{}}

	o.TotalJobs = m.countOr("total", func() (int, error) {
		return m.jobs.CountTotal(ctx, repository.NoTX)
	})
	o.CompletedJobs = m.countOr("completed", func() (int, error) {
		return m.jobs.CountByStatus(ctx, repository.NoTX, model.JobStatusCompleted)
	})
	o.FailedJobs = m.countOr("failed", func() (int, error) {
		return m.jobs.CountByStatus(ctx, repository.NoTX, model.JobStatusFailed)
	})
	o.ProcessingJobs = m.countOr("processing", func() (int, error) {
		return m.jobs.CountByStatus(ctx, repository.NoTX, model.JobStatusProcessing)
	})
	o.PendingJobs = m.countOr("pending", func() (int, error) {
		return m.jobs.CountByStatus(ctx, repository.NoTX, model.JobStatusPending)
	})
	o.UniqueOwners = m.countOr("unique_owners", func() (int, error) {
		return m.jobs.CountDistinctOwners(ctx, repository.NoTX)
	})
	o.RecentJobs24h = m.countOr("recent_24h", func() (int, error) {
		return m.jobs.CountCreatedSince(ctx, repository.NoTX, time.Now().UTC().Add(-24*time.Hour))
	})

	if totals, err := m.jobs.SumCompleted(ctx, repository.NoTX); err != nil {
		m.log.Warn().Err(err).Msg("completed totals query failed")
	} else {
		o.TotalPages = totals.Pages
		o.TotalSizeOriginal = totals.SizeOriginal
		o.TotalSizeConverted = totals.SizeConverted
	}

	if avg, err := m.jobs.AvgProcessingDuration(ctx, repository.NoTX); err != nil {
		m.log.Warn().Err(err).Msg("avg duration query failed")
	} else {
		o.AvgProcessingTime = round1(avg)
	}

	if o.TotalJobs > 0 {
		o.SuccessRate = round1(float64(o.CompletedJobs) / float64(o.TotalJobs) * 100)
	}
	if o.TotalSizeOriginal > 0 && o.TotalSizeConverted > 0 {
		o.SpaceSavings = round1((1 - float64(o.TotalSizeConverted)/float64(o.TotalSizeOriginal)) * 100)
	}

	if recent, err := m.jobs.ListRecent(ctx, repository.NoTX, 20); err != nil {
		m.log.Warn().Err(err).Msg("recent jobs query failed")
	} else {
		for _, job := range recent {
			o.Recent = append(o.Recent, newJobView(job))
		}
	}
	return o
}

func (m *metricsUC) OwnerSummary(ctx context.Context, ownerID string) *OwnerSummary {
	s := &OwnerSummary{RecentJobs: []*JobView{}}

	s.TotalJobs = m.countOr("owner_total", func() (int, error) {
		return m.jobs.CountByOwner(ctx, repository.NoTX, ownerID)
	})
	s.CompletedJobs = m.countOr("owner_completed", func() (int, error) {
		return m.jobs.CountByOwnerAndStatus(ctx, repository.NoTX, ownerID, model.JobStatusCompleted)
	})
	s.FailedJobs = m.countOr("owner_failed", func() (int, error) {
		return m.jobs.CountByOwnerAndStatus(ctx, repository.NoTX, ownerID, model.JobStatusFailed)
	})
	if s.TotalJobs > 0 {
		s.SuccessRate = round1(float64(s.CompletedJobs) / float64(s.TotalJobs) * 100)
	}

	if pages, err := m.jobs.SumCompletedPagesByOwner(ctx, repository.NoTX, ownerID); err != nil {
		m.log.Warn().Err(err).Str("owner_id", ownerID).Msg("owner pages query failed")
	} else {
		s.TotalPages = pages
	}

	if recent, err := m.jobs.ListByOwner(ctx, repository.NoTX, ownerID, 10); err != nil {
		m.log.Warn().Err(err).Str("owner_id", ownerID).Msg("owner recent jobs query failed")
	} else {
		for _, job := range recent {
			s.RecentJobs = append(s.RecentJobs, newJobView(job))
		}
	}
	return s
}

func (m *metricsUC) countOr(field string, fn func() (int, error)) int {
	n, err := fn()
	if err != nil {
		m.log.Warn().Err(err).Str("field", field).Msg("dashboard count query failed")
		return 0
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
