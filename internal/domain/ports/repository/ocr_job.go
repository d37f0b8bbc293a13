package repository

import (
	"context"
	"time"

	"pdf-ocr-service/internal/domain/model"
)

// CompletedTotals aggregates sums over completed jobs.
type CompletedTotals struct {
	Pages         int64
	SizeOriginal  int64
	SizeConverted int64
}

type OCRJobRepository interface {
	// Save upserts the job record.
	Save(ctx context.Context, tx Tx, job *model.OCRJob) error
	FindByJobID(ctx context.Context, tx Tx, jobID string) (*model.OCRJob, error)
	FindByJobIDAndOwner(ctx context.Context, tx Tx, jobID, ownerID string) (*model.OCRJob, error)
	// FetchAndMarkProcessing atomically claims the oldest pending job and
	// marks it 'processing' so no other worker picks it up.
	FetchAndMarkProcessing(ctx context.Context) (*model.OCRJob, error)
	ListByOwner(ctx context.Context, tx Tx, ownerID string, limit int) ([]*model.OCRJob, error)
	ListRecent(ctx context.Context, tx Tx, limit int) ([]*model.OCRJob, error)
	// ListExpired returns jobs whose cleanup_after is at or before now.
	ListExpired(ctx context.Context, tx Tx, now time.Time) ([]*model.OCRJob, error)
	Delete(ctx context.Context, tx Tx, jobID string) error

	CountTotal(ctx context.Context, tx Tx) (int, error)
	CountByStatus(ctx context.Context, tx Tx, status model.JobStatus) (int, error)
	CountByOwner(ctx context.Context, tx Tx, ownerID string) (int, error)
	CountByOwnerAndStatus(ctx context.Context, tx Tx, ownerID string, status model.JobStatus) (int, error)
	CountDistinctOwners(ctx context.Context, tx Tx) (int, error)
	CountCreatedSince(ctx context.Context, tx Tx, since time.Time) (int, error)
	SumCompleted(ctx context.Context, tx Tx) (CompletedTotals, error)
	SumCompletedPagesByOwner(ctx context.Context, tx Tx, ownerID string) (int64, error)
	AvgProcessingDuration(ctx context.Context, tx Tx) (float64, error)
}
