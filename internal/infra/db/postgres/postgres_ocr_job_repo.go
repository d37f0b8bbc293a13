package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"pdf-ocr-service/internal/domain"
	"pdf-ocr-service/internal/domain/model"
	"pdf-ocr-service/internal/domain/ports/repository"
)

var _ repository.OCRJobRepository = (*OCRJobRepo)(nil)

type OCRJobRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewOCRJobRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *OCRJobRepo {
	return &OCRJobRepo{pool: pool, tm: tm}
}

const jobColumns = `
job_id, owner_id, original_filename, original_path, converted_path, status,
file_size_original, file_size_converted, page_count, processing_duration,
error_message, created_at, completed_at, updated_at, cleanup_after`

func (r *OCRJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.OCRJob) error {
	job.UpdatedAt = time.Now().UTC()

	const q = `
INSERT INTO ocr_jobs (
  job_id, owner_id, original_filename, original_path, converted_path, status,
  file_size_original, file_size_converted, page_count, processing_duration,
  error_message, created_at, completed_at, updated_at, cleanup_after
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (job_id) DO UPDATE SET
  status = EXCLUDED.status,
  file_size_converted = EXCLUDED.file_size_converted,
  page_count = EXCLUDED.page_count,
  processing_duration = EXCLUDED.processing_duration,
  error_message = EXCLUDED.error_message,
  completed_at = EXCLUDED.completed_at,
  updated_at = EXCLUDED.updated_at;`

	_, err := execSQL(ctx, r.pool, tx, q,
		job.JobID, job.OwnerID, job.OriginalFilename, job.OriginalPath, job.ConvertedPath,
		string(job.Status), job.FileSizeOriginal, job.FileSizeConverted, job.PageCount,
		job.ProcessingDuration, job.ErrorMessage, job.CreatedAt, job.CompletedAt,
		job.UpdatedAt, job.CleanupAfter)
	return err
}

func scanJob(row pgx.Row) (*model.OCRJob, error) {
	var j model.OCRJob
	var status string
	err := row.Scan(
		&j.JobID, &j.OwnerID, &j.OriginalFilename, &j.OriginalPath, &j.ConvertedPath,
		&status, &j.FileSizeOriginal, &j.FileSizeConverted, &j.PageCount,
		&j.ProcessingDuration, &j.ErrorMessage, &j.CreatedAt, &j.CompletedAt,
		&j.UpdatedAt, &j.CleanupAfter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	j.Status = model.JobStatus(status)
	return &j, nil
}

func (r *OCRJobRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.OCRJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM ocr_jobs WHERE job_id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *OCRJobRepo) FindByJobIDAndOwner(ctx context.Context, tx repository.Tx, jobID, ownerID string) (*model.OCRJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM ocr_jobs WHERE job_id = $1 AND owner_id = $2;`
	row, err := pickRow(ctx, r.pool, tx, q, jobID, ownerID)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

// FetchAndMarkProcessing claims the oldest pending job inside a transaction so
// concurrent workers never pick up the same job.
func (r *OCRJobRepo) FetchAndMarkProcessing(ctx context.Context) (*model.OCRJob, error) {
	var job *model.OCRJob

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		const q = `
SELECT ` + jobColumns + `
FROM ocr_jobs
WHERE status = 'pending'
ORDER BY created_at
LIMIT 1
FOR UPDATE SKIP LOCKED;`

		row, err := pickRow(ctx, r.pool, tx, q)
		if err != nil {
			return err
		}
		fetched, err := scanJob(row)
		if err != nil {
			return err
		}
		if err := fetched.MarkProcessing(); err != nil {
			return err
		}
		if err := r.Save(ctx, tx, fetched); err != nil {
			return err
		}
		job = fetched
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

func (r *OCRJobRepo) listJobs(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.OCRJob, error) {
	rows, err := pickRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*model.OCRJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *OCRJobRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string, limit int) ([]*model.OCRJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM ocr_jobs WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2;`
	return r.listJobs(ctx, tx, q, ownerID, limit)
}

func (r *OCRJobRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.OCRJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM ocr_jobs ORDER BY created_at DESC LIMIT $1;`
	return r.listJobs(ctx, tx, q, limit)
}

func (r *OCRJobRepo) ListExpired(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.OCRJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM ocr_jobs WHERE cleanup_after <= $1 ORDER BY cleanup_after;`
	return r.listJobs(ctx, tx, q, now)
}

func (r *OCRJobRepo) Delete(ctx context.Context, tx repository.Tx, jobID string) error {
	const q = `DELETE FROM ocr_jobs WHERE job_id = $1;`
	_, err := execSQL(ctx, r.pool, tx, q, jobID)
	return err
}

func (r *OCRJobRepo) countOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *OCRJobRepo) CountTotal(ctx context.Context, tx repository.Tx) (int, error) {
	return r.countOne(ctx, tx, `SELECT COUNT(*) FROM ocr_jobs;`)
}

func (r *OCRJobRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.JobStatus) (int, error) {
	return r.countOne(ctx, tx, `SELECT COUNT(*) FROM ocr_jobs WHERE status = $1;`, string(status))
}

func (r *OCRJobRepo) CountByOwner(ctx context.Context, tx repository.Tx, ownerID string) (int, error) {
	return r.countOne(ctx, tx, `SELECT COUNT(*) FROM ocr_jobs WHERE owner_id = $1;`, ownerID)
}

func (r *OCRJobRepo) CountByOwnerAndStatus(ctx context.Context, tx repository.Tx, ownerID string, status model.JobStatus) (int, error) {
	return r.countOne(ctx, tx, `SELECT COUNT(*) FROM ocr_jobs WHERE owner_id = $1 AND status = $2;`, ownerID, string(status))
}

func (r *OCRJobRepo) CountDistinctOwners(ctx context.Context, tx repository.Tx) (int, error) {
	return r.countOne(ctx, tx, `SELECT COUNT(DISTINCT owner_id) FROM ocr_jobs;`)
}

func (r *OCRJobRepo) CountCreatedSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	return r.countOne(ctx, tx, `SELECT COUNT(*) FROM ocr_jobs WHERE created_at >= $1;`, since)
}

func (r *OCRJobRepo) SumCompleted(ctx context.Context, tx repository.Tx) (repository.CompletedTotals, error) {
	const q = `
SELECT COALESCE(SUM(page_count), 0),
       COALESCE(SUM(file_size_original), 0),
       COALESCE(SUM(file_size_converted), 0)
  FROM ocr_jobs WHERE status = 'completed';`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return repository.CompletedTotals{}, err
	}
	var t repository.CompletedTotals
	if err := row.Scan(&t.Pages, &t.SizeOriginal, &t.SizeConverted); err != nil {
		return repository.CompletedTotals{}, err
	}
	return t, nil
}

func (r *OCRJobRepo) SumCompletedPagesByOwner(ctx context.Context, tx repository.Tx, ownerID string) (int64, error) {
	const q = `
SELECT COALESCE(SUM(page_count), 0)
  FROM ocr_jobs WHERE owner_id = $1 AND status = 'completed';`
	row, err := pickRow(ctx, r.pool, tx, q, ownerID)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *OCRJobRepo) AvgProcessingDuration(ctx context.Context, tx repository.Tx) (float64, error) {
	const q = `
SELECT COALESCE(AVG(processing_duration), 0)
  FROM ocr_jobs WHERE status = 'completed';`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var avg float64
	if err := row.Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}
