package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pdf-ocr-service/internal/domain"
	"pdf-ocr-service/internal/domain/model"
)

const jobKeyPrefix = "ocr_job:"

// StatusCache keeps recently looked-up job records so public status polling
// does not hit Postgres on every request. Entries are invalidated whenever
// the worker or the sweeper mutates a job.
type StatusCache struct {
	client *Client
	ttl    time.Duration
}

func NewStatusCache(client *Client, ttl time.Duration) *StatusCache {
	return &StatusCache{client: client, ttl: ttl}
}

func (c *StatusCache) Store(ctx context.Context, job *model.OCRJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, jobKeyPrefix+job.JobID, data, c.ttl)
}

func (c *StatusCache) Get(ctx context.Context, jobID string) (*model.OCRJob, error) {
	data, err := c.client.Get(ctx, jobKeyPrefix+jobID)
	if err != nil {
		if errors.Is(err, Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var job model.OCRJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *StatusCache) Invalidate(ctx context.Context, jobID string) error {
	return c.client.Del(ctx, jobKeyPrefix+jobID)
}
