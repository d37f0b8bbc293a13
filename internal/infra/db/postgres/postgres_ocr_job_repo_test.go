//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pdf-ocr-service/internal/domain"
	"pdf-ocr-service/internal/domain/model"
)

func newTestRepo() *OCRJobRepo {
	return NewOCRJobRepo(testPool, NewTxManager(testPool))
}

func mustJob(t *testing.T, jobID, ownerID string) *model.OCRJob {
	t.Helper()
	job, err := model.NewOCRJob(jobID, ownerID, "scan.pdf",
		"/data/in/"+jobID+".pdf", "/data/out/"+jobID+"_converted.pdf", 1000, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	return job
}

func TestSaveAndFind(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := newTestRepo()

	job := mustJob(t, "job-1", "owner-1")
	job.PageCount = 4
	if err := repo.Save(ctx, nil, job); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.FindByJobID(ctx, nil, "job-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.OwnerID != "owner-1" || got.Status != model.JobStatusPending || got.PageCount != 4 {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
	if !got.CleanupAfter.After(got.CreatedAt) {
		t.Errorf("cleanup_after %v not after created_at %v", got.CleanupAfter, got.CreatedAt)
	}

	// Upsert: mutate and save again.
	if err := got.MarkProcessing(); err != nil {
		t.Fatalf("mark processing: %v", err)
	}
	if err := got.MarkCompleted(600, 4, 3*time.Second); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if err := repo.Save(ctx, nil, got); err != nil {
		t.Fatalf("second save: %v", err)
	}
	again, err := repo.FindByJobID(ctx, nil, "job-1")
	if err != nil {
		t.Fatalf("find after update: %v", err)
	}
	if again.Status != model.JobStatusCompleted || again.FileSizeConverted != 600 {
		t.Errorf("update not persisted: %+v", again)
	}

	if _, err := repo.FindByJobID(ctx, nil, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByJobIDAndOwner(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := newTestRepo()

	if err := repo.Save(ctx, nil, mustJob(t, "job-1", "owner-1")); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := repo.FindByJobIDAndOwner(ctx, nil, "job-1", "owner-1"); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := repo.FindByJobIDAndOwner(ctx, nil, "job-1", "owner-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-owner lookup should be not found, got %v", err)
	}
}

func TestFetchAndMarkProcessing(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := newTestRepo()

	first := mustJob(t, "job-1", "owner-1")
	if err := repo.Save(ctx, nil, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Force a later created_at for the second job.
	second := mustJob(t, "job-2", "owner-1")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	if err := repo.Save(ctx, nil, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	claimed, err := repo.FetchAndMarkProcessing(ctx)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.JobID != "job-1" {
		t.Errorf("claimed %s, want oldest job-1", claimed.JobID)
	}
	if claimed.Status != model.JobStatusProcessing {
		t.Errorf("claimed status = %s", claimed.Status)
	}

	stored, err := repo.FindByJobID(ctx, nil, "job-1")
	if err != nil {
		t.Fatalf("find claimed: %v", err)
	}
	if stored.Status != model.JobStatusProcessing {
		t.Errorf("claim not persisted: %s", stored.Status)
	}

	if next, err := repo.FetchAndMarkProcessing(ctx); err != nil {
		t.Fatalf("second claim: %v", err)
	} else if next.JobID != "job-2" {
		t.Errorf("second claim = %s, want job-2", next.JobID)
	}

	if _, err := repo.FetchAndMarkProcessing(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("empty queue should be not found, got %v", err)
	}
}

func TestListExpiredAndDelete(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := newTestRepo()

	expired := mustJob(t, "job-old", "owner-1")
	expired.CleanupAfter = time.Now().UTC().Add(-time.Hour)
	fresh := mustJob(t, "job-new", "owner-1")
	for _, j := range []*model.OCRJob{expired, fresh} {
		if err := repo.Save(ctx, nil, j); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := repo.ListExpired(ctx, nil, time.Now().UTC())
	if err != nil {
		t.Fatalf("list expired: %v", err)
	}
	if len(got) != 1 || got[0].JobID != "job-old" {
		t.Fatalf("expected only job-old, got %+v", got)
	}

	if err := repo.Delete(ctx, nil, "job-old"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByJobID(ctx, nil, "job-old"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted job still findable: %v", err)
	}
	// Deleting a missing row is not an error.
	if err := repo.Delete(ctx, nil, "job-old"); err != nil {
		t.Errorf("repeat delete: %v", err)
	}
}

func TestListByOwnerAndRecent(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := newTestRepo()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		owner := "owner-1"
		if i%2 == 1 {
			owner = "owner-2"
		}
		j := mustJob(t, fmt.Sprintf("job-%d", i), owner)
		j.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Save(ctx, nil, j); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	mine, err := repo.ListByOwner(ctx, nil, "owner-1", 10)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(mine) != 3 {
		t.Fatalf("expected 3 jobs for owner-1, got %d", len(mine))
	}
	if mine[0].JobID != "job-4" {
		t.Errorf("expected newest first, got %s", mine[0].JobID)
	}

	recent, err := repo.ListRecent(ctx, nil, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 || recent[0].JobID != "job-4" || recent[1].JobID != "job-3" {
		t.Errorf("recent order wrong: %+v", recent)
	}
}

func TestCountsAndSums(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := newTestRepo()

	complete := func(jobID, owner string, pages int, sizeOrig, sizeConv int64, dur time.Duration) {
		j := mustJob(t, jobID, owner)
		j.FileSizeOriginal = sizeOrig
		if err := j.MarkProcessing(); err != nil {
			t.Fatalf("mark processing: %v", err)
		}
		if err := j.MarkCompleted(sizeConv, pages, dur); err != nil {
			t.Fatalf("mark completed: %v", err)
		}
		if err := repo.Save(ctx, nil, j); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	complete("job-1", "owner-1", 10, 1000, 600, 4*time.Second)
	complete("job-2", "owner-2", 5, 1000, 400, 2*time.Second)

	failed := mustJob(t, "job-3", "owner-1")
	_ = failed.MarkProcessing()
	_ = failed.MarkFailed("boom")
	if err := repo.Save(ctx, nil, failed); err != nil {
		t.Fatalf("save failed job: %v", err)
	}
	if err := repo.Save(ctx, nil, mustJob(t, "job-4", "owner-3")); err != nil {
		t.Fatalf("save pending job: %v", err)
	}

	if n, _ := repo.CountTotal(ctx, nil); n != 4 {
		t.Errorf("total = %d, want 4", n)
	}
	if n, _ := repo.CountByStatus(ctx, nil, model.JobStatusCompleted); n != 2 {
		t.Errorf("completed = %d, want 2", n)
	}
	if n, _ := repo.CountByOwner(ctx, nil, "owner-1"); n != 2 {
		t.Errorf("owner-1 count = %d, want 2", n)
	}
	if n, _ := repo.CountByOwnerAndStatus(ctx, nil, "owner-1", model.JobStatusFailed); n != 1 {
		t.Errorf("owner-1 failed = %d, want 1", n)
	}
	if n, _ := repo.CountDistinctOwners(ctx, nil); n != 3 {
		t.Errorf("distinct owners = %d, want 3", n)
	}
	if n, _ := repo.CountCreatedSince(ctx, nil, time.Now().UTC().Add(-time.Minute)); n != 4 {
		t.Errorf("recent = %d, want 4", n)
	}

	totals, err := repo.SumCompleted(ctx, nil)
	if err != nil {
		t.Fatalf("sum completed: %v", err)
	}
	if totals.Pages != 15 || totals.SizeOriginal != 2000 || totals.SizeConverted != 1000 {
		t.Errorf("totals wrong: %+v", totals)
	}

	if pages, _ := repo.SumCompletedPagesByOwner(ctx, nil, "owner-1"); pages != 10 {
		t.Errorf("owner-1 pages = %d, want 10", pages)
	}

	avg, err := repo.AvgProcessingDuration(ctx, nil)
	if err != nil {
		t.Fatalf("avg duration: %v", err)
	}
	if avg != 3.0 {
		t.Errorf("avg = %v, want 3.0", avg)
	}
}

func TestCountsOnEmptyTable(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := newTestRepo()

	if n, err := repo.CountTotal(ctx, nil); err != nil || n != 0 {
		t.Errorf("total on empty = %d, %v", n, err)
	}
	totals, err := repo.SumCompleted(ctx, nil)
	if err != nil || totals.Pages != 0 {
		t.Errorf("sums on empty = %+v, %v", totals, err)
	}
	if avg, err := repo.AvgProcessingDuration(ctx, nil); err != nil || avg != 0 {
		t.Errorf("avg on empty = %v, %v", avg, err)
	}
}
