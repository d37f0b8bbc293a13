//go:build !integration

package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pdf-ocr-service/internal/domain"
	"pdf-ocr-service/internal/domain/model"
	"pdf-ocr-service/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// -----------------------------
// In-memory job repository
// -----------------------------

type memJobRepo struct {
	mu    sync.RWMutex
	store map[string]*model.OCRJob

	saveErr   error
	listErr   error
	countErr  error
	deleteErr error
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{store: make(map[string]*model.OCRJob)}
}

func (m *memJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.OCRJob) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.store[job.JobID] = &cp
	return nil
}

func (m *memJobRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.OCRJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.store[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) FindByJobIDAndOwner(ctx context.Context, tx repository.Tx, jobID, ownerID string) (*model.OCRJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.store[jobID]
	if !ok || j.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) FetchAndMarkProcessing(ctx context.Context) (*model.OCRJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *model.OCRJob
	for _, j := range m.store {
		if j.Status != model.JobStatusPending {
			continue
		}
		if oldest == nil || j.CreatedAt.Before(oldest.CreatedAt) {
			oldest = j
		}
	}
	if oldest == nil {
		return nil, domain.ErrNotFound
	}
	if err := oldest.MarkProcessing(); err != nil {
		return nil, err
	}
	cp := *oldest
	return &cp, nil
}

func (m *memJobRepo) sorted(desc bool) []*model.OCRJob {
	out := make([]*model.OCRJob, 0, len(m.store))
	for _, j := range m.store {
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool {
		if desc {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].CreatedAt.Before(out[b].CreatedAt)
	})
	return out
}

func (m *memJobRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string, limit int) ([]*model.OCRJob, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.OCRJob
	for _, j := range m.sorted(true) {
		if j.OwnerID == ownerID && len(out) < limit {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *memJobRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.OCRJob, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.sorted(true)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memJobRepo) ListExpired(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.OCRJob, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.OCRJob
	for _, j := range m.sorted(false) {
		if j.Expired(now) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *memJobRepo) Delete(ctx context.Context, tx repository.Tx, jobID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, jobID)
	return nil
}

func (m *memJobRepo) CountTotal(ctx context.Context, tx repository.Tx) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *memJobRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.JobStatus) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, j := range m.store {
		if j.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *memJobRepo) CountByOwner(ctx context.Context, tx repository.Tx, ownerID string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, j := range m.store {
		if j.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *memJobRepo) CountByOwnerAndStatus(ctx context.Context, tx repository.Tx, ownerID string, status model.JobStatus) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, j := range m.store {
		if j.OwnerID == ownerID && j.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *memJobRepo) CountDistinctOwners(ctx context.Context, tx repository.Tx) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	owners := make(map[string]struct{})
	for _, j := range m.store {
		owners[j.OwnerID] = struct{}{}
	}
	return len(owners), nil
}

func (m *memJobRepo) CountCreatedSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, j := range m.store {
		if !j.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memJobRepo) SumCompleted(ctx context.Context, tx repository.Tx) (repository.CompletedTotals, error) {
	if m.countErr != nil {
		return repository.CompletedTotals{}, m.countErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var t repository.CompletedTotals
	for _, j := range m.store {
		if j.Status == model.JobStatusCompleted {
			t.Pages += int64(j.PageCount)
			t.SizeOriginal += j.FileSizeOriginal
			t.SizeConverted += j.FileSizeConverted
		}
	}
	return t, nil
}

func (m *memJobRepo) SumCompletedPagesByOwner(ctx context.Context, tx repository.Tx, ownerID string) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, j := range m.store {
		if j.OwnerID == ownerID && j.Status == model.JobStatusCompleted {
			n += int64(j.PageCount)
		}
	}
	return n, nil
}

func (m *memJobRepo) AvgProcessingDuration(ctx context.Context, tx repository.Tx) (float64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum, n float64
	for _, j := range m.store {
		if j.Status == model.JobStatusCompleted {
			sum += float64(j.ProcessingDuration)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / n, nil
}

// -----------------------------
// Fakes for cache, limiter, inspector
// -----------------------------

type fakeCache struct {
	mu          sync.Mutex
	store       map[string]*model.OCRJob
	getErr      error
	setErr      error
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]*model.OCRJob)}
}

func (f *fakeCache) Store(ctx context.Context, job *model.OCRJob) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *job
	f.store[job.JobID] = &cp
	return nil
}

func (f *fakeCache) Get(ctx context.Context, jobID string) (*model.OCRJob, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.store[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeCache) Invalidate(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.store, jobID)
	f.invalidated = append(f.invalidated, jobID)
	return nil
}

type fakeLimiter struct {
	allow bool
	err   error
	calls int
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	f.calls++
	return f.allow, f.err
}

type fakeInspector struct {
	pages int
	err   error
}

func (f *fakeInspector) PageCount(path string) (int, error) {
	return f.pages, f.err
}
