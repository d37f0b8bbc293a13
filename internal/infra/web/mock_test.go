//go:build !integration

package web_test

import (
	"context"

	"github.com/rs/zerolog"

	"pdf-ocr-service/internal/domain/model"
	"pdf-ocr-service/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type mockSubmitUC struct {
	SubmitFunc func(ctx context.Context, content []byte, filename, ownerID string) (*model.OCRJob, error)
}

func (m *mockSubmitUC) Submit(ctx context.Context, content []byte, filename, ownerID string) (*model.OCRJob, error) {
	return m.SubmitFunc(ctx, content, filename, ownerID)
}

type mockStatusUC struct {
	GetStatusFunc       func(ctx context.Context, jobID, ownerID string) (*usecase.JobView, error)
	GetStatusPublicFunc func(ctx context.Context, jobID string) (*usecase.JobView, error)
	DownloadFunc        func(ctx context.Context, jobID string) (string, string, error)
	ListOwnerJobsFunc   func(ctx context.Context, ownerID string, limit int) ([]*usecase.JobView, error)
}

func (m *mockStatusUC) GetStatus(ctx context.Context, jobID, ownerID string) (*usecase.JobView, error) {
	return m.GetStatusFunc(ctx, jobID, ownerID)
}

func (m *mockStatusUC) GetStatusPublic(ctx context.Context, jobID string) (*usecase.JobView, error) {
	return m.GetStatusPublicFunc(ctx, jobID)
}

func (m *mockStatusUC) Download(ctx context.Context, jobID string) (string, string, error) {
	return m.DownloadFunc(ctx, jobID)
}

func (m *mockStatusUC) ListOwnerJobs(ctx context.Context, ownerID string, limit int) ([]*usecase.JobView, error) {
	return m.ListOwnerJobsFunc(ctx, ownerID, limit)
}

type mockMetricsUC struct {
	OverviewFunc     func(ctx context.Context) *usecase.Overview
	OwnerSummaryFunc func(ctx context.Context, ownerID string) *usecase.OwnerSummary
}

func (m *mockMetricsUC) Overview(ctx context.Context) *usecase.Overview {
	return m.OverviewFunc(ctx)
}

func (m *mockMetricsUC) OwnerSummary(ctx context.Context, ownerID string) *usecase.OwnerSummary {
	return m.OwnerSummaryFunc(ctx, ownerID)
}
