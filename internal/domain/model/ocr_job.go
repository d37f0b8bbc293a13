package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"pdf-ocr-service/internal/domain"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions may occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// OCRJob tracks one PDF conversion request end-to-end. The record is created
// by submission in 'pending', mutated exactly twice by the worker
// (pending->processing, then processing->completed|failed), and deleted only
// by the retention sweeper once CleanupAfter has passed.
type OCRJob struct {
	JobID              string
	OwnerID            string
	OriginalFilename   string
	OriginalPath       string
	ConvertedPath      string
	Status             JobStatus
	FileSizeOriginal   int64
	FileSizeConverted  int64
	PageCount          int
	ProcessingDuration int64 // wall-clock seconds, set on completion
	ErrorMessage       string
	CreatedAt          time.Time
	CompletedAt        time.Time
	UpdatedAt          time.Time
	CleanupAfter       time.Time
}

// NewOCRJob builds a pending job. CleanupAfter is fixed here and is never
// recomputed afterwards; conversion activity does not extend it.
func NewOCRJob(jobID, ownerID, originalFilename, originalPath, convertedPath string, sizeOriginal int64, retention time.Duration) (*OCRJob, error) {
	if jobID == "" || ownerID == "" || originalFilename == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	return &OCRJob{
		JobID:            jobID,
		OwnerID:          ownerID,
		OriginalFilename: originalFilename,
		OriginalPath:     originalPath,
		ConvertedPath:    convertedPath,
		Status:           JobStatusPending,
		FileSizeOriginal: sizeOriginal,
		CreatedAt:        now,
		UpdatedAt:        now,
		CleanupAfter:     now.Add(retention),
	}, nil
}

// MarkProcessing claims the job for a worker.
func (j *OCRJob) MarkProcessing() error {
	if j.Status != JobStatusPending {
		return domain.ErrInvalidTransition
	}
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkCompleted records the conversion result.
func (j *OCRJob) MarkCompleted(sizeConverted int64, pages int, duration time.Duration) error {
	if j.Status != JobStatusProcessing {
		return domain.ErrInvalidTransition
	}
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.FileSizeConverted = sizeConverted
	if pages > 0 {
		j.PageCount = pages
	}
	j.ProcessingDuration = int64(duration.Seconds())
	j.CompletedAt = now
	j.UpdatedAt = now
	return nil
}

// MarkFailed records a terminal conversion failure. No retry follows.
func (j *OCRJob) MarkFailed(message string) error {
	if j.Status != JobStatusProcessing {
		return domain.ErrInvalidTransition
	}
	if message == "" {
		message = "conversion failed"
	}
	now := time.Now().UTC()
	j.Status = JobStatusFailed
	j.ErrorMessage = message
	j.CompletedAt = now
	j.UpdatedAt = now
	return nil
}

// Expired reports whether the job is past its retention window.
func (j *OCRJob) Expired(now time.Time) bool {
	return !j.CleanupAfter.After(now)
}

// DownloadFilename derives the name served to download callers.
func (j *OCRJob) DownloadFilename() string {
	stem := strings.TrimSuffix(j.OriginalFilename, filepath.Ext(j.OriginalFilename))
	if stem == "" {
		stem = j.JobID
	}
	return stem + "_ocr_converted.pdf"
}

// FormatFileSize renders a byte count for humans.
func FormatFileSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	case size < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/(1024*1024*1024))
	}
}
