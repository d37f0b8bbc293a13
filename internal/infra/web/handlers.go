package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"pdf-ocr-service/internal/domain"
	"pdf-ocr-service/internal/domain/model"
	"pdf-ocr-service/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
)

// uploadEnvelope is the slack allowed over the configured file-size limit
// for multipart framing and other form fields.
const uploadEnvelope = 1 << 20

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleUpload accepts a multipart PDF upload and enqueues a conversion job.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing owner identity")
		return
	}

	// The body cap leaves headroom over the file-size ceiling so a file
	// just past the limit still reaches the validator and gets the
	// reason-coded too-large response instead of a bare 413. The size
	// ceiling itself is enforced on the file content by validation.
	bodyCap := s.maxBytes + uploadEnvelope
	r.Body = http.MaxBytesReader(w, r.Body, bodyCap)
	if err := r.ParseMultipartForm(bodyCap); err != nil {
		metrics.IncUpload("rejected")
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	file, header, err := r.FormFile("pdf_file")
	if err != nil {
		metrics.IncUpload("rejected")
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		metrics.IncUpload("rejected")
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	job, err := s.submitUC.Submit(r.Context(), content, header.Filename, owner)
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}

	metrics.IncUpload("accepted")
	writeJSON(w, http.StatusCreated, map[string]string{
		"job_id":            job.JobID,
		"original_filename": job.OriginalFilename,
		"file_size":         model.FormatFileSize(job.FileSizeOriginal),
		"status":            string(job.Status),
	})
}

func (s *Server) writeSubmitError(w http.ResponseWriter, err error) {
	metrics.IncUpload("rejected")
	if verr, ok := domain.AsValidationError(err); ok {
		status := http.StatusBadRequest
		if verr.Reason == domain.ReasonTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse{Error: verr.Message, Reason: verr.Reason})
		return
	}
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "upload rate limit exceeded, try again later")
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("upload failed")
		writeError(w, http.StatusInternalServerError, "failed to accept upload")
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing owner identity")
		return
	}
	jobID := chi.URLParam(r, "jobID")

	view, err := s.statusUC.GetStatus(r.Context(), jobID, owner)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.log.Error().Err(err).Str("job_id", jobID).Msg("status lookup failed")
		writeError(w, http.StatusInternalServerError, "status lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleStatusPublic is the unauthenticated form-based polling endpoint.
// It only requires knowing the job id, which is an unguessable UUID. A
// missing job is rendered as a well-formed "not found" view with 200 so
// dashboard pollers never see an error page.
func (s *Server) handleStatusPublic(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimSpace(r.FormValue("job_id"))
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	view, err := s.statusUC.GetStatusPublic(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]string{
				"job_id": jobID,
				"error":  "job not found, please check your job id",
			})
			return
		}
		s.log.Error().Err(err).Str("job_id", jobID).Msg("status lookup failed")
		writeJSON(w, http.StatusOK, map[string]string{
			"job_id": jobID,
			"error":  "unable to check job status, please try again",
		})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing owner identity")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	views, err := s.statusUC.ListOwnerJobs(r.Context(), owner, limit)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", owner).Msg("job listing failed")
		writeError(w, http.StatusInternalServerError, "job listing failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": views, "count": len(views)})
}

// handleDownload streams the converted PDF. Like the public status check
// it is gated only by knowledge of the job id.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	path, filename, err := s.statusUC.Download(r.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotReady):
			writeError(w, http.StatusNotFound, "conversion not completed yet")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "job not found")
		default:
			s.log.Error().Err(err).Str("job_id", jobID).Msg("download failed")
			writeError(w, http.StatusInternalServerError, "download failed")
		}
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

// handleDashboard serves the platform overview to admins and a personal
// summary to regular owners.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.isAdmin(r) {
		writeJSON(w, http.StatusOK, s.metricsUC.Overview(r.Context()))
		return
	}
	if owner := ownerID(r); owner != "" {
		writeJSON(w, http.StatusOK, s.metricsUC.OwnerSummary(r.Context(), owner))
		return
	}
	writeError(w, http.StatusUnauthorized, "missing owner identity")
}
