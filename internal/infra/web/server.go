package web

import (
	"net/http"

	"pdf-ocr-service/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Server struct {
	submitUC  usecase.SubmitUseCase
	statusUC  usecase.StatusUseCase
	metricsUC usecase.MetricsUseCase

	apiKey   string
	maxBytes int64
	log      *zerolog.Logger
}

func NewServer(
	submitUC usecase.SubmitUseCase,
	statusUC usecase.StatusUseCase,
	metricsUC usecase.MetricsUseCase,
	apiKey string,
	maxBytes int64,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		submitUC:  submitUC,
		statusUC:  statusUC,
		metricsUC: metricsUC,
		apiKey:    apiKey,
		maxBytes:  maxBytes,
		log:       logger,
	}
}

func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/ocr", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Post("/status", s.handleStatusPublic)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{jobID}", s.handleStatus)
		r.Get("/download/{jobID}", s.handleDownload)
		r.Get("/dashboard", s.handleDashboard)
	})
	return r
}
