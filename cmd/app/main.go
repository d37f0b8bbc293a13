package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf-ocr-service/internal/config"
	ocrAdapters "pdf-ocr-service/internal/infra/adapters/ocr"
	pg "pdf-ocr-service/internal/infra/db/postgres"
	"pdf-ocr-service/internal/infra/logging"
	"pdf-ocr-service/internal/infra/metrics"
	red "pdf-ocr-service/internal/infra/redis"
	"pdf-ocr-service/internal/infra/sched"
	"pdf-ocr-service/internal/infra/web"
	"pdf-ocr-service/internal/infra/worker"
	"pdf-ocr-service/internal/usecase"

	"github.com/rs/zerolog"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Storage directories ----
	for _, dir := range []string{cfg.Storage.InputDir, cfg.Storage.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal().Err(err).Str("dir", dir).Msg("storage dir init failed")
		}
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	statusCache := red.NewStatusCache(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	jobRepo := pg.NewOCRJobRepo(pool, tm)

	// ---- Adapters ----
	converter, err := ocrAdapters.NewOCRmyPDFAdapter(cfg.OCR, componentLogger(logger, "converter"))
	if err != nil {
		logger.Fatal().Err(err).Msg("ocrmypdf adapter init failed")
	}
	inspector := ocrAdapters.NewPDFCPUInspector()

	// ---- Use cases ----
	submitUC := usecase.NewSubmitUseCase(jobRepo, inspector, rateLimiter, usecase.SubmitConfig{
		InputDir:   cfg.Storage.InputDir,
		OutputDir:  cfg.Storage.OutputDir,
		MaxBytes:   cfg.Upload.MaxBytes,
		Retention:  cfg.Retention(),
		RateLimit:  cfg.Upload.RateLimit,
		RateWindow: cfg.Upload.RateWindow,
	}, componentLogger(logger, "submit"))
	statusUC := usecase.NewStatusUseCase(jobRepo, statusCache, componentLogger(logger, "status"))
	cleanupUC := usecase.NewCleanupUseCase(jobRepo, statusCache, cfg.Sweep.StaleProcessing, componentLogger(logger, "cleanup"))
	metricsUC := usecase.NewMetricsUseCase(jobRepo, componentLogger(logger, "dashboard"))

	// ---- Conversion workers ----
	workerPool := worker.NewPool(cfg.Worker.Count, componentLogger(logger, "worker_pool"))
	workerPool.Start(ctx)
	processor := worker.NewOCRJobProcessor(
		jobRepo, converter, inspector, statusCache,
		cfg.Worker.PollInterval, cfg.Worker.ConversionTimeout,
		componentLogger(logger, "processor"),
	)
	go processor.Start(ctx, workerPool)

	// ---- Retention sweeper ----
	sweeper := sched.NewCleanupWorker(cleanupUC, cfg.Sweep.Interval, componentLogger(logger, "sweeper"))
	go sweeper.Start(ctx)

	// ---- HTTP server ----
	srv := web.NewServer(submitUC, statusUC, metricsUC, cfg.Server.AdminAPIKey, cfg.Upload.MaxBytes, componentLogger(logger, "http"))
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Routes(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown incomplete")
	}

	cancel()
	workerPool.Stop()
	logger.Info().Msg("shutdown complete")
}

func componentLogger(base *zerolog.Logger, name string) *zerolog.Logger {
	l := base.With().Str("component", name).Logger()
	return &l
}
