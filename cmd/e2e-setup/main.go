package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"pdf-ocr-service/internal/config"
	"pdf-ocr-service/internal/infra/db/postgres"
	"pdf-ocr-service/internal/infra/redis"
)

// This script sets up a clean, predictable state for manual end-to-end
// testing: schema applied, tables emptied, cache flushed, storage
// directories recreated.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 5)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer redisClient.Close()

	log.Println("--- Starting E2E Environment Setup ---")

	log.Println("[1/4] Applying schema...")
	schema, err := os.ReadFile(filepath.Join("deploy", "postgres", "init.sql"))
	if err != nil {
		log.Fatalf("failed to read init.sql: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	log.Println("[2/4] Wiping job table...")
	if _, err := pool.Exec(ctx, `TRUNCATE ocr_jobs;`); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	log.Println("[3/4] Wiping Redis cache...")
	if err := redisClient.FlushDB(ctx); err != nil {
		log.Fatalf("failed to flush redis: %v", err)
	}

	log.Println("[4/4] Resetting storage directories...")
	for _, dir := range []string{cfg.Storage.InputDir, cfg.Storage.OutputDir} {
		if err := os.RemoveAll(dir); err != nil {
			log.Fatalf("failed to clear %s: %v", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	log.Println("--- E2E Environment Setup Complete ---")
}
