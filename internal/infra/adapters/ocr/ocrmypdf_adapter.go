package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"pdf-ocr-service/internal/config"
	"pdf-ocr-service/internal/domain/ports/adapter"
)

var _ adapter.OCRConverter = (*OCRmyPDFAdapter)(nil)

// OCRmyPDFAdapter shells out to the ocrmypdf CLI. The option set is fixed at
// construction: deskew, auto-rotate, clean scan artifacts, archival PDF/A
// output, and skip pages that already contain a text layer.
type OCRmyPDFAdapter struct {
	binary string
	args   []string
	log    *zerolog.Logger
}

func NewOCRmyPDFAdapter(cfg config.OCRConfig, logger *zerolog.Logger) (*OCRmyPDFAdapter, error) {
	if cfg.Binary == "" {
		return nil, errors.New("ocr binary is required")
	}
	ocrLog := logger.With().Str("component", "OCRmyPDFAdapter").Logger()
	return &OCRmyPDFAdapter{
		binary: cfg.Binary,
		args:   buildArgs(cfg),
		log:    &ocrLog,
	}, nil
}

func buildArgs(cfg config.OCRConfig) []string {
	args := []string{"--language", cfg.Language, "--output-type", cfg.OutputType}
	if cfg.Deskew() {
		args = append(args, "--deskew")
	}
	if cfg.Rotate() {
		args = append(args, "--rotate-pages")
	}
	if cfg.Clean() {
		args = append(args, "--clean")
	}
	if cfg.SkipText() {
		args = append(args, "--skip-text")
	}
	return args
}

func (a *OCRmyPDFAdapter) Convert(ctx context.Context, inputPath, outputPath string) error {
	args := append(append([]string{}, a.args...), inputPath, outputPath)
	cmd := exec.CommandContext(ctx, a.binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	a.log.Debug().Str("input", inputPath).Str("output", outputPath).Msg("starting conversion")
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return fmt.Errorf("ocrmypdf: %w", err)
		}
		return fmt.Errorf("ocrmypdf: %w: %s", err, lastLine(detail))
	}
	return nil
}

// lastLine keeps the error message short; ocrmypdf prints its actual failure
// reason on the final stderr line.
func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
