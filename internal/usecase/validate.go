package usecase

import (
	"bytes"
	"fmt"
	"strings"

	"pdf-ocr-service/internal/domain"

	"github.com/gabriel-vasile/mimetype"
)

var pdfMagic = []byte("%PDF-")

// ValidateUpload checks an uploaded payload before any file or row is
// written. A nil return means the payload is acceptable.
func ValidateUpload(content []byte, filename string, maxBytes int64) *domain.ValidationError {
	if strings.TrimSpace(filename) == "" {
		return domain.NewValidationError(domain.ReasonNoFilename, "no filename provided")
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return domain.NewValidationError(domain.ReasonBadExtension, "only PDF files are supported")
	}
	if int64(len(content)) > maxBytes {
		return domain.NewValidationError(domain.ReasonTooLarge,
			fmt.Sprintf("file exceeds the %dMB limit", maxBytes/(1024*1024)))
	}
	if !bytes.HasPrefix(content, pdfMagic) {
		return domain.NewValidationError(domain.ReasonBadSignature, "file content is not a valid PDF")
	}
	// The magic prefix alone accepts polyglot payloads; let the sniffer
	// confirm the overall shape too.
	if mt := mimetype.Detect(content); !mt.Is("application/pdf") {
		return domain.NewValidationError(domain.ReasonBadSignature, "file content is not a valid PDF")
	}
	return nil
}
