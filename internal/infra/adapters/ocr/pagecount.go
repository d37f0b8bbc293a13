package ocr

import (
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"pdf-ocr-service/internal/domain/ports/adapter"
)

var _ adapter.PDFInspector = (*PDFCPUInspector)(nil)

// PDFCPUInspector counts pages with pdfcpu.
type PDFCPUInspector struct{}

func NewPDFCPUInspector() *PDFCPUInspector { return &PDFCPUInspector{} }

func (PDFCPUInspector) PageCount(path string) (int, error) {
	return pdfapi.PageCountFile(path)
}
