package adapter

// PDFInspector reads metadata out of a PDF on disk.
type PDFInspector interface {
	PageCount(path string) (int, error)
}
