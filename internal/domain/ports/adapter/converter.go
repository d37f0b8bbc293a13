package adapter

import "context"

// OCRConverter is the opaque conversion engine: read the input PDF, write a
// searchable output PDF, return an error on failure. Implementations must
// honor ctx cancellation so a hung conversion can be forcibly failed.
type OCRConverter interface {
	Convert(ctx context.Context, inputPath, outputPath string) error
}
