package ports

import "context"

// Page is one rasterised page image.
type Page struct {
	Number    int
	Data      []byte
	MediaType string
}

type RasterizerPort interface {
	// Rasterize renders a PDF into page images, first page first.
	Rasterize(ctx context.Context, pdf []byte) ([]Page, error)
}

type InspectorPort interface {
	// Detect resolves an upload to one of the accepted media types.
	Detect(filename, declared string, data []byte) (string, error)
	ValidateImage(data []byte) error
}
