package interfaces

import (
	"context"

	"github.com/nodewee/ocr-hub/pkg/types"
)

// RasterOptions controls how PDF pages are rendered
type RasterOptions struct {
	MaxPages    int
	Scale       float64
	JPEGQuality int
}

// RasterBackend renders PDF pages into JPEG images
type RasterBackend interface {
	// Name identifies the backend in configuration and logs
	Name() string

	// Available reports whether the backend can run on this system
	Available() bool

	// Rasterize renders pages 1..min(pageCount, opts.MaxPages) in order
	Rasterize(ctx context.Context, pdf []byte, opts RasterOptions) ([]types.PageImage, error)
}
