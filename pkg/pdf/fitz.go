//go:build cgo && !nocgo

package pdf

import (
	"context"
	"errors"
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// FitzBackend renders in-process with MuPDF
type FitzBackend struct{}

var _ interfaces.RasterBackend = (*FitzBackend)(nil)

// NewFitzBackend creates the MuPDF backend
func NewFitzBackend() *FitzBackend {
	return &FitzBackend{}
}

func (b *FitzBackend) Name() string { return "fitz" }

func (b *FitzBackend) Available() bool { return true }

// Rasterize renders pages one at a time; each raster is encoded and dropped
// before the next page is drawn.
func (b *FitzBackend) Rasterize(ctx context.Context, data []byte, opts interfaces.RasterOptions) (pages []types.PageImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = utils.NewRendererUnavailableError(fmt.Errorf("mupdf: %v", r))
		}
	}()

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		// the context may already exist when opening fails
		if doc != nil {
			doc.Close()
		}
		return nil, classifyFitzError(err)
	}
	defer doc.Close()

	total := doc.NumPage()
	if total > opts.MaxPages {
		total = opts.MaxPages
	}
	dpi := float64(constants.BaseDPI) * opts.Scale

	pages = make([]types.PageImage, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := doc.ImageDPI(i, dpi)
		if err != nil {
			return nil, classifyFitzError(fmt.Errorf("page %d: %w", i+1, err))
		}

		encoded, err := encodeJPEG(img, opts.JPEGQuality)
		if err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}
		pages = append(pages, types.PageImage{Data: encoded, PageNumber: i + 1})
	}

	return pages, nil
}

func classifyFitzError(err error) error {
	switch {
	case errors.Is(err, fitz.ErrNeedsPassword):
		return utils.NewPasswordProtectedError(err)
	case errors.Is(err, fitz.ErrOpenMemory), errors.Is(err, fitz.ErrOpenDocument), errors.Is(err, fitz.ErrPageMissing):
		return utils.NewCorruptDocumentError(err)
	case errors.Is(err, fitz.ErrCreateContext):
		return utils.NewRendererUnavailableError(err)
	default:
		return err
	}
}
