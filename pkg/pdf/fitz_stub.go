//go:build !cgo || nocgo

package pdf

import (
	"context"
	"errors"

	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// FitzBackend stands in for the MuPDF renderer in builds without cgo.
// It is never available, so the chain moves on to the next renderer.
type FitzBackend struct{}

var _ interfaces.RasterBackend = (*FitzBackend)(nil)

// NewFitzBackend creates the MuPDF backend
func NewFitzBackend() *FitzBackend {
	return &FitzBackend{}
}

func (b *FitzBackend) Name() string { return "fitz" }

func (b *FitzBackend) Available() bool { return false }

func (b *FitzBackend) Rasterize(context.Context, []byte, interfaces.RasterOptions) ([]types.PageImage, error) {
	return nil, utils.NewRendererUnavailableError(errors.New("fitz: built without cgo"))
}
