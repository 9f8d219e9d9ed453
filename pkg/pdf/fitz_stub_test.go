//go:build !cgo || nocgo

package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/ocr-hub/pkg/utils"
)

func TestFitzBackend_UnavailableWithoutCgo(t *testing.T) {
	backend := NewFitzBackend()
	assert.Equal(t, "fitz", backend.Name())
	assert.False(t, backend.Available())

	_, err := backend.Rasterize(context.Background(), minimalPDF(1), DefaultOptions())
	assert.True(t, utils.IsType(err, utils.ErrorTypeRendererUnavailable))
}

func TestRasterizer_SkipsFitzWithoutCgo(t *testing.T) {
	next := &fakeBackend{name: "pdftoppm", available: true, pages: 2}
	r := NewRasterizer(NewFallbackChain(NewFitzBackend(), next), utils.DefaultRetryPolicy(), nil)

	res, err := r.Rasterize(context.Background(), minimalPDF(2))
	require.NoError(t, err)
	assert.Equal(t, "pdftoppm", res.Renderer)
	assert.Equal(t, 1, res.Fallbacks)
	assert.Len(t, res.Pages, 2)
}
