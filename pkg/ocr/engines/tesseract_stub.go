//go:build !cgo || !ocr

package engines

import (
	"context"

	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// TesseractEngine stands in for the in-process engine when the binary
// was built without the ocr tag. It is never available.
type TesseractEngine struct{}

// NewTesseractEngine creates the in-process tesseract engine
func NewTesseractEngine(_ *config.Config, _ *logger.Logger) interfaces.OCREngine {
	return &TesseractEngine{}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) Description() string {
	return "Tesseract OCR (in-process, build with -tags ocr)"
}

func (e *TesseractEngine) Available() bool { return false }

func (e *TesseractEngine) Recognize(context.Context, []byte, string, interfaces.ProgressFunc) (string, error) {
	return "", utils.NewOCRError("OCR engine 'tesseract' is not available on this system", nil)
}
