//go:build cgo && ocr

package engines

import (
	"context"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// TesseractEngine runs libtesseract in process through gosseract
type TesseractEngine struct {
	logger *logger.Logger

	// libtesseract is not safe for concurrent use from one process
	mu sync.Mutex
}

// NewTesseractEngine creates the in-process tesseract engine
func NewTesseractEngine(_ *config.Config, log *logger.Logger) interfaces.OCREngine {
	if log == nil {
		log = logger.Nop()
	}
	return &TesseractEngine{logger: log}
}

// Name returns the name of the OCR tool
func (e *TesseractEngine) Name() string {
	return "tesseract"
}

// Description returns a description of the OCR tool
func (e *TesseractEngine) Description() string {
	return "Tesseract OCR (libtesseract " + gosseract.Version() + ")"
}

// Available reports whether libtesseract was linked in
func (e *TesseractEngine) Available() bool {
	return gosseract.Version() != ""
}

// Recognize extracts text from one encoded image
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte, language string, onProgress interfaces.ProgressFunc) (string, error) {
	if len(image) == 0 {
		return "", utils.NewValidationError("empty image", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", utils.WrapError(err, utils.ErrorTypeTimeout, "recognition was interrupted")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	client := gosseract.NewClient()
	defer client.Close()

	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			return "", utils.NewOCRError("failed to set tesseract language", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", utils.NewOCRError("failed to load image", err)
	}

	report(onProgress, 0)
	text, err := client.Text()
	if err != nil {
		return "", utils.NewOCRError("tesseract failed", err)
	}
	report(onProgress, 1)

	e.logger.Debug("tesseract: extracted %d characters", len(text))
	return text, nil
}
