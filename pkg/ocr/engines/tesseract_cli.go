package engines

import (
	"context"
	"strings"

	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
)

// TesseractCLIEngine runs the tesseract binary and reads the text from stdout
type TesseractCLIEngine struct {
	toolEngine
}

// NewTesseractCLIEngine creates a new tesseract command line engine
func NewTesseractCLIEngine(cfg *config.Config, log *logger.Logger) *TesseractCLIEngine {
	return &TesseractCLIEngine{
		toolEngine: newToolEngine("tesseract-cli", "Tesseract OCR (command line)", cfg.TesseractPath, log),
	}
}

// Recognize extracts text from one encoded image
func (e *TesseractCLIEngine) Recognize(ctx context.Context, image []byte, language string, onProgress interfaces.ProgressFunc) (string, error) {
	return e.recognizeWithFile(ctx, image, onProgress, func(_ interfaces.TempFileManager, imagePath string) (string, error) {
		args := []string{imagePath, "stdout"}
		if language != "" {
			args = append(args, "-l", language)
		}

		e.logger.Debug("Running %s %s", e.path, strings.Join(args, " "))
		out, err := e.run(ctx, e.path, args...)
		if err != nil {
			return "", e.classifyRunError(ctx, err)
		}
		return string(out), nil
	})
}

var _ interfaces.OCREngine = (*TesseractCLIEngine)(nil)
