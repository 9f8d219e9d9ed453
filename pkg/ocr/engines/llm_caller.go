package engines

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// DefaultLLMTemplate is used when no template is configured
const DefaultLLMTemplate = "image-to-text"

// LLMCallerEngine uses llm-caller for text extraction
type LLMCallerEngine struct {
	toolEngine
	template string
}

// NewLLMCallerEngine creates a new LLM caller engine
func NewLLMCallerEngine(cfg *config.Config, log *logger.Logger) *LLMCallerEngine {
	template := cfg.LLMTemplate
	if template == "" {
		template = DefaultLLMTemplate
	}
	return &LLMCallerEngine{
		toolEngine: newToolEngine("llm-caller", "LLM Caller with configurable template", cfg.LLMCallerPath, log),
		template:   template,
	}
}

// Recognize extracts text from one encoded image. The template decides
// the model and prompt, so language is not passed on.
func (e *LLMCallerEngine) Recognize(ctx context.Context, image []byte, language string, onProgress interfaces.ProgressFunc) (string, error) {
	return e.recognizeWithFile(ctx, image, onProgress, func(tm interfaces.TempFileManager, imagePath string) (string, error) {
		outputDir, err := tm.CreateTempDir("llm_caller_results")
		if err != nil {
			return "", utils.NewIOError("failed to create output directory", err)
		}
		outputFile := utils.NormalizePath(filepath.Join(outputDir, "output.txt"))

		args := []string{
			"--template", e.template,
			"--file", imagePath,
			"--output", outputFile,
		}
		e.logger.Debug("Running %s %s", e.path, strings.Join(args, " "))
		if _, err := e.run(ctx, e.path, args...); err != nil {
			return "", e.classifyRunError(ctx, err)
		}

		content, err := os.ReadFile(outputFile)
		if err != nil {
			return "", utils.NewIOError("failed to read LLM output", err)
		}
		return string(content), nil
	})
}

var _ interfaces.OCREngine = (*LLMCallerEngine)(nil)
