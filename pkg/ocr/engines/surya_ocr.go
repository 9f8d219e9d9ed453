package engines

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// SuryaOCREngine uses surya_ocr for text extraction
type SuryaOCREngine struct {
	toolEngine
}

// SuryaOCRResult represents the structure of surya_ocr JSON output
type SuryaOCRResult map[string][]SuryaPageResult

type SuryaPageResult struct {
	TextLines []SuryaTextLine `json:"text_lines"`
	Languages interface{}     `json:"languages"`
	ImageBbox []float64       `json:"image_bbox"`
	Page      int             `json:"page"`
}

type SuryaTextLine struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	Polygon    [][]float64 `json:"polygon"`
	Bbox       []float64   `json:"bbox"`
}

// NewSuryaOCREngine creates a new Surya OCR engine
func NewSuryaOCREngine(cfg *config.Config, log *logger.Logger) *SuryaOCREngine {
	return &SuryaOCREngine{
		toolEngine: newToolEngine("surya_ocr", "Surya OCR (local OCR tool)", cfg.SuryaOCRPath, log),
	}
}

// Recognize extracts text from one encoded image. Surya detects the
// language itself, so language is not passed on.
func (e *SuryaOCREngine) Recognize(ctx context.Context, image []byte, language string, onProgress interfaces.ProgressFunc) (string, error) {
	return e.recognizeWithFile(ctx, image, onProgress, func(tm interfaces.TempFileManager, imagePath string) (string, error) {
		outputDir, err := tm.CreateTempDir("surya_ocr_results")
		if err != nil {
			return "", utils.NewIOError("failed to create output directory", err)
		}

		e.logger.Debug("Running Surya OCR on %s", imagePath)
		if _, err := e.run(ctx, e.path, "--output_dir", outputDir, imagePath); err != nil {
			return "", e.classifyRunError(ctx, err)
		}

		return e.parseOCRResults(outputDir, filepath.Base(imagePath))
	})
}

// parseOCRResults reads results.json from the subdirectory surya names
// after the input file.
func (e *SuryaOCREngine) parseOCRResults(outputDir, fileName string) (string, error) {
	baseName := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	resultsPath := utils.NormalizePath(filepath.Join(outputDir, baseName, "results.json"))

	content, err := os.ReadFile(resultsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", utils.NewOCRError(fmt.Sprintf("no results.json found at %s", resultsPath), err)
		}
		return "", utils.NewIOError("error reading results.json", err)
	}

	var results SuryaOCRResult
	if err := json.Unmarshal(content, &results); err != nil {
		return "", utils.NewOCRError("error parsing surya results", err)
	}

	// Map iteration order is random; keep the output stable
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var textBuilder strings.Builder
	for _, key := range keys {
		for _, page := range results[key] {
			for _, textLine := range page.TextLines {
				if strings.TrimSpace(textLine.Text) != "" {
					textBuilder.WriteString(textLine.Text)
					textBuilder.WriteString("\n")
				}
			}
		}
	}

	// An image without text is not an engine failure
	return strings.TrimSpace(textBuilder.String()), nil
}

var _ interfaces.OCREngine = (*SuryaOCREngine)(nil)
