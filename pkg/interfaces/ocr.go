package interfaces

import (
	"context"

	"github.com/nodewee/ocr-hub/pkg/types"
)

// ProgressFunc receives the engine's progress for one image, in [0,1]
type ProgressFunc func(progress float64)

// OCREngine defines the interface for different OCR implementations
type OCREngine interface {
	// Name returns the name of the OCR tool
	Name() string

	// Description returns a description of the OCR tool
	Description() string

	// Available reports whether the engine can run on this system
	Available() bool

	// Recognize extracts text from one encoded image. onProgress may be nil.
	Recognize(ctx context.Context, image []byte, language string, onProgress ProgressFunc) (string, error)
}

// OCRSelector handles the selection of OCR tool
type OCRSelector interface {
	// Select returns the engine for a strategy; auto picks the first available one
	Select(strategy types.OCRStrategy) (OCREngine, error)

	// Strategies returns all known OCR strategies in preference order
	Strategies() []types.OCRStrategy
}
