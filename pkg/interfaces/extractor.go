package interfaces

import (
	"context"

	"github.com/nodewee/ocr-hub/pkg/types"
)

// Sink observes a pipeline run. It never influences the aggregation.
type Sink interface {
	// Progress reports the overall progress in 0..100
	Progress(percent int)

	// Notify shows a transient notification
	Notify(kind types.NotificationKind, message string)
}

// ExtractionResult holds the outcome of one pipeline run
type ExtractionResult struct {
	Text          string `json:"text"`
	FileName      string `json:"file_name"`
	Pages         int    `json:"pages"`
	EngineUsed    string `json:"engine_used"`
	RendererUsed  string `json:"renderer_used,omitempty"`
	ProcessTimeMS int64  `json:"process_time_ms"`
	FallbackUsed  bool   `json:"fallback_used,omitempty"`
}

// FileProcessor runs the recognition pipeline over a selected file
type FileProcessor interface {
	Process(ctx context.Context, file *types.SelectedFile, sink Sink) (*ExtractionResult, error)
}
