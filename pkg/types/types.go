package types

import (
	"fmt"
	"strings"
)

// MediaType represents the kind of payload a capture produced
type MediaType string

const (
	ImageMediaType       MediaType = "image"
	PDFMediaType         MediaType = "pdf"
	UnsupportedMediaType MediaType = "unsupported"
)

// OCRStrategy represents the OCR engines that can be selected
type OCRStrategy string

const (
	OCRStrategyAuto         OCRStrategy = "auto"
	OCRStrategyTesseract    OCRStrategy = "tesseract"
	OCRStrategyTesseractCLI OCRStrategy = "tesseract-cli"
	OCRStrategySuryaOCR     OCRStrategy = "surya_ocr"
	OCRStrategyLLMCaller    OCRStrategy = "llm-caller"
)

// NotificationKind is the severity of a transient banner
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationInfo    NotificationKind = "info"
)

// CaptureSource identifies where a SelectedFile came from
type CaptureSource string

const (
	SourceDrop   CaptureSource = "drop"
	SourcePicker CaptureSource = "picker"
	SourceCamera CaptureSource = "camera"
	SourceCLI    CaptureSource = "cli"
)

// PDFMimeType is the only non-image type accepted by capture sources
const PDFMimeType = "application/pdf"

// SelectedFile is the payload chosen by the most recent capture event
type SelectedFile struct {
	Name     string        `json:"name"`
	MIMEType string        `json:"mime_type"`
	Size     int64         `json:"size"`
	Data     []byte        `json:"-"`
	Source   CaptureSource `json:"source"`
}

// MediaType classifies the file by MIME type
func (f *SelectedFile) MediaType() MediaType {
	switch {
	case f.MIMEType == PDFMimeType:
		return PDFMediaType
	case strings.HasPrefix(f.MIMEType, "image/"):
		return ImageMediaType
	default:
		return UnsupportedMediaType
	}
}

// IsPDF reports whether the file must go through the rasterizer
func (f *SelectedFile) IsPDF() bool {
	return f.MediaType() == PDFMediaType
}

// SizeMB formats the size the way the result panel shows it
func (f *SelectedFile) SizeMB() string {
	return fmt.Sprintf("%.2f MB", float64(f.Size)/1024/1024)
}

// PageImage is one rasterized PDF page, encoded as JPEG
type PageImage struct {
	Data       []byte
	PageNumber int
}
