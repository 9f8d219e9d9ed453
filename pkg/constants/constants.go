package constants

import "time"

// Application constants
const (
	AppName = "ocr-hub"
	// AppVersion is injected at build time through ldflags in main.go
)

// File processing constants
const (
	DefaultFilePermission = 0644
	DefaultDirPermission  = 0755

	// PageTextHeader prefixes each page of a multi-page result
	PageTextHeader = "--- Page %d ---"

	DefaultTextFileExtension = ".txt"
	DefaultDownloadName      = "extracted_text.txt"
	DownloadNameSuffix       = "_text.txt"
	CameraCaptureName        = "camera_capture.jpg"
)

// PDF rasterization
const (
	MaxPDFPages = 5
	RenderScale = 2.0
	JPEGQuality = 95
	// BaseDPI is the PDF user-space resolution; RenderScale multiplies it
	BaseDPI = 72
)

// Progress accounting. Recognition owns 0..RecognitionShare, finalization the rest.
const (
	RecognitionShare = 90
	ProgressComplete = 100
)

// Session limits
const (
	HistoryCapacity    = 10
	HistoryPreviewLen  = 100
	NotificationTTL    = 3 * time.Second
	PreviewMaxEdge     = 800
	MaxUploadSize      = 50 * 1024 * 1024
	MaxHTTPConnections = 64
)

// Camera defaults
const (
	CameraWidth  = 1920
	CameraHeight = 1080
	CameraFacing = "environment"
)

// OCR defaults
const (
	DefaultLanguage   = "eng"
	DefaultOCRRetries = 2
)

// Server defaults
const (
	DefaultListenAddr = "127.0.0.1:8088"
)
