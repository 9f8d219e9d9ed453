package constants

import (
	"runtime"
)

// PlatformConfig lists where external tools usually live
type PlatformConfig struct {
	TesseractPaths   []string
	PdftoppmPaths    []string
	GhostscriptPaths []string
	FFmpegPaths      []string
	// CameraInputFormat is the ffmpeg demuxer for video devices
	CameraInputFormat string
	DefaultCamera     string
}

// GetPlatformConfig returns platform-specific configuration
func GetPlatformConfig() *PlatformConfig {
	switch runtime.GOOS {
	case "windows":
		return &PlatformConfig{
			TesseractPaths: []string{
				"tesseract.exe",
				"C:\\Program Files\\Tesseract-OCR\\tesseract.exe",
			},
			PdftoppmPaths: []string{
				"pdftoppm.exe",
				"C:\\Program Files\\poppler\\Library\\bin\\pdftoppm.exe",
			},
			GhostscriptPaths: []string{
				"gswin64c.exe",
				"gswin32c.exe",
				"C:\\Program Files\\gs\\gs*\\bin\\gswin64c.exe",
			},
			FFmpegPaths: []string{
				"ffmpeg.exe",
				"C:\\ffmpeg\\bin\\ffmpeg.exe",
			},
			CameraInputFormat: "dshow",
			DefaultCamera:     "video=Integrated Camera",
		}
	case "darwin":
		return &PlatformConfig{
			TesseractPaths:    []string{"tesseract", "/opt/homebrew/bin/tesseract", "/usr/local/bin/tesseract"},
			PdftoppmPaths:     []string{"pdftoppm", "/opt/homebrew/bin/pdftoppm", "/usr/local/bin/pdftoppm"},
			GhostscriptPaths:  []string{"gs", "/opt/homebrew/bin/gs", "/usr/local/bin/gs"},
			FFmpegPaths:       []string{"ffmpeg", "/opt/homebrew/bin/ffmpeg", "/usr/local/bin/ffmpeg"},
			CameraInputFormat: "avfoundation",
			DefaultCamera:     "0",
		}
	default: // Linux and other Unix-like systems
		return &PlatformConfig{
			TesseractPaths:    []string{"tesseract", "/usr/bin/tesseract", "/usr/local/bin/tesseract"},
			PdftoppmPaths:     []string{"pdftoppm", "/usr/bin/pdftoppm", "/usr/local/bin/pdftoppm"},
			GhostscriptPaths:  []string{"gs", "/usr/bin/gs", "/usr/local/bin/gs"},
			FFmpegPaths:       []string{"ffmpeg", "/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg"},
			CameraInputFormat: "v4l2",
			DefaultCamera:     "/dev/video0",
		}
	}
}

// IsWindows returns true if running on Windows
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
