package utils

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/nodewee/ocr-hub/pkg/types"
)

// ImageMimeTypes maps image extensions to the MIME type browsers report for them
var ImageMimeTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
}

// FileExtension returns the lower-case extension without the dot
func FileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// DetectMIMEType sniffs the payload and falls back to the file extension
// when the content alone is not conclusive.
func DetectMIMEType(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	if sniffed == types.PDFMimeType || strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}

	ext := FileExtension(name)
	if ext == "pdf" {
		return types.PDFMimeType
	}
	if mime, ok := ImageMimeTypes[ext]; ok {
		return mime
	}
	return sniffed
}

// IsImageFile determines if a file is an image file by extension
func IsImageFile(extension string) bool {
	_, ok := ImageMimeTypes[strings.ToLower(extension)]
	return ok
}
