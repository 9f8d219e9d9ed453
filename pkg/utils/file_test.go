package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMIMEType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	pdf := []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	tests := []struct {
		name     string
		fileName string
		data     []byte
		want     string
	}{
		{"png by content", "scan.bin", png, "image/png"},
		{"pdf by content", "doc", pdf, "application/pdf"},
		{"webp by extension", "photo.WEBP", []byte("garbage"), "image/webp"},
		{"jpg extension", "a.jpg", []byte("garbage"), "image/jpeg"},
		{"pdf by extension", "x.pdf", []byte("garbage"), "application/pdf"},
		{"unknown", "notes.txt", []byte("hello"), "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMIMEType(tt.fileName, tt.data))
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "a_b.png", SanitizeFileName("a/b.png"))
	assert.Equal(t, "unnamed_file", SanitizeFileName("  "))
}
