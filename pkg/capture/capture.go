package capture

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// FormField is the multipart field the upload form sends files in
const FormField = "file"

// AcceptedMIMETypes lists what the drop zone and file picker take
var AcceptedMIMETypes = map[string]bool{
	"image/png":       true,
	"image/jpg":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/bmp":       true,
	"image/webp":      true,
	types.PDFMimeType: true,
}

// Accepts reports whether a file with this MIME type and name can be captured.
// A missing or generic MIME type falls back to the file extension.
func Accepts(mimeType, name string) bool {
	mimeType = baseMIME(mimeType)
	if AcceptedMIMETypes[mimeType] {
		return true
	}
	if mimeType != "" && mimeType != "application/octet-stream" {
		return false
	}
	ext := utils.FileExtension(name)
	return ext == "pdf" || utils.IsImageFile(ext)
}

func baseMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// resolveMIME keeps an accepted declared type and sniffs everything else
func resolveMIME(name, declared string, data []byte) string {
	if declared = baseMIME(declared); AcceptedMIMETypes[declared] {
		return declared
	}
	return utils.DetectMIMEType(name, data)
}

// NewSelectedFile builds a SelectedFile from a payload, rejecting types
// the pipeline cannot read
func NewSelectedFile(name, declaredMIME string, data []byte, source types.CaptureSource) (*types.SelectedFile, error) {
	if len(data) == 0 {
		return nil, utils.NewValidationError(fmt.Sprintf("file %s is empty", name), nil)
	}

	mimeType := resolveMIME(name, declaredMIME, data)
	if !Accepts(mimeType, name) {
		return nil, utils.NewUnsupportedError(fmt.Sprintf("unsupported file type: %s", mimeType), nil).
			WithContext("file", name)
	}

	return &types.SelectedFile{
		Name:     name,
		MIMEType: mimeType,
		Size:     int64(len(data)),
		Data:     data,
		Source:   source,
	}, nil
}

// FromMultipart takes the first file of the upload form. Extra files are ignored.
func FromMultipart(form *multipart.Form, source types.CaptureSource) (*types.SelectedFile, error) {
	if form == nil || len(form.File[FormField]) == 0 {
		return nil, utils.NewValidationError("no file provided", nil)
	}
	header := form.File[FormField][0]
	if header.Size > constants.MaxUploadSize {
		return nil, utils.NewValidationError(fmt.Sprintf("file %s exceeds the upload limit", header.Filename), nil)
	}

	f, err := header.Open()
	if err != nil {
		return nil, utils.NewIOError("failed to open uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, constants.MaxUploadSize))
	if err != nil {
		return nil, utils.NewIOError("failed to read uploaded file", err)
	}

	return NewSelectedFile(filepath.Base(header.Filename), header.Header.Get("Content-Type"), data, source)
}

// FromPath reads a file given on the command line
func FromPath(path string) (*types.SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, utils.NewNotFoundError(fmt.Sprintf("file not found: %s", path), err)
		}
		return nil, utils.NewIOError("failed to access file", err)
	}
	if info.IsDir() {
		return nil, utils.NewValidationError(fmt.Sprintf("%s is a directory", path), nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewIOError("failed to read file", err)
	}
	return NewSelectedFile(filepath.Base(path), "", data, types.SourceCLI)
}

// SourceFromForm maps the form's "source" value to a capture source.
// Anything other than "drop" counts as the file picker.
func SourceFromForm(form *multipart.Form) types.CaptureSource {
	if form != nil {
		if values := form.Value["source"]; len(values) > 0 && values[0] == string(types.SourceDrop) {
			return types.SourceDrop
		}
	}
	return types.SourcePicker
}
