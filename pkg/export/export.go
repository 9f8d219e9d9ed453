// Package export moves extracted text out of the session: files,
// downloads, the clipboard and history reports.
package export

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// DownloadName returns the file name a text download is offered under:
// extracted_text.txt without a source, <fileName>_text.txt otherwise.
func DownloadName(fileName string) string {
	if strings.TrimSpace(fileName) == "" {
		return constants.DefaultDownloadName
	}
	return fileName + constants.DownloadNameSuffix
}

// WriteText writes text to w byte for byte
func WriteText(w io.Writer, text string) error {
	if _, err := io.WriteString(w, text); err != nil {
		return utils.NewIOError("failed to write text", err)
	}
	return nil
}

// SaveText writes text to dir/name through a temporary file that is
// renamed into place, and returns the final path.
func SaveText(dir, name, text string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", utils.NewIOError("failed to create output directory", err)
	}

	target := filepath.Join(dir, utils.SanitizeFileName(name))
	tmp, err := os.CreateTemp(dir, ".ocr-hub-*.tmp")
	if err != nil {
		return "", utils.NewIOError("failed to create temporary file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteText(tmp, text); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", utils.NewIOError("failed to close temporary file", err)
	}
	if err := os.Chmod(tmpName, constants.DefaultFilePermission); err != nil {
		return "", utils.NewIOError("failed to set file permissions", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", utils.NewIOError("failed to save text file", err)
	}
	return utils.NormalizePath(target), nil
}

// Stats returns the character and word counts shown under the editor
func Stats(text string) (chars, words int) {
	return utf8.RuneCountInString(text), len(strings.Fields(text))
}
