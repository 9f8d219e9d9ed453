package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nodewee/ocr-hub/pkg/constants"
)

// PathUtils provides cross-platform path utilities
type PathUtils struct{}

// NewPathUtils creates a new PathUtils instance
func NewPathUtils() *PathUtils {
	return &PathUtils{}
}

// NormalizePath normalizes a path for the current platform
func (p *PathUtils) NormalizePath(path string) string {
	cleaned := filepath.Clean(path)

	// Upper-case drive letters on Windows
	if constants.IsWindows() && len(cleaned) >= 2 && cleaned[1] == ':' {
		if cleaned[0] >= 'a' && cleaned[0] <= 'z' {
			cleaned = strings.ToUpper(string(cleaned[0])) + cleaned[1:]
		}
	}

	return cleaned
}

// EnsureDir creates a directory if it doesn't exist
func (p *PathUtils) EnsureDir(dirPath string) error {
	if dirPath == "" {
		return fmt.Errorf("directory path cannot be empty")
	}
	return os.MkdirAll(p.NormalizePath(dirPath), constants.DefaultDirPermission)
}

// CreateTempDir creates a temporary directory under base, or the system temp dir
func (p *PathUtils) CreateTempDir(base, prefix string) (string, error) {
	if base == "" {
		base = os.TempDir()
	}
	if !strings.HasSuffix(prefix, "-") {
		prefix += "-"
	}

	dir, err := os.MkdirTemp(base, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	return p.NormalizePath(dir), nil
}

// IsExecutable checks if a file is executable on the current platform
func (p *PathUtils) IsExecutable(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return false
	}

	if constants.IsWindows() {
		ext := strings.ToLower(filepath.Ext(filePath))
		return ext == ".exe" || ext == ".bat" || ext == ".cmd"
	}
	return info.Mode()&0111 != 0
}

// GetExecutableName returns the platform-appropriate executable name
func (p *PathUtils) GetExecutableName(baseName string) string {
	if constants.IsWindows() && !strings.HasSuffix(strings.ToLower(baseName), ".exe") {
		return baseName + ".exe"
	}
	return baseName
}

// SanitizeFileName sanitizes a filename for the current platform
func (p *PathUtils) SanitizeFileName(filename string) string {
	sanitized := filename

	if constants.IsWindows() {
		invalidChars := []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*"}
		for _, char := range invalidChars {
			sanitized = strings.ReplaceAll(sanitized, char, "_")
		}
		sanitized = strings.TrimRight(sanitized, ". ")
	} else {
		sanitized = strings.ReplaceAll(sanitized, "/", "_")
		sanitized = strings.ReplaceAll(sanitized, "\x00", "_")
	}

	if strings.TrimSpace(sanitized) == "" {
		sanitized = "unnamed_file"
	}

	return sanitized
}

// DefaultPathUtils is the shared instance behind the package-level helpers
var DefaultPathUtils = NewPathUtils()

func NormalizePath(path string) string {
	return DefaultPathUtils.NormalizePath(path)
}

func EnsureDir(dirPath string) error {
	return DefaultPathUtils.EnsureDir(dirPath)
}

func SanitizeFileName(filename string) string {
	return DefaultPathUtils.SanitizeFileName(filename)
}
