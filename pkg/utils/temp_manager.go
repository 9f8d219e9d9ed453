package utils

import (
	"fmt"
	"os"
	"sync"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
)

// SimpleTempManager manages scratch files handed to external tools.
// Directory structure: {base}/ocr-hub-*/
type SimpleTempManager struct {
	parent     string
	baseDir    string
	tempFiles  []string
	tempDirs   []string
	mu         sync.Mutex
	logger     *logger.Logger
	cleanupFns []func() error
}

var _ interfaces.TempFileManager = (*SimpleTempManager)(nil)

// NewSimpleTempManager creates a manager rooted under parent (system temp dir when empty)
func NewSimpleTempManager(parent string, log *logger.Logger) *SimpleTempManager {
	if log == nil {
		log = logger.Nop()
	}
	return &SimpleTempManager{
		parent: parent,
		logger: log,
	}
}

// EnsureBaseDir lazily creates the per-run scratch directory
func (tm *SimpleTempManager) EnsureBaseDir() error {
	if tm.baseDir != "" {
		return nil
	}
	dir, err := DefaultPathUtils.CreateTempDir(tm.parent, constants.AppName)
	if err != nil {
		return err
	}
	tm.baseDir = dir
	tm.tempDirs = append(tm.tempDirs, dir)
	return nil
}

// GetBasePath returns the scratch directory, empty before first use
func (tm *SimpleTempManager) GetBasePath() string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.baseDir
}

// CreateTempDir creates a temporary directory
func (tm *SimpleTempManager) CreateTempDir(prefix string) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.EnsureBaseDir(); err != nil {
		return "", fmt.Errorf("failed to ensure base directory: %w", err)
	}

	sanitizedPrefix := SanitizeFileName(prefix)
	tempDir, err := DefaultPathUtils.CreateTempDir(tm.baseDir, sanitizedPrefix)
	if err != nil {
		return "", err
	}

	tm.tempDirs = append(tm.tempDirs, tempDir)
	tm.logger.Debug("Created temp directory: %s", tempDir)
	return tempDir, nil
}

// WriteTempFile writes data into a new temporary file
func (tm *SimpleTempManager) WriteTempFile(prefix, suffix string, data []byte) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.EnsureBaseDir(); err != nil {
		return "", fmt.Errorf("failed to ensure base directory: %w", err)
	}

	f, err := os.CreateTemp(tm.baseDir, SanitizeFileName(prefix)+"-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := NormalizePath(f.Name())
	tm.tempFiles = append(tm.tempFiles, path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	tm.logger.Debug("Created temp file: %s (%d bytes)", path, len(data))
	return path, nil
}

// RegisterCleanupFunc registers a cleanup function
func (tm *SimpleTempManager) RegisterCleanupFunc(fn func() error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.cleanupFns = append(tm.cleanupFns, fn)
}

// WithCleanup executes a function with automatic cleanup
func (tm *SimpleTempManager) WithCleanup(fn func() error) error {
	defer func() {
		if err := tm.Cleanup(); err != nil {
			tm.logger.Error("Temporary file cleanup failed: %v", err)
		}
	}()
	return fn()
}

// Cleanup removes everything the manager created
func (tm *SimpleTempManager) Cleanup() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	var errs []error

	for _, fn := range tm.cleanupFns {
		if err := fn(); err != nil {
			errs = append(errs, err)
			tm.logger.Warn("Cleanup function failed: %v", err)
		}
	}

	for _, file := range tm.tempFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove temp file %s: %w", file, err))
		}
	}

	// Reverse order so nested directories go before their parents
	for i := len(tm.tempDirs) - 1; i >= 0; i-- {
		dir := tm.tempDirs[i]
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove temp dir %s: %w", dir, err))
		}
	}

	tm.tempFiles = tm.tempFiles[:0]
	tm.tempDirs = tm.tempDirs[:0]
	tm.cleanupFns = tm.cleanupFns[:0]
	tm.baseDir = ""

	if len(errs) > 0 {
		return fmt.Errorf("cleanup failed with %d errors: %v", len(errs), errs)
	}

	return nil
}
