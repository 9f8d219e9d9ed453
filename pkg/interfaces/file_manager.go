package interfaces

// FileManager defines the interface for file and directory management
type FileManager interface {
	// EnsureBaseDir ensures the base directory exists
	EnsureBaseDir() error

	// GetBasePath returns the base path for file operations
	GetBasePath() string

	// Cleanup performs cleanup operations
	Cleanup() error
}

// TempFileManager manages scratch files used while an external tool runs.
// Everything it creates is removed by Cleanup.
type TempFileManager interface {
	FileManager

	// CreateTempDir creates a temporary directory
	CreateTempDir(prefix string) (string, error)

	// WriteTempFile writes data to a new temporary file and returns its path
	WriteTempFile(prefix, suffix string, data []byte) (string, error)

	// RegisterCleanupFunc registers a cleanup function
	RegisterCleanupFunc(fn func() error)

	// WithCleanup executes a function with automatic cleanup
	WithCleanup(fn func() error) error
}
