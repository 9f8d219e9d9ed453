package interfaces

import "context"

// CameraConstraints are best-effort hints for the video capability
type CameraConstraints struct {
	Width  int
	Height int
	Facing string
	Device string
}

// Camera acquires a video capability
type Camera interface {
	Start(ctx context.Context, constraints CameraConstraints) (CameraStream, error)
}

// CameraStream is a live video capability. Frames are JPEG encoded.
type CameraStream interface {
	// Preview returns the most recent frame for display
	Preview(ctx context.Context) ([]byte, error)

	// Snapshot freezes the current frame
	Snapshot(ctx context.Context) ([]byte, error)

	// Close releases the device
	Close() error
}

// Clipboard writes text to the system clipboard
type Clipboard interface {
	WriteText(text string) error
}
