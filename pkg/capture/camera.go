package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// frameRunner runs ffmpeg and returns the encoded frame written to stdout
type frameRunner func(ctx context.Context, path string, args ...string) ([]byte, error)

func runFFmpeg(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// FFmpegCamera grabs frames from a local video device with ffmpeg
type FFmpegCamera struct {
	path        string
	inputFormat string
	logger      *logger.Logger
	run         frameRunner
}

// NewFFmpegCamera creates a camera using the platform's ffmpeg input format
func NewFFmpegCamera(path string, log *logger.Logger) *FFmpegCamera {
	if log == nil {
		log = logger.Nop()
	}
	return &FFmpegCamera{
		path:        path,
		inputFormat: constants.GetPlatformConfig().CameraInputFormat,
		logger:      log,
		run:         runFFmpeg,
	}
}

// Available reports whether ffmpeg can be found
func (c *FFmpegCamera) Available() bool {
	if c.path == "" {
		return false
	}
	_, err := exec.LookPath(c.path)
	return err == nil
}

// Start opens the device by grabbing a first frame. The requested size is
// a hint: when the device rejects it the native size is used instead.
// ffmpeg has no notion of facing, so that constraint is ignored.
func (c *FFmpegCamera) Start(ctx context.Context, constraints interfaces.CameraConstraints) (interfaces.CameraStream, error) {
	if c.path == "" {
		return nil, utils.NewCameraUnavailableError(errors.New("ffmpeg is not configured"))
	}

	device := constraints.Device
	if device == "" {
		device = constants.GetPlatformConfig().DefaultCamera
	}

	s := &ffmpegStream{camera: c, device: device}
	if constraints.Width > 0 && constraints.Height > 0 {
		s.size = strconv.Itoa(constraints.Width) + "x" + strconv.Itoa(constraints.Height)
	}

	frame, err := s.grab(ctx)
	if err != nil && s.size != "" {
		c.logger.Debug("Camera rejected %s, retrying at native size: %v", s.size, err)
		s.size = ""
		frame, err = s.grab(ctx)
	}
	if err != nil {
		return nil, utils.NewCameraUnavailableError(err)
	}

	s.last = frame
	c.logger.Info("Camera %s opened", device)
	return s, nil
}

func (c *FFmpegCamera) args(device, size string) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-f", c.inputFormat}
	if size != "" {
		args = append(args, "-video_size", size)
	}
	return append(args, "-i", device, "-frames:v", "1", "-f", "image2pipe", "-vcodec", "mjpeg", "-")
}

// ffmpegStream is an opened device. Each frame is one ffmpeg run.
type ffmpegStream struct {
	camera *FFmpegCamera
	device string
	size   string

	mu     sync.Mutex
	last   []byte
	closed bool
}

func (s *ffmpegStream) grab(ctx context.Context) ([]byte, error) {
	frame, err := s.camera.run(ctx, s.camera.path, s.camera.args(s.device, s.size)...)
	if err != nil {
		return nil, err
	}
	if len(frame) < 2 || frame[0] != 0xFF || frame[1] != 0xD8 {
		return nil, errors.New("ffmpeg did not produce a JPEG frame")
	}
	return frame, nil
}

// Preview returns a fresh frame, or the last good one if the device hiccups
func (s *ffmpegStream) Preview(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, utils.NewCameraUnavailableError(errors.New("camera is closed"))
	}
	frame, err := s.grab(ctx)
	if err != nil {
		if s.last != nil {
			s.camera.logger.Debug("Preview frame failed, reusing last frame: %v", err)
			return s.last, nil
		}
		return nil, utils.NewCameraUnavailableError(err)
	}
	s.last = frame
	return frame, nil
}

// Snapshot grabs the frame that will be recognized
func (s *ffmpegStream) Snapshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, utils.NewCameraUnavailableError(errors.New("camera is closed"))
	}
	frame, err := s.grab(ctx)
	if err != nil {
		return nil, utils.NewCameraUnavailableError(err)
	}
	s.last = frame
	return frame, nil
}

func (s *ffmpegStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.last = nil
	return nil
}
