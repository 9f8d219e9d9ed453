package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/export"
	"github.com/nodewee/ocr-hub/pkg/history"
	"github.com/nodewee/ocr-hub/pkg/imaging"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/metrics"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// User-facing success messages
const (
	MsgExtractionSucceeded = "Text extraction completed successfully!"
	MsgCopied              = "Text copied to clipboard!"
	MsgDownloaded          = "Text file downloaded successfully!"
	MsgCameraStarted       = "Camera started successfully!"
)

const subscriberBuffer = 16

// Options configures a Controller. Every field is optional.
type Options struct {
	Camera          interfaces.Camera
	CameraDevice    string
	Clipboard       interfaces.Clipboard
	Metrics         *metrics.Metrics
	Logger          *logger.Logger
	NotificationTTL time.Duration

	// Preview renders the history thumbnail; defaults to imaging.PreviewDataURL
	Preview func(data []byte, mimeType string) (string, error)
}

// Controller owns the session state and serializes recognitions: at most
// one runs at a time and captures arriving meanwhile are rejected.
type Controller struct {
	mu    sync.RWMutex
	state State

	processor interfaces.FileProcessor
	sem       *semaphore.Weighted
	ids       *history.IDGenerator
	notifier  *Notifier
	logger    *logger.Logger
	metrics   *metrics.Metrics
	preview   func([]byte, string) (string, error)
	now       func() time.Time
	clipboard interfaces.Clipboard

	cameraMu     sync.Mutex
	camera       interfaces.Camera
	cameraDevice string
	stream       interfaces.CameraStream

	subMu       sync.Mutex
	subscribers map[int]chan State
	nextSub     int

	wg sync.WaitGroup
}

// NewController creates a controller running recognitions through processor
func NewController(processor interfaces.FileProcessor, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	preview := opts.Preview
	if preview == nil {
		preview = imaging.PreviewDataURL
	}

	c := &Controller{
		state:        NewState(),
		processor:    processor,
		sem:          semaphore.NewWeighted(1),
		ids:          history.NewIDGenerator(),
		logger:       log,
		metrics:      opts.Metrics,
		preview:      preview,
		now:          time.Now,
		clipboard:    opts.Clipboard,
		camera:       opts.Camera,
		cameraDevice: opts.CameraDevice,
		subscribers:  make(map[int]chan State),
	}
	c.notifier = NewNotifier(opts.NotificationTTL, c.dispatch)
	return c
}

// State returns a snapshot of the session
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe returns a channel receiving a snapshot after every change and
// a function that ends the subscription. Slow readers miss intermediate
// snapshots but always get the latest one.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan State, subscriberBuffer)
	c.subscribers[id] = ch

	return ch, func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
	}
}

func (c *Controller) dispatch(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, ev)
	c.broadcast(c.state)
}

func (c *Controller) broadcast(s State) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for _, ch := range c.subscribers {
		select {
		case ch <- s:
		default:
			// Drop the oldest snapshot to make room for the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

// Notify shows a notification
func (c *Controller) Notify(kind types.NotificationKind, message string) {
	c.notifier.Notify(kind, message)
}

// acquire claims the single recognition slot
func (c *Controller) acquire() error {
	if !c.sem.TryAcquire(1) {
		c.metrics.RecordBusy()
		c.logger.Warn("Capture rejected: a recognition is already running")
		return utils.NewBusyError()
	}
	return nil
}

// Submit selects file and runs recognition to completion. While another
// recognition is running it returns a busy error and changes nothing.
func (c *Controller) Submit(ctx context.Context, file *types.SelectedFile) (*interfaces.ExtractionResult, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)
	return c.run(ctx, file)
}

// SubmitAsync is Submit with the recognition running in the background.
// Only the busy check is reported to the caller.
func (c *Controller) SubmitAsync(ctx context.Context, file *types.SelectedFile) error {
	if err := c.acquire(); err != nil {
		return err
	}
	c.goRun(ctx, file)
	return nil
}

func (c *Controller) goRun(ctx context.Context, file *types.SelectedFile) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.sem.Release(1)
		_, _ = c.run(ctx, file)
	}()
}

// Wait blocks until background recognitions have finished
func (c *Controller) Wait() {
	c.wg.Wait()
}

// run performs one recognition. The caller holds the slot.
func (c *Controller) run(ctx context.Context, file *types.SelectedFile) (*interfaces.ExtractionResult, error) {
	c.dispatch(FileSelected{File: file})
	c.dispatch(ProcessingStarted{})
	defer c.dispatch(ProcessingFinished{})

	result, err := c.processor.Process(ctx, file, controllerSink{c})
	if err != nil {
		c.Notify(types.NotificationError, utils.UserMessage(err))
		return nil, err
	}

	var previewURL string
	if !file.IsPDF() {
		previewURL, err = c.preview(file.Data, file.MIMEType)
		if err != nil {
			c.logger.Warn("Failed to render preview for %s: %v", file.Name, err)
			previewURL = ""
		}
	}

	entry := history.NewEntry(c.ids.Next(), file.Name, result.Text, previewURL, c.now())
	c.dispatch(ExtractionSucceeded{Entry: entry})
	c.Notify(types.NotificationSuccess, MsgExtractionSucceeded)
	return result, nil
}

// controllerSink feeds pipeline progress into the session
type controllerSink struct {
	c *Controller
}

func (s controllerSink) Progress(percent int) {
	s.c.dispatch(ProgressChanged{Progress: percent})
}

func (s controllerSink) Notify(kind types.NotificationKind, message string) {
	s.c.Notify(kind, message)
}

// EditText replaces the displayed text
func (c *Controller) EditText(text string) {
	c.dispatch(TextEdited{Text: text})
}

// StartCamera acquires the camera. Starting an active camera is a no-op.
// Failures are reported as a notification and leave the state unchanged.
func (c *Controller) StartCamera(ctx context.Context) error {
	c.cameraMu.Lock()
	defer c.cameraMu.Unlock()

	if c.stream != nil {
		return nil
	}
	if c.camera == nil {
		err := utils.NewCameraUnavailableError(fmt.Errorf("no camera configured"))
		c.Notify(types.NotificationError, utils.MsgCameraUnavailable)
		return err
	}

	stream, err := c.camera.Start(ctx, interfaces.CameraConstraints{
		Width:  constants.CameraWidth,
		Height: constants.CameraHeight,
		Facing: constants.CameraFacing,
		Device: c.cameraDevice,
	})
	if err != nil {
		c.logger.Error("Error accessing camera: %v", err)
		c.Notify(types.NotificationError, utils.MsgCameraUnavailable)
		if !utils.IsType(err, utils.ErrorTypeCameraUnavailable) {
			err = utils.NewCameraUnavailableError(err)
		}
		return err
	}

	c.stream = stream
	c.dispatch(CameraStarted{})
	c.Notify(types.NotificationSuccess, MsgCameraStarted)
	return nil
}

// CameraPreview returns the latest frame of the live camera
func (c *Controller) CameraPreview(ctx context.Context) ([]byte, error) {
	c.cameraMu.Lock()
	stream := c.stream
	c.cameraMu.Unlock()

	if stream == nil {
		return nil, utils.NewCameraUnavailableError(fmt.Errorf("camera is not started"))
	}
	return stream.Preview(ctx)
}

// StopCamera releases the camera. It does not touch a running recognition.
func (c *Controller) StopCamera() error {
	c.cameraMu.Lock()
	defer c.cameraMu.Unlock()
	return c.stopCameraLocked()
}

func (c *Controller) stopCameraLocked() error {
	if c.stream == nil {
		return nil
	}
	err := c.stream.Close()
	c.stream = nil
	c.dispatch(CameraStopped{})
	if err != nil {
		c.logger.Warn("Failed to release camera: %v", err)
	}
	return err
}

// snapshot freezes the current frame into camera_capture.jpg and
// releases the camera
func (c *Controller) snapshot(ctx context.Context) (*types.SelectedFile, error) {
	c.cameraMu.Lock()
	defer c.cameraMu.Unlock()

	if c.stream == nil {
		c.Notify(types.NotificationError, utils.MsgCameraUnavailable)
		return nil, utils.NewCameraUnavailableError(fmt.Errorf("camera is not started"))
	}

	frame, err := c.stream.Snapshot(ctx)
	if err != nil {
		c.Notify(types.NotificationError, utils.MsgCameraUnavailable)
		if !utils.IsType(err, utils.ErrorTypeCameraUnavailable) {
			err = utils.NewCameraUnavailableError(err)
		}
		return nil, err
	}

	_ = c.stopCameraLocked()
	return &types.SelectedFile{
		Name:     constants.CameraCaptureName,
		MIMEType: "image/jpeg",
		Size:     int64(len(frame)),
		Data:     frame,
		Source:   types.SourceCamera,
	}, nil
}

// CaptureFromCamera freezes the current frame, closes the camera and
// recognizes the frame
func (c *Controller) CaptureFromCamera(ctx context.Context) (*interfaces.ExtractionResult, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	file, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, file)
}

// CaptureFromCameraAsync is CaptureFromCamera with the recognition
// running in the background
func (c *Controller) CaptureFromCameraAsync(ctx context.Context) error {
	if err := c.acquire(); err != nil {
		return err
	}

	file, err := c.snapshot(ctx)
	if err != nil {
		c.sem.Release(1)
		return err
	}
	c.goRun(ctx, file)
	return nil
}

// CopyText copies text to the clipboard and reports the outcome
func (c *Controller) CopyText(text string) error {
	var err error
	if c.clipboard == nil {
		err = utils.NewClipboardError(fmt.Errorf("no clipboard available"))
	} else {
		err = c.clipboard.WriteText(text)
	}

	if err != nil {
		c.logger.Error("Copy failed: %v", err)
		c.Notify(types.NotificationError, utils.MsgClipboardFailed)
		if !utils.IsType(err, utils.ErrorTypeClipboard) {
			err = utils.NewClipboardError(err)
		}
		return err
	}

	c.Notify(types.NotificationSuccess, MsgCopied)
	return nil
}

// CopyCurrent copies the displayed text
func (c *Controller) CopyCurrent() error {
	return c.CopyText(c.State().Text)
}

// CopyHistory copies the text of a history entry
func (c *Controller) CopyHistory(id int64) error {
	entry, err := c.HistoryEntry(id)
	if err != nil {
		return err
	}
	return c.CopyText(entry.Text)
}

// HistoryEntry looks up a history entry by id
func (c *Controller) HistoryEntry(id int64) (history.Entry, error) {
	entry, ok := c.State().History.Get(id)
	if !ok {
		return history.Entry{}, utils.NewNotFoundError(fmt.Sprintf("history entry %d not found", id), nil)
	}
	return entry, nil
}

// CurrentDownload returns the displayed text and the name it downloads under
func (c *Controller) CurrentDownload() (name, text string) {
	return constants.DefaultDownloadName, c.State().Text
}

// HistoryDownload returns a history entry's text and its download name
func (c *Controller) HistoryDownload(id int64) (name, text string, err error) {
	entry, err := c.HistoryEntry(id)
	if err != nil {
		return "", "", err
	}
	return export.DownloadName(entry.FileName), entry.Text, nil
}

// DownloadText writes text to w verbatim and reports the outcome
func (c *Controller) DownloadText(w io.Writer, text string) error {
	if err := export.WriteText(w, text); err != nil {
		c.Notify(types.NotificationError, utils.UserMessage(err))
		return err
	}
	c.Notify(types.NotificationSuccess, MsgDownloaded)
	return nil
}

// Close releases the camera, waits for background work and stops timers
func (c *Controller) Close() error {
	err := c.StopCamera()
	c.Wait()
	c.notifier.Stop()

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for id, ch := range c.subscribers {
		delete(c.subscribers, id)
		close(ch)
	}
	return err
}
