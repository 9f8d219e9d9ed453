package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// commandRunner runs an external tool and returns its stdout.
// A failing run returns an error carrying the tool's stderr.
type commandRunner func(ctx context.Context, path string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%w: %s", err, msg)
		}
		return stdout.Bytes(), err
	}
	return stdout.Bytes(), nil
}

// toolEngine holds what the exec based engines have in common
type toolEngine struct {
	name        string
	description string
	path        string
	logger      *logger.Logger
	run         commandRunner
	scratch     func() interfaces.TempFileManager
	retry       *utils.SimpleErrorHandler
}

func newToolEngine(name, description, path string, log *logger.Logger) toolEngine {
	if log == nil {
		log = logger.Nop()
	}
	return toolEngine{
		name:        name,
		description: description,
		path:        path,
		logger:      log,
		run:         runCommand,
		scratch:     systemScratch(log),
		retry:       utils.NewSimpleErrorHandler(constants.DefaultOCRRetries),
	}
}

// systemScratch stages images under the system temp directory
func systemScratch(log *logger.Logger) func() interfaces.TempFileManager {
	return func() interfaces.TempFileManager {
		return utils.NewSimpleTempManager("", log)
	}
}

// Name returns the name of the OCR tool
func (e *toolEngine) Name() string {
	return e.name
}

// Description returns a description of the OCR tool
func (e *toolEngine) Description() string {
	return e.description
}

// Available checks if the OCR tool is available on the system
func (e *toolEngine) Available() bool {
	if e.path == "" {
		return false
	}
	_, err := exec.LookPath(e.path)
	return err == nil
}

// recognizeWithFile stages the image in a scratch directory, then hands
// its path to fn. Transient failures are retried.
func (e *toolEngine) recognizeWithFile(ctx context.Context, image []byte, onProgress interfaces.ProgressFunc,
	fn func(tm interfaces.TempFileManager, imagePath string) (string, error)) (string, error) {
	if len(image) == 0 {
		return "", utils.NewValidationError("empty image", nil)
	}
	report(onProgress, 0)

	var text string
	err := e.retry.WithRetryContext(ctx, func() error {
		tm := e.scratch()
		return tm.WithCleanup(func() error {
			imagePath, err := tm.WriteTempFile(e.name, imageExtension(image), image)
			if err != nil {
				return utils.NewIOError("failed to stage image", err)
			}
			text, err = fn(tm, imagePath)
			return err
		})
	})
	if err != nil {
		return "", err
	}

	report(onProgress, 1)
	e.logger.Debug("%s: extracted %d characters", e.name, len(text))
	return text, nil
}

// classifyRunError turns a failed tool run into an OCR error
func (e *toolEngine) classifyRunError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return utils.WrapError(ctxErr, utils.ErrorTypeTimeout, e.name+" was interrupted")
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return utils.NewOCRError(fmt.Sprintf("OCR engine '%s' is not available on this system", e.name), err)
	}
	return utils.NewOCRError(e.name+" failed", err)
}

// imageExtension picks a file suffix the tools can recognise
func imageExtension(image []byte) string {
	switch http.DetectContentType(image) {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func report(onProgress interfaces.ProgressFunc, p float64) {
	if onProgress != nil {
		onProgress(p)
	}
}
