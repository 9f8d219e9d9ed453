package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// commandRunner runs an external tool and returns its combined output
type commandRunner func(ctx context.Context, path string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// toolBackend holds what pdftoppm and ghostscript have in common
type toolBackend struct {
	name    string
	path    string
	logger  *logger.Logger
	run     commandRunner
	scratch func() interfaces.TempFileManager
	args    func(input, outDir string, lastPage int, opts interfaces.RasterOptions) []string
}

// systemScratch stages tool input under the system temp directory
func systemScratch(log *logger.Logger) func() interfaces.TempFileManager {
	return func() interfaces.TempFileManager {
		return utils.NewSimpleTempManager("", log)
	}
}

func (b *toolBackend) Name() string { return b.name }

func (b *toolBackend) Available() bool {
	if b.path == "" {
		return false
	}
	_, err := exec.LookPath(b.path)
	return err == nil
}

// Rasterize probes the document, writes it to a scratch directory, runs the
// tool once for the page range and reads the pages back in order.
func (b *toolBackend) Rasterize(ctx context.Context, data []byte, opts interfaces.RasterOptions) ([]types.PageImage, error) {
	count, err := Probe(data)
	if err != nil {
		return nil, err
	}
	lastPage := opts.MaxPages
	if count > 0 && count < lastPage {
		lastPage = count
	}

	tm := b.scratch()
	var pages []types.PageImage
	err = tm.WithCleanup(func() error {
		input, err := tm.WriteTempFile("input", ".pdf", data)
		if err != nil {
			return utils.NewIOError("failed to stage PDF", err)
		}
		outDir, err := tm.CreateTempDir(b.name)
		if err != nil {
			return utils.NewIOError("failed to create output directory", err)
		}

		args := b.args(input, outDir, lastPage, opts)
		b.logger.Debug("Running %s %s", b.path, strings.Join(args, " "))
		output, err := b.run(ctx, b.path, args...)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return utils.WrapError(ctxErr, utils.ErrorTypeTimeout, b.name+" was interrupted")
			}
			return classifyToolFailure(b.name, output, err)
		}

		pages, err = collectPages(outDir)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(pages) > lastPage {
		pages = pages[:lastPage]
	}
	return pages, nil
}

// collectPages reads "<prefix>-<n>.jpg" files ordered by page number
func collectPages(dir string) ([]types.PageImage, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if err != nil {
		return nil, err
	}

	type numbered struct {
		n    int
		path string
	}
	files := make([]numbered, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".jpg")
		idx := strings.LastIndex(base, "-")
		n, err := strconv.Atoi(base[idx+1:])
		if err != nil {
			continue
		}
		files = append(files, numbered{n: n, path: m})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].n < files[j].n })

	pages := make([]types.PageImage, 0, len(files))
	for i, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			return nil, utils.NewIOError("failed to read rendered page", err)
		}
		pages = append(pages, types.PageImage{Data: data, PageNumber: i + 1})
	}
	return pages, nil
}

// classifyToolFailure turns a failed tool run into a taxonomy error
func classifyToolFailure(name string, output []byte, err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return utils.NewRendererUnavailableError(fmt.Errorf("%s: %w", name, err))
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return utils.WrapError(err, utils.ErrorTypeTimeout, name+" was interrupted")
	}

	msg := strings.TrimSpace(string(output))
	lower := strings.ToLower(msg)
	cause := fmt.Errorf("%s: %s", name, msg)
	switch {
	case strings.Contains(lower, "password"):
		return utils.NewPasswordProtectedError(cause)
	case strings.Contains(lower, "may not be a pdf"),
		strings.Contains(lower, "couldn't find trailer"),
		strings.Contains(lower, "couldn't read xref"),
		strings.Contains(lower, "syntaxerror"):
		return utils.NewCorruptDocumentError(cause)
	default:
		if msg == "" {
			cause = fmt.Errorf("%s: %w", name, err)
		}
		return cause
	}
}

// dpiFor converts a scale factor into the resolution passed to the tools
func dpiFor(opts interfaces.RasterOptions) string {
	return strconv.Itoa(int(float64(constants.BaseDPI) * opts.Scale))
}

// NewPdftoppmBackend renders with poppler's pdftoppm
func NewPdftoppmBackend(path string, log *logger.Logger) interfaces.RasterBackend {
	if log == nil {
		log = logger.Nop()
	}
	return &toolBackend{
		name:    "pdftoppm",
		path:    path,
		logger:  log,
		run:     runCommand,
		scratch: systemScratch(log),
		args: func(input, outDir string, lastPage int, opts interfaces.RasterOptions) []string {
			return []string{
				"-f", "1",
				"-l", strconv.Itoa(lastPage),
				"-r", dpiFor(opts),
				"-jpeg",
				"-jpegopt", "quality=" + strconv.Itoa(opts.JPEGQuality),
				input,
				filepath.Join(outDir, "page"),
			}
		},
	}
}

// NewGhostscriptBackend renders with ghostscript
func NewGhostscriptBackend(path string, log *logger.Logger) interfaces.RasterBackend {
	if log == nil {
		log = logger.Nop()
	}
	return &toolBackend{
		name:    "ghostscript",
		path:    path,
		logger:  log,
		run:     runCommand,
		scratch: systemScratch(log),
		args: func(input, outDir string, lastPage int, opts interfaces.RasterOptions) []string {
			return []string{
				"-dSAFER", "-dBATCH", "-dNOPAUSE", "-dQUIET",
				"-sDEVICE=jpeg",
				"-dJPEGQ=" + strconv.Itoa(opts.JPEGQuality),
				"-r" + dpiFor(opts),
				"-dFirstPage=1",
				"-dLastPage=" + strconv.Itoa(lastPage),
				"-sOutputFile=" + filepath.Join(outDir, "page-%d.jpg"),
				input,
			}
		},
	}
}
